package manifest

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
)

func newTestGenerator(t *testing.T) (*Generator, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.Kubelet.ManifestsDir = filepath.Join(dir, "manifests")

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewGenerator(cfg, logger), cfg
}

func TestGeneratorWritesPodDescriptor(t *testing.T) {
	gen, cfg := newTestGenerator(t)

	if err := gen.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	data, err := os.ReadFile(cfg.Kubelet.PodManifestPath())
	if err != nil {
		t.Fatal(err)
	}

	var pod corev1.Pod
	if err := yaml.Unmarshal(data, &pod); err != nil {
		t.Fatalf("manifest is not a valid pod: %v", err)
	}

	if pod.Kind != "Pod" || pod.APIVersion != "v1" {
		t.Errorf("kind/apiVersion = %s/%s, want Pod/v1", pod.Kind, pod.APIVersion)
	}
	if pod.Name != "nginx" {
		t.Errorf("pod name = %s, want nginx", pod.Name)
	}
	if len(pod.Spec.Containers) != 1 {
		t.Fatalf("container count = %d, want 1", len(pod.Spec.Containers))
	}
	c := pod.Spec.Containers[0]
	if c.Name != "nginx" {
		t.Errorf("container name = %s, want nginx", c.Name)
	}
	if c.Image != "nginx:latest" {
		t.Errorf("container image = %s, want nginx:latest", c.Image)
	}
	if len(c.Ports) != 1 || c.Ports[0].ContainerPort != 80 {
		t.Errorf("container ports = %+v, want single port 80", c.Ports)
	}
}

func TestGeneratorAlwaysRewrites(t *testing.T) {
	gen, cfg := newTestGenerator(t)

	// No existence gate: the stage never reports completion.
	if gen.IsCompleted(context.Background()) {
		t.Error("IsCompleted() = true, manifest must be rewritten every run")
	}

	if err := os.MkdirAll(cfg.Kubelet.ManifestsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.Kubelet.PodManifestPath(), []byte("stale: content\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := gen.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	data, err := os.ReadFile(cfg.Kubelet.PodManifestPath())
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("stale")) {
		t.Error("previous manifest content survived the rewrite")
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	gen, cfg := newTestGenerator(t)

	if err := gen.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(cfg.Kubelet.PodManifestPath())
	if err != nil {
		t.Fatal(err)
	}

	if err := gen.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(cfg.Kubelet.PodManifestPath())
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Error("consecutive runs produced different manifest content")
	}
}

func TestUnInstallerRemovesManifest(t *testing.T) {
	gen, cfg := newTestGenerator(t)
	if err := gen.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	u := NewUnInstaller(cfg, logger)

	if u.IsCompleted(context.Background()) {
		t.Error("IsCompleted() = true with manifest present")
	}
	if err := u.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !u.IsCompleted(context.Background()) {
		t.Error("IsCompleted() = false after removal")
	}
}
