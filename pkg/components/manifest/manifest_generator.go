// Package manifest writes the static pod manifest the kubelet runs in
// standalone mode. Unlike every other stage it has no existence gate: the
// manifest is disposable test scaffolding and is rewritten on every run.
package manifest

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
	"github.com/standalone-kubelet/bootstrap/pkg/utils"
)

const (
	podName       = "nginx"
	containerName = "nginx"
	podImage      = "nginx:latest"
	containerPort = 80
)

// Generator writes the static pod manifest
type Generator struct {
	config *config.Config
	logger *logrus.Logger
}

// NewGenerator creates a new static pod manifest Generator
func NewGenerator(cfg *config.Config, logger *logrus.Logger) *Generator {
	return &Generator{
		config: cfg,
		logger: logger,
	}
}

// GetName returns the step name
func (g *Generator) GetName() string {
	return "ManifestGenerator"
}

// IsCompleted always returns false: the manifest is clobbered on every run.
func (g *Generator) IsCompleted(ctx context.Context) bool {
	return false
}

// Validate validates prerequisites for manifest generation
func (g *Generator) Validate(ctx context.Context) error {
	if g.config.Kubelet.ManifestsDir == "" {
		return fmt.Errorf("static pod manifests directory cannot be empty")
	}
	return nil
}

// Execute creates the manifests directory and (re)writes the pod descriptor
func (g *Generator) Execute(ctx context.Context) error {
	if err := utils.EnsureDirectory(g.config.Kubelet.ManifestsDir); err != nil {
		return err
	}

	data, err := yaml.Marshal(staticPod())
	if err != nil {
		return fmt.Errorf("failed to marshal static pod manifest: %w", err)
	}

	manifestPath := g.config.Kubelet.PodManifestPath()
	if err := utils.WriteFileAtomicSystem(manifestPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write static pod manifest: %w", err)
	}

	g.logger.Infof("Static pod manifest written to %s", manifestPath)
	return nil
}

// staticPod builds the fixed test workload: one container serving HTTP on
// port 80.
func staticPod() *corev1.Pod {
	return &corev1.Pod{
		TypeMeta: metav1.TypeMeta{
			Kind:       "Pod",
			APIVersion: "v1",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      podName,
			Namespace: metav1.NamespaceDefault,
		},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{
					Name:  containerName,
					Image: podImage,
					Ports: []corev1.ContainerPort{
						{
							ContainerPort: containerPort,
							Protocol:      corev1.ProtocolTCP,
						},
					},
				},
			},
		},
	}
}
