package kubelet

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
)

func newTestLauncher(t *testing.T, binaryPath string) (*Launcher, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.Kubelet.LogFile = filepath.Join(dir, "kubelet.log")
	cfg.Kubelet.ConfigFile = filepath.Join(dir, "config.yaml")
	cfg.Kubelet.ManifestsDir = filepath.Join(dir, "manifests")
	cfg.Kubelet.StartupTimeoutSeconds = 5
	// A name no real process on the test host carries, so the
	// single-instance guard sees a clean table.
	cfg.Kubelet.ProcessName = "kubelet-lt"

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLauncher(binaryPath, cfg, logger), cfg
}

// writeStubKubelet creates a script that ignores its flags and sleeps long
// enough for the readiness poll to find it.
func writeStubKubelet(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kubelet-lt")
	script := "#!/bin/sh\nsleep 60\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLauncherStartsAndConfirmsProcess(t *testing.T) {
	stub := writeStubKubelet(t)
	launcher, cfg := newTestLauncher(t, stub)

	ctx := context.Background()
	if err := launcher.Validate(ctx); err != nil {
		t.Fatalf("Validate() error on clean process table: %v", err)
	}
	if err := launcher.Execute(ctx); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	handle := launcher.Handle()
	if handle == nil {
		t.Fatal("Handle() = nil after launch")
	}
	defer func() {
		_ = handle.Stop(ctx)
	}()

	if !handle.Alive(ctx) {
		t.Error("launched process not alive")
	}
	if _, err := os.Stat(cfg.Kubelet.LogFile); err != nil {
		t.Errorf("kubelet log file missing: %v", err)
	}

	// Second launch must trip the single-instance guard.
	second, _ := newTestLauncher(t, stub)
	second.config.Kubelet.ProcessName = cfg.Kubelet.ProcessName
	if err := second.Validate(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Validate() with live instance = %v, want ErrAlreadyRunning", err)
	}

	if err := handle.Stop(ctx); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
	// Give the table a moment to drop the entry.
	time.Sleep(200 * time.Millisecond)
	if handle.Alive(ctx) {
		t.Error("process still alive after Stop()")
	}
}

func TestLauncherFailsOnImmediateExit(t *testing.T) {
	// A binary that exits at once never satisfies the readiness poll.
	dir := t.TempDir()
	path := filepath.Join(dir, "kubelet-lt")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	launcher, _ := newTestLauncher(t, path)
	err := launcher.Execute(context.Background())
	if err == nil {
		t.Fatal("Execute() expected startup failure")
	}
	if !errors.Is(err, ErrStartupTimeout) {
		t.Errorf("Execute() error = %v, want ErrStartupTimeout", err)
	}
}

func TestLauncherFailsOnMissingBinary(t *testing.T) {
	launcher, _ := newTestLauncher(t, "/nonexistent/kubelet")
	if err := launcher.Execute(context.Background()); err == nil {
		t.Error("Execute() expected error for missing binary")
	}
}

func TestLauncherNeverReportsCompleted(t *testing.T) {
	launcher, _ := newTestLauncher(t, "/tmp/kubelet")
	if launcher.IsCompleted(context.Background()) {
		t.Error("IsCompleted() = true, launch must be attempted every run")
	}
}

func TestHandleForMissingProcess(t *testing.T) {
	// PID 0 never refers to a real userspace process.
	h := NewHandle(0)
	if h.Alive(context.Background()) {
		t.Error("Alive() = true for pid 0")
	}
	if err := h.Stop(context.Background()); err != nil {
		t.Errorf("Stop() on missing process should be a no-op, got %v", err)
	}
}
