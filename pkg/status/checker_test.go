package status

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
)

func TestCmdlineMatches(t *testing.T) {
	tests := []struct {
		name    string
		cmdline string
		process string
		want    bool
	}{
		{"bare name", "kubelet --config /var/lib/kubelet/config.yaml", "kubelet", true},
		{"absolute path", "/tmp/kubelet --v=2", "kubelet", true},
		{"name in argument only", "grep kubelet", "kubelet", false},
		{"different binary", "/usr/bin/containerd", "kubelet", false},
		{"empty cmdline", "", "kubelet", false},
		{"prefix is not a match", "/usr/bin/kubelet-wrapper --v=2", "kubelet", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cmdlineMatches(tt.cmdline, tt.process); got != tt.want {
				t.Errorf("cmdlineMatches(%q, %q) = %v, want %v", tt.cmdline, tt.process, got, tt.want)
			}
		})
	}
}

func TestIsProcessRunningFindsOwnProcess(t *testing.T) {
	// The test binary itself is always in the process table.
	self := filepath.Base(os.Args[0])

	running, err := IsProcessRunning(context.Background(), self)
	if err != nil {
		t.Fatalf("IsProcessRunning() error: %v", err)
	}
	if !running {
		t.Errorf("IsProcessRunning(%q) = false for the running test binary", self)
	}
}

func TestIsProcessRunningMiss(t *testing.T) {
	running, err := IsProcessRunning(context.Background(), "no-such-process-name-zz")
	if err != nil {
		t.Fatalf("IsProcessRunning() error: %v", err)
	}
	if running {
		t.Error("IsProcessRunning() matched a nonexistent process name")
	}
}

func newStatusConfig(t *testing.T, processName string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.Kubelet.ProcessName = processName
	cfg.Containerd.SocketPath = filepath.Join(t.TempDir(), "containerd.sock")
	return cfg
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPreflightCheckNeverFails(t *testing.T) {
	// The mid-flow probe is informational regardless of process state.
	for _, name := range []string{filepath.Base(os.Args[0]), "no-such-process-name-zz"} {
		check := NewPreflightCheck(newStatusConfig(t, name), quietLogger())
		if check.IsCompleted(context.Background()) {
			t.Error("IsCompleted() = true, probe must always run")
		}
		if err := check.Execute(context.Background()); err != nil {
			t.Errorf("Execute() with process %q returned error: %v", name, err)
		}
	}
}

func TestVerifierFailsWhenAbsent(t *testing.T) {
	verifier := NewVerifier(newStatusConfig(t, "no-such-process-name-zz"), quietLogger())
	err := verifier.Execute(context.Background())
	if err == nil {
		t.Fatal("Execute() expected ErrNotRunning")
	}
	if !errors.Is(err, ErrNotRunning) {
		t.Errorf("Execute() error = %v, want ErrNotRunning", err)
	}
}

func TestVerifierPassesWhenPresent(t *testing.T) {
	verifier := NewVerifier(newStatusConfig(t, filepath.Base(os.Args[0])), quietLogger())
	if err := verifier.Execute(context.Background()); err != nil {
		t.Errorf("Execute() unexpected error: %v", err)
	}
}

func TestCollectStatus(t *testing.T) {
	cfg := newStatusConfig(t, filepath.Base(os.Args[0]))
	collector := NewCollector(cfg, quietLogger())

	status := collector.CollectStatus(context.Background())
	if status.Timestamp.IsZero() {
		t.Error("status timestamp not set")
	}
	if !status.KubeletRunning {
		t.Error("collector missed the running test binary")
	}
	if len(status.KubeletPIDs) == 0 {
		t.Error("collector reported running but no PIDs")
	}
	if status.RuntimeSocketPresent {
		t.Error("collector reported a socket that does not exist")
	}
}
