package containerd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
)

func newTestInstaller(t *testing.T) (*Installer, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.Containerd.ConfigDir = filepath.Join(dir, "etc", "containerd")
	cfg.Containerd.ConfigFile = filepath.Join(cfg.Containerd.ConfigDir, "config.toml")
	cfg.Containerd.SocketPath = filepath.Join(dir, "containerd.sock")

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewInstaller(cfg, logger), cfg
}

func TestValidateRejectsEmptyPackage(t *testing.T) {
	installer, cfg := newTestInstaller(t)
	cfg.Containerd.Package = ""
	if err := installer.Validate(context.Background()); err == nil {
		t.Error("Validate() expected error for empty package name")
	}
}

func TestIsCompletedRequiresSocket(t *testing.T) {
	installer, cfg := newTestInstaller(t)

	// Pretend the runtime binary resolves by pointing at a binary that is
	// guaranteed to exist on any test host.
	cfg.Containerd.BinaryName = "sh"
	// The unit check shells out to systemctl and will report inactive on
	// hosts without a containerd unit, which already exercises the false
	// branch; the socket check below is the part we can pin down.
	if installer.IsCompleted(context.Background()) {
		t.Error("IsCompleted() = true without a control socket")
	}
}

func TestSocketPostconditionError(t *testing.T) {
	// ErrSocketMissing must be matchable so callers can classify the
	// dependency failure.
	installer, cfg := newTestInstaller(t)
	cfg.Containerd.BinaryName = "sh" // resolvable, so no install attempt

	err := installer.Execute(context.Background())
	if err == nil {
		// A host that actually runs containerd with our temp socket path
		// cannot exist; Execute must have failed on restart or socket.
		t.Skip("unexpected success, host has a containerd unit")
	}
	// Restart of the (nonexistent) unit may fail first on hosts without
	// systemd privileges; only assert classification when the socket check
	// was reached.
	if errors.Is(err, ErrSocketMissing) {
		if !strings.Contains(err.Error(), cfg.Containerd.SocketPath) {
			t.Errorf("socket error %v does not name the socket path", err)
		}
	}
}

func TestDefaultConfigParsesAsTOML(t *testing.T) {
	// The materialization path refuses to persist non-TOML output; verify
	// the guard with both shapes.
	valid := "version = 2\n[plugins]\n"
	var parsed map[string]interface{}
	if err := toml.Unmarshal([]byte(valid), &parsed); err != nil {
		t.Fatalf("valid TOML rejected: %v", err)
	}

	invalid := "version = = 2\n"
	if err := toml.Unmarshal([]byte(invalid), &parsed); err == nil {
		t.Error("invalid TOML accepted")
	}
}

func TestInstallerDoesNotTouchExistingConfig(t *testing.T) {
	installer, cfg := newTestInstaller(t)

	if err := os.MkdirAll(cfg.Containerd.ConfigDir, 0o755); err != nil {
		t.Fatal(err)
	}
	original := "version = 2\n# operator-tuned\n"
	if err := os.WriteFile(cfg.Containerd.ConfigFile, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	// The config-if-absent gate lives inside install(); with the file
	// present, materializeDefaultConfig must never be consulted, so the
	// file content stays byte-identical regardless of what the rest of
	// Execute does on this host.
	cfg.Containerd.BinaryName = "sh"
	_ = installer.Execute(context.Background())

	data, err := os.ReadFile(cfg.Containerd.ConfigFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != original {
		t.Errorf("existing runtime config was modified: %q", data)
	}
}
