package bootstrapper

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/components/binary"
	"github.com/standalone-kubelet/bootstrap/pkg/components/cni"
	"github.com/standalone-kubelet/bootstrap/pkg/components/containerd"
	"github.com/standalone-kubelet/bootstrap/pkg/components/kubelet"
	"github.com/standalone-kubelet/bootstrap/pkg/components/kubeletconfig"
	"github.com/standalone-kubelet/bootstrap/pkg/components/manifest"
	"github.com/standalone-kubelet/bootstrap/pkg/config"
	"github.com/standalone-kubelet/bootstrap/pkg/status"
)

// Bootstrapper executes provisioning steps sequentially
type Bootstrapper struct {
	*BaseExecutor
}

// New creates a new bootstrapper
func New(cfg *config.Config, logger *logrus.Logger) *Bootstrapper {
	return &Bootstrapper{
		BaseExecutor: NewBaseExecutor(cfg, logger),
	}
}

// Bootstrap provisions the host to run a standalone kubelet from the given
// binary. Steps run strictly in order and the run aborts on the first
// failure; every step except the manifest rewrite and the launch itself is
// gated on an idempotency check.
func (b *Bootstrapper) Bootstrap(ctx context.Context, kubeletPath string) (*ExecutionResult, error) {
	steps := []Executor{
		binary.NewValidator(kubeletPath, b.logger),           // Validate the supplied kubelet binary
		containerd.NewInstaller(b.config, b.logger),          // Ensure the container runtime
		cni.NewInstaller(b.config, b.logger),                 // Ensure network plugins + bridge config
		status.NewPreflightCheck(b.config, b.logger),         // Informational process-table check
		kubeletconfig.NewWriter(b.config, b.logger),          // Ensure kubelet config.yaml
		manifest.NewGenerator(b.config, b.logger),            // Rewrite the static pod manifest
		kubelet.NewLauncher(kubeletPath, b.config, b.logger), // Launch kubelet detached, poll readiness
		status.NewVerifier(b.config, b.logger),               // Final liveness check, fatal
	}

	return b.ExecuteSteps(ctx, steps, "bootstrap")
}

// Teardown removes what bootstrap placed on the host, in reverse order.
// Individual failures are logged and skipped; the containerd package is
// deliberately left installed.
func (b *Bootstrapper) Teardown(ctx context.Context) (*ExecutionResult, error) {
	steps := []Executor{
		kubelet.NewUnInstaller(b.config, b.logger),       // Stop any running kubelet
		manifest.NewUnInstaller(b.config, b.logger),      // Remove the static pod manifest
		kubeletconfig.NewUnInstaller(b.config, b.logger), // Remove kubelet config.yaml
		cni.NewUnInstaller(b.config, b.logger),           // Remove the bridge network config
	}

	return b.ExecuteSteps(ctx, steps, "teardown")
}
