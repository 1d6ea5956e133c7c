package status

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
)

// ErrNotRunning reports that no kubelet process was found when one was
// required.
var ErrNotRunning = errors.New("kubelet process is not running")

// PreflightCheck is the mid-flow liveness probe. It is purely
// informational: it runs before the kubelet has been launched on a fresh
// host, where an empty process table is the expected state, so it logs and
// never fails the run.
type PreflightCheck struct {
	config *config.Config
	logger *logrus.Logger
}

// NewPreflightCheck creates the informational mid-flow check
func NewPreflightCheck(cfg *config.Config, logger *logrus.Logger) *PreflightCheck {
	return &PreflightCheck{
		config: cfg,
		logger: logger,
	}
}

// GetName returns the step name
func (p *PreflightCheck) GetName() string {
	return "KubeletPreflightCheck"
}

// IsCompleted always returns false; the probe runs every time
func (p *PreflightCheck) IsCompleted(ctx context.Context) bool {
	return false
}

// Execute logs whether a kubelet process already exists. Always succeeds.
func (p *PreflightCheck) Execute(ctx context.Context) error {
	running, err := IsProcessRunning(ctx, p.config.Kubelet.ProcessName)
	if err != nil {
		p.logger.Warnf("Unable to scan process table: %v, continuing", err)
		return nil
	}
	if running {
		p.logger.Warnf("A %s process is already running; the launcher will refuse to start a second instance",
			p.config.Kubelet.ProcessName)
	} else {
		p.logger.Infof("No %s process running yet, continuing setup", p.config.Kubelet.ProcessName)
	}
	return nil
}

// Verifier is the final liveness check: a missing kubelet process here
// fails the whole run.
type Verifier struct {
	config *config.Config
	logger *logrus.Logger
}

// NewVerifier creates the final fatal liveness check
func NewVerifier(cfg *config.Config, logger *logrus.Logger) *Verifier {
	return &Verifier{
		config: cfg,
		logger: logger,
	}
}

// GetName returns the step name
func (v *Verifier) GetName() string {
	return "KubeletVerifier"
}

// IsCompleted always returns false; the check runs every time
func (v *Verifier) IsCompleted(ctx context.Context) bool {
	return false
}

// Execute fails with ErrNotRunning if no kubelet process matches
func (v *Verifier) Execute(ctx context.Context) error {
	running, err := IsProcessRunning(ctx, v.config.Kubelet.ProcessName)
	if err != nil {
		return fmt.Errorf("failed to scan process table: %w", err)
	}
	if !running {
		return fmt.Errorf("%w: no process matching %q", ErrNotRunning, v.config.Kubelet.ProcessName)
	}

	v.logger.Infof("Kubelet process %s verified running", v.config.Kubelet.ProcessName)
	return nil
}
