package kubelet

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
	"github.com/standalone-kubelet/bootstrap/pkg/status"
)

// UnInstaller stops any running kubelet processes
type UnInstaller struct {
	config *config.Config
	logger *logrus.Logger
}

// NewUnInstaller creates a new kubelet UnInstaller
func NewUnInstaller(cfg *config.Config, logger *logrus.Logger) *UnInstaller {
	return &UnInstaller{
		config: cfg,
		logger: logger,
	}
}

// GetName returns the step name
func (u *UnInstaller) GetName() string {
	return "KubeletUnInstaller"
}

// IsCompleted checks if no kubelet process remains
func (u *UnInstaller) IsCompleted(ctx context.Context) bool {
	running, err := status.IsProcessRunning(ctx, u.config.Kubelet.ProcessName)
	return err == nil && !running
}

// Execute stops every process matching the kubelet name
func (u *UnInstaller) Execute(ctx context.Context) error {
	matched, err := status.FindProcesses(ctx, u.config.Kubelet.ProcessName)
	if err != nil {
		return fmt.Errorf("failed to scan process table: %w", err)
	}

	var firstErr error
	for _, p := range matched {
		u.logger.Infof("Stopping kubelet process pid %d", p.Pid)
		if err := NewHandle(p.Pid).Stop(ctx); err != nil {
			u.logger.Warnf("Failed to stop pid %d: %v", p.Pid, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
