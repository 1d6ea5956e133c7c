package cni

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
	"github.com/standalone-kubelet/bootstrap/pkg/utils"
)

// UnInstaller removes the bridge network configuration. Plugin binaries are
// left in place; they are inert without a config and other tooling may use
// them.
type UnInstaller struct {
	config *config.Config
	logger *logrus.Logger
}

// NewUnInstaller creates a new CNI UnInstaller
func NewUnInstaller(cfg *config.Config, logger *logrus.Logger) *UnInstaller {
	return &UnInstaller{
		config: cfg,
		logger: logger,
	}
}

// GetName returns the step name
func (u *UnInstaller) GetName() string {
	return "NetworkPluginUnInstaller"
}

// IsCompleted checks if the bridge configuration is already gone
func (u *UnInstaller) IsCompleted(ctx context.Context) bool {
	return !utils.FileExists(u.config.CNI.BridgeConfigPath())
}

// Execute removes the bridge network descriptor
func (u *UnInstaller) Execute(ctx context.Context) error {
	errs := utils.RemoveFiles([]string{u.config.CNI.BridgeConfigPath()}, u.logger)
	if len(errs) > 0 {
		return errs[0]
	}
	u.logger.Info("Bridge network configuration removed")
	return nil
}
