package kubeletconfig

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
	"github.com/standalone-kubelet/bootstrap/pkg/utils"
)

// UnInstaller removes the kubelet configuration file
type UnInstaller struct {
	config *config.Config
	logger *logrus.Logger
}

// NewUnInstaller creates a new kubelet config UnInstaller
func NewUnInstaller(cfg *config.Config, logger *logrus.Logger) *UnInstaller {
	return &UnInstaller{
		config: cfg,
		logger: logger,
	}
}

// GetName returns the step name
func (u *UnInstaller) GetName() string {
	return "KubeletConfigUnInstaller"
}

// IsCompleted checks if the config file is already gone
func (u *UnInstaller) IsCompleted(ctx context.Context) bool {
	return !utils.FileExists(u.config.Kubelet.ConfigFile)
}

// Execute removes the kubelet configuration file
func (u *UnInstaller) Execute(ctx context.Context) error {
	errs := utils.RemoveFiles([]string{u.config.Kubelet.ConfigFile}, u.logger)
	if len(errs) > 0 {
		return errs[0]
	}
	u.logger.Info("Kubelet configuration removed")
	return nil
}
