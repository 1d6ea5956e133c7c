package manifest

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
	"github.com/standalone-kubelet/bootstrap/pkg/utils"
)

// UnInstaller removes the static pod manifest
type UnInstaller struct {
	config *config.Config
	logger *logrus.Logger
}

// NewUnInstaller creates a new manifest UnInstaller
func NewUnInstaller(cfg *config.Config, logger *logrus.Logger) *UnInstaller {
	return &UnInstaller{
		config: cfg,
		logger: logger,
	}
}

// GetName returns the step name
func (u *UnInstaller) GetName() string {
	return "ManifestUnInstaller"
}

// IsCompleted checks if the manifest is already gone
func (u *UnInstaller) IsCompleted(ctx context.Context) bool {
	return !utils.FileExists(u.config.Kubelet.PodManifestPath())
}

// Execute removes the static pod manifest
func (u *UnInstaller) Execute(ctx context.Context) error {
	errs := utils.RemoveFiles([]string{u.config.Kubelet.PodManifestPath()}, u.logger)
	if len(errs) > 0 {
		return errs[0]
	}
	u.logger.Info("Static pod manifest removed")
	return nil
}
