// Package cni ensures network plugin binaries and the bridge network
// configuration exist, restarting the runtime so changes take effect.
package cni

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
	"github.com/standalone-kubelet/bootstrap/pkg/utils"
)

// Installer handles CNI plugin and bridge configuration setup
type Installer struct {
	config *config.Config
	logger *logrus.Logger
}

// NewInstaller creates a new CNI Installer
func NewInstaller(cfg *config.Config, logger *logrus.Logger) *Installer {
	return &Installer{
		config: cfg,
		logger: logger,
	}
}

// GetName returns the step name
func (i *Installer) GetName() string {
	return "NetworkPluginInstaller"
}

// IsCompleted always returns false: the runtime restart at the end of this
// stage is applied unconditionally, changed or not, so the stage must run
// even when binaries and config are already in place. The per-part
// existence gates live inside Execute.
func (i *Installer) IsCompleted(ctx context.Context) bool {
	return false
}

// Validate validates prerequisites for CNI setup
func (i *Installer) Validate(ctx context.Context) error {
	if i.config.CNI.Version == "" {
		return fmt.Errorf("CNI version cannot be empty")
	}
	return nil
}

// Execute installs plugin binaries when the bin directory is missing or
// empty, writes the bridge descriptor when absent, and always restarts the
// container runtime afterwards.
func (i *Installer) Execute(ctx context.Context) error {
	if utils.DirectoryEmpty(i.config.CNI.BinDir) {
		if err := i.installPlugins(); err != nil {
			return fmt.Errorf("failed to install CNI plugins version %s: %w", i.config.CNI.Version, err)
		}
	} else {
		i.logger.Infof("CNI plugin binaries already present in %s, skipping download", i.config.CNI.BinDir)
	}

	bridgePath := i.config.CNI.BridgeConfigPath()
	if !utils.FileExists(bridgePath) {
		if err := i.createBridgeConfig(bridgePath); err != nil {
			return fmt.Errorf("failed to create bridge config: %w", err)
		}
	} else {
		i.logger.Infof("Bridge network config already present at %s", bridgePath)
	}

	// Network config changes only take effect after a runtime restart;
	// applied unconditionally rather than tracking whether anything changed.
	i.logger.Infof("Restarting runtime service %s to apply network configuration", i.config.Containerd.Service)
	if err := utils.RestartService(i.config.Containerd.Service); err != nil {
		return fmt.Errorf("failed to restart runtime service after CNI setup: %w", err)
	}

	return nil
}

// installPlugins downloads the pinned plugins release archive and extracts
// it into the bin directory. A failed download propagates as-is: no retry,
// no partial cleanup.
func (i *Installer) installPlugins() error {
	arch, err := utils.GetArch()
	if err != nil {
		return err
	}
	url := fmt.Sprintf(i.config.CNI.URLTemplate, i.config.CNI.Version, arch, i.config.CNI.Version)

	if err := utils.EnsureDirectory(i.config.CNI.BinDir); err != nil {
		return err
	}

	tempDir, err := os.MkdirTemp("", "cni-plugins-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary directory: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tempDir)
	}()

	archive := filepath.Join(tempDir, fmt.Sprintf("cni-plugins-v%s.tgz", i.config.CNI.Version))
	i.logger.Infof("Downloading CNI plugins from %s", url)
	if err := utils.DownloadFile(url, archive); err != nil {
		return err
	}

	info, err := os.Stat(archive)
	if err != nil {
		return fmt.Errorf("downloaded CNI archive not found: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("downloaded CNI archive is empty")
	}
	i.logger.Infof("Downloaded CNI plugins archive (%d bytes)", info.Size())

	if err := utils.RunSystemCommand("tar", "-C", i.config.CNI.BinDir, "-xzf", archive); err != nil {
		return fmt.Errorf("failed to extract CNI plugins: %w", err)
	}

	i.logger.Infof("CNI plugins installed to %s", i.config.CNI.BinDir)
	return nil
}

// createBridgeConfig writes the fixed bridge network descriptor.
func (i *Installer) createBridgeConfig(bridgePath string) error {
	if err := utils.EnsureDirectory(i.config.CNI.ConfDir); err != nil {
		return err
	}

	content := fmt.Sprintf(bridgeConfigTemplate, cniSpecVersion)
	if err := utils.WriteFileAtomicSystem(bridgePath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write bridge config file: %w", err)
	}

	i.logger.Infof("Bridge network configuration created at %s", bridgePath)
	return nil
}
