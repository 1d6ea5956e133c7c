// Package containerd ensures a working container runtime: package
// installation, default configuration, service state, and the control
// socket postcondition.
package containerd

import (
	"context"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
	"github.com/standalone-kubelet/bootstrap/pkg/systemd"
	"github.com/standalone-kubelet/bootstrap/pkg/utils"
)

// ErrSocketMissing reports that the runtime control socket did not appear
// after an install attempt. There is no retry; the run aborts.
var ErrSocketMissing = errors.New("container runtime control socket is missing")

// Installer handles container runtime installation operations
type Installer struct {
	config *config.Config
	logger *logrus.Logger
}

// NewInstaller creates a new containerd Installer
func NewInstaller(cfg *config.Config, logger *logrus.Logger) *Installer {
	return &Installer{
		config: cfg,
		logger: logger,
	}
}

// GetName returns the step name
func (ci *Installer) GetName() string {
	return "RuntimeInstaller"
}

// IsCompleted checks whether the runtime is installed, its service active,
// and its control socket present.
func (ci *Installer) IsCompleted(ctx context.Context) bool {
	if !utils.BinaryExists(ci.config.Containerd.BinaryName) {
		ci.logger.Debugf("Runtime binary %s not resolvable on PATH", ci.config.Containerd.BinaryName)
		return false
	}
	if !systemd.UnitIsActive(ctx, ci.config.Containerd.Service) {
		ci.logger.Debugf("Runtime service %s is not active", ci.config.Containerd.Service)
		return false
	}
	if !utils.FileExists(ci.config.Containerd.SocketPath) {
		ci.logger.Debugf("Runtime socket %s not found", ci.config.Containerd.SocketPath)
		return false
	}
	return true
}

// Validate validates preconditions before execution
func (ci *Installer) Validate(ctx context.Context) error {
	if ci.config.Containerd.Package == "" {
		return fmt.Errorf("runtime package name cannot be empty")
	}
	return nil
}

// Execute installs the runtime if absent, corrects a stopped service either
// way, and verifies the control socket exists. A partially configured
// runtime (installed but not running) is corrected rather than reported.
func (ci *Installer) Execute(ctx context.Context) error {
	if !utils.BinaryExists(ci.config.Containerd.BinaryName) {
		if err := ci.install(); err != nil {
			return err
		}
	} else {
		ci.logger.Infof("Runtime binary %s already present, skipping package installation", ci.config.Containerd.BinaryName)
	}

	if !systemd.UnitIsActive(ctx, ci.config.Containerd.Service) {
		ci.logger.Infof("Runtime service %s is not active, restarting", ci.config.Containerd.Service)
		if err := utils.RestartService(ci.config.Containerd.Service); err != nil {
			return fmt.Errorf("failed to restart runtime service %s: %w", ci.config.Containerd.Service, err)
		}
	}

	// Postcondition: the control socket must exist. Its absence after an
	// install attempt is unrecoverable here.
	if !utils.FileExists(ci.config.Containerd.SocketPath) {
		return fmt.Errorf("%w: %s", ErrSocketMissing, ci.config.Containerd.SocketPath)
	}

	ci.logger.Infof("Container runtime ready, socket at %s", ci.config.Containerd.SocketPath)
	return nil
}

// install installs the runtime package and materializes its default
// configuration.
func (ci *Installer) install() error {
	ci.logger.Infof("Installing container runtime package %s", ci.config.Containerd.Package)

	if err := utils.RunSystemCommand("apt-get", "update"); err != nil {
		return fmt.Errorf("failed to update package index: %w", err)
	}
	if err := utils.RunSystemCommand("apt-get", "install", "-y", ci.config.Containerd.Package); err != nil {
		return fmt.Errorf("failed to install package %s: %w", ci.config.Containerd.Package, err)
	}

	if !utils.FileExists(ci.config.Containerd.ConfigFile) {
		if err := ci.materializeDefaultConfig(); err != nil {
			return err
		}
	}

	if err := utils.EnableAndStartService(ci.config.Containerd.Service); err != nil {
		return fmt.Errorf("failed to enable runtime service %s: %w", ci.config.Containerd.Service, err)
	}
	if err := utils.RestartService(ci.config.Containerd.Service); err != nil {
		return fmt.Errorf("failed to restart runtime service %s: %w", ci.config.Containerd.Service, err)
	}

	ci.logger.Infof("Container runtime package %s installed", ci.config.Containerd.Package)
	return nil
}

// materializeDefaultConfig asks the runtime for its default configuration
// and persists it. The output is parsed as TOML first so a truncated or
// garbled dump never lands in /etc.
func (ci *Installer) materializeDefaultConfig() error {
	ci.logger.Infof("Generating default runtime configuration at %s", ci.config.Containerd.ConfigFile)

	output, err := utils.RunCommandWithOutput(ci.config.Containerd.BinaryName, "config", "default")
	if err != nil {
		return fmt.Errorf("failed to generate default runtime config: %w", err)
	}

	var parsed map[string]interface{}
	if err := toml.Unmarshal([]byte(output), &parsed); err != nil {
		return fmt.Errorf("generated runtime config is not valid TOML: %w", err)
	}

	if err := utils.EnsureDirectory(ci.config.Containerd.ConfigDir); err != nil {
		return err
	}
	if err := utils.WriteFileAtomicSystem(ci.config.Containerd.ConfigFile, []byte(output), 0o644); err != nil {
		return fmt.Errorf("failed to write runtime config file: %w", err)
	}

	return nil
}
