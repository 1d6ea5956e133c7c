// Package kubelet launches the validated kubelet binary as a detached
// process and owns its handle for the rest of the run.
package kubelet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
	"github.com/standalone-kubelet/bootstrap/pkg/status"
	"github.com/standalone-kubelet/bootstrap/pkg/utils"
)

// readinessPollInterval is the spacing of the post-launch process-table
// polls.
const readinessPollInterval = time.Second

var (
	// ErrAlreadyRunning reports that a kubelet process exists before
	// launch; starting a second instance would silently duplicate it.
	ErrAlreadyRunning = errors.New("a kubelet process is already running")

	// ErrStartupTimeout reports that no kubelet process appeared within
	// the startup timeout after launch.
	ErrStartupTimeout = errors.New("kubelet did not appear in the process table after launch")
)

// Launcher starts the kubelet detached and polls for it to appear
type Launcher struct {
	binaryPath string
	config     *config.Config
	logger     *logrus.Logger

	handle *Handle
}

// NewLauncher creates a new kubelet Launcher
func NewLauncher(binaryPath string, cfg *config.Config, logger *logrus.Logger) *Launcher {
	return &Launcher{
		binaryPath: binaryPath,
		config:     cfg,
		logger:     logger,
	}
}

// GetName returns the step name
func (l *Launcher) GetName() string {
	return "ProcessLauncher"
}

// IsCompleted always returns false; a launch is attempted on every run and
// the single-instance guard in Validate decides whether that is legal.
func (l *Launcher) IsCompleted(ctx context.Context) bool {
	return false
}

// Validate refuses to launch when a kubelet process already exists.
func (l *Launcher) Validate(ctx context.Context) error {
	running, err := status.IsProcessRunning(ctx, l.config.Kubelet.ProcessName)
	if err != nil {
		return fmt.Errorf("failed to scan process table: %w", err)
	}
	if running {
		return fmt.Errorf("%w: stop it before re-running bootstrap", ErrAlreadyRunning)
	}
	return nil
}

// Execute launches the kubelet detached in its own session and waits for it
// to show up in the process table, bounded by the configured timeout. The
// process is not supervised beyond that: no restart on crash, no output
// piping beyond the log file.
func (l *Launcher) Execute(ctx context.Context) error {
	args := []string{
		"--config=" + l.config.Kubelet.ConfigFile,
		"--container-runtime-endpoint=" + l.config.Kubelet.RuntimeEndpoint,
		"--pod-manifest-path=" + l.config.Kubelet.ManifestsDir,
		"--fail-swap-on=false",
		fmt.Sprintf("--v=%d", l.config.Kubelet.Verbosity),
	}

	logFile, err := l.openLogFile()
	if err != nil {
		return err
	}
	defer func() {
		_ = logFile.Close()
	}()

	l.logger.Infof("Launching kubelet: %s %v", l.binaryPath, args)

	cmd := exec.Command(l.binaryPath, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	// Own session so the kubelet survives this process and its terminal.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start kubelet: %w", err)
	}

	l.handle = NewHandle(int32(cmd.Process.Pid))
	if err := cmd.Process.Release(); err != nil {
		l.logger.Warnf("Failed to release kubelet process: %v", err)
	}

	l.logger.Infof("Kubelet launched with pid %d, output in %s", l.handle.PID(), l.config.Kubelet.LogFile)

	if err := l.waitReady(ctx); err != nil {
		return err
	}

	l.logger.Infof("Kubelet process confirmed running (pid %d)", l.handle.PID())
	return nil
}

// Handle returns the launched process handle, nil before a launch.
func (l *Launcher) Handle() *Handle {
	return l.handle
}

// waitReady polls the process table until the kubelet shows up or the
// startup timeout expires.
func (l *Launcher) waitReady(ctx context.Context) error {
	timeout := l.config.Kubelet.StartupTimeout()
	deadline := time.Now().Add(timeout)

	ticker := time.NewTicker(readinessPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.handle.Alive(ctx) {
				return nil
			}
			if time.Now().After(deadline) {
				return fmt.Errorf("%w: waited %v, check %s", ErrStartupTimeout, timeout, l.config.Kubelet.LogFile)
			}
			l.logger.Debugf("Kubelet pid %d not confirmed yet, retrying", l.handle.PID())
		}
	}
}

// openLogFile opens the kubelet output log for appending, creating the
// directory as needed.
func (l *Launcher) openLogFile() (*os.File, error) {
	if err := utils.EnsureDirectory(filepath.Dir(l.config.Kubelet.LogFile)); err != nil {
		return nil, err
	}

	logFile, err := os.OpenFile(l.config.Kubelet.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open kubelet log file %s: %w", l.config.Kubelet.LogFile, err)
	}
	return logFile, nil
}
