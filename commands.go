package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/standalone-kubelet/bootstrap/pkg/bootstrapper"
	"github.com/standalone-kubelet/bootstrap/pkg/config"
	"github.com/standalone-kubelet/bootstrap/pkg/logger"
	"github.com/standalone-kubelet/bootstrap/pkg/status"
)

// Version information variables (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// NewBootstrapCommand creates a new bootstrap command
func NewBootstrapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap <kubelet-binary-path>",
		Short: "Provision the host and launch a standalone kubelet",
		Long:  "Install the container runtime and CNI plugins, write the kubelet configuration and static pod manifest, then launch the given kubelet binary detached and verify it is running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBootstrap(cmd.Context(), args[0])
		},
	}

	return cmd
}

// NewTeardownCommand creates a new teardown command
func NewTeardownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Stop the kubelet and remove its configuration",
		Long:  "Stop any running kubelet process and remove the static pod manifest, kubelet configuration, and bridge network configuration; the containerd package is left installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTeardown(cmd.Context())
		},
	}

	return cmd
}

// NewStatusCommand creates a new status command
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the node status as JSON",
		Long:  "Probe the container runtime service, runtime socket, and kubelet process and print a JSON snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}

	return cmd
}

// NewVersionCommand creates a new version command
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version, build commit, and build time information",
		Run: func(cmd *cobra.Command, args []string) {
			runVersion()
		},
	}

	return cmd
}

// runBootstrap executes the provisioning pipeline against the given binary
func runBootstrap(ctx context.Context, kubeletPath string) error {
	logger := logger.GetLoggerFromContext(ctx)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	bootstrapExecutor := bootstrapper.New(cfg, logger)
	result, err := bootstrapExecutor.Bootstrap(ctx, kubeletPath)
	if err != nil {
		return err
	}

	return handleExecutionResult(result, "bootstrap", logger)
}

// runTeardown executes the teardown process
func runTeardown(ctx context.Context) error {
	logger := logger.GetLoggerFromContext(ctx)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	bootstrapExecutor := bootstrapper.New(cfg, logger)
	result, err := bootstrapExecutor.Teardown(ctx)
	if err != nil {
		return err
	}

	// Teardown is lenient with individual step failures
	return handleExecutionResult(result, "teardown", logger)
}

// runStatus collects a node status snapshot and prints it
func runStatus(ctx context.Context) error {
	logger := logger.GetLoggerFromContext(ctx)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	collector := status.NewCollector(cfg, logger)
	nodeStatus := collector.CollectStatus(ctx)

	statusData, err := json.MarshalIndent(nodeStatus, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status to JSON: %w", err)
	}

	fmt.Println(string(statusData))
	return nil
}

// runVersion displays version information
func runVersion() {
	fmt.Printf("Standalone Kubelet Bootstrap\n")
	fmt.Printf("Version: %s\n", Version)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Printf("Build Time: %s\n", BuildTime)
}

// handleExecutionResult processes and logs execution results
func handleExecutionResult(result *bootstrapper.ExecutionResult, operation string, logger *logrus.Logger) error {
	if result == nil {
		return fmt.Errorf("%s result is nil", operation)
	}

	if result.Success {
		logger.Infof("%s completed successfully (duration: %v, steps: %d)",
			operation, result.Duration, result.StepCount)
		return nil
	}

	if operation == "teardown" {
		// Log the failures but leave the host in whatever state was reached
		logger.Warnf("%s completed with some failures: %s (duration: %v)",
			operation, result.Error, result.Duration)
		return nil
	}

	// Bootstrap failures are fatal
	return fmt.Errorf("%s failed: %s", operation, result.Error)
}
