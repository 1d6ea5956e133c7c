package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
	"github.com/standalone-kubelet/bootstrap/pkg/logger"
)

var (
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kubelet-bootstrap",
		Short: "Standalone kubelet bootstrap tool",
		Long:  "Provisions a single host to run a kubelet in standalone mode: container runtime, CNI plugins, kubelet configuration, and a static pod manifest",
	}

	// Global flags. The config file is optional; defaults cover a stock
	// Ubuntu host.
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration JSON file (optional)")

	// Add commands
	rootCmd.AddCommand(NewBootstrapCommand())
	rootCmd.AddCommand(NewTeardownCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewVersionCommand())

	// Set up context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Set up persistent pre-run to initialize config and logger
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Version needs neither config nor logger
		if cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Setup logger and update context
		ctx := logger.SetupLogger(cmd.Context(), cfg.Agent.LogLevel, cfg.Agent.LogDir)
		cmd.SetContext(ctx)
		return nil
	}

	// Execute command with context
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Command execution failed: %v\n", err)
		os.Exit(1)
	}
}
