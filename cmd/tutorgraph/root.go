package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/tutorgraph"
	"github.com/aretw0/tutorgraph/internal/cli"
	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tutorgraph",
	Short: "Tutorgraph is a coding tutor built on a stateful execution graph",
	Long: `Tutorgraph validates a learner's request, optionally expands it into search
queries, and answers as a Socratic coding tutor. It runs as an HTTP API, an MCP
server or an interactive terminal chat.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML settings file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides log.level)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON (overrides log.format)")
}

// loadSettings reads --config and applies flag overrides.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	settings, err := config.LoadSettings(path)
	if err != nil {
		return settings, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		settings.Log.Level = level
	}
	if asJSON, _ := cmd.Flags().GetBool("log-json"); asJSON {
		settings.Log.Format = "json"
	}
	return settings, nil
}

func newLogger(settings config.Settings) *slog.Logger {
	return cli.NewLogger(settings.Log)
}

// buildApp loads the settings and wires the application.
func buildApp(ctx context.Context, cmd *cobra.Command) (*cli.App, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	return cli.Build(ctx, settings, newLogger(settings))
}

// buildOffline wires the application with a provider that refuses every call.
// Used by commands that only inspect the graphs.
func buildOffline(ctx context.Context, cmd *cobra.Command) (*cli.App, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	offline := capability.ProviderFunc(func(context.Context, capability.ProviderRequest) (string, error) {
		return "", errors.New("no reasoning provider in offline mode")
	})
	return cli.Build(ctx, settings, newLogger(settings), cli.WithProvider(offline))
}

func version() string {
	return tutorgraph.Version
}
