package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"airdrop-go/internal/app"
	"airdrop-go/internal/config"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "airdrop",
		Short:         "Crypto airdrop project assistant",
		Long:          `Imports crypto airdrop projects from JSON into a SQL store and answers questions about them with an LLM.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (environment variables are used when absent)")

	rootCmd.AddCommand(loadCmd())
	rootCmd.AddCommand(reloadCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(projectsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config, builds the logger and wires the application.
func setup(ctx context.Context) (*app.App, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("config error: %w", err)
	}

	log := mustMakeLogger(cfg.LogLevel)

	application, err := app.NewBuilder(&cfg, app.WithLogger(log)).Build(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("app build error: %w", err)
	}
	return application, log, nil
}

func mustMakeLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
