// Command skysailorctl runs operational tasks against the SkySailor database.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Domenick1991/skysailor/config"
	"github.com/Domenick1991/skysailor/internal/logger"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "skysailorctl",
	Short:         "Operational commands for the SkySailor backend",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "config.yaml"
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultPath, "path to config.yaml")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(importFlightsCmd)
	rootCmd.AddCommand(tokenCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.App.LogLevel, cfg.App.IsDevelopment())
	return cfg, nil
}
