/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/isulog/pkg/config"
	"github.com/ssargent/isulog/pkg/di"
)

// container is built before every command runs
var container *di.Container

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "isulog",
	Short: "isulog - Inno Setup uninstall log tool",
	Long: `isulog reads, verifies, rewrites and catalogues Inno Setup uninstall
logs (unins000.dat). Logs can be inspected locally or stored in a catalogue
served over a REST API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		c, err := di.NewContainer(cfg)
		if err != nil {
			return err
		}
		container = c
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return nil
		}
		defer container.Close()

		metricsFile, _ := cmd.Flags().GetString("metrics-file")
		if metricsFile == "" {
			return nil
		}
		if err := container.WriteMetrics(metricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if container != nil {
		container.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

// resolveConfig loads the --config file, else the default config file if
// present, else the defaults, then applies the logging flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	switch {
	case configPath != "":
		cfg, err = config.LoadConfig(configPath)
	case config.ConfigExists(config.GetDefaultConfigPath()):
		cfg, err = config.LoadConfig(config.GetDefaultConfigPath())
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format, _ = cmd.Flags().GetString("log-format")
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default ~/.config/isulog/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringP("data-dir", "d", "./data", "Data directory for the catalogue")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics to this file on exit")
}
