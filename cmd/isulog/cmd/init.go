/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/isulog/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with a generated API key",
	Long: `Create the isulog configuration file and data directory.

This command will:
- Generate a secure API key for the REST API
- Write the configuration with 0600 permissions
- Create the data directory for the catalogue

Examples:
  isulog init
  isulog init --config ./isulog.yaml --data-dir ./data
  isulog init --force`,
	// The config file may not exist yet, so skip the root config loading.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		container = nil
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		cfg, created, err := initializeConfig(configPath, dataDir, force)
		if err != nil {
			return err
		}
		if !created {
			cmd.Printf("Configuration already exists at %s. Use --force to regenerate.\n", configPath)
			return nil
		}

		cmd.Printf("✅ isulog initialization completed successfully!\n")
		cmd.Printf("Config file: %s\n", configPath)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		cmd.Printf("API key: %s\n", cfg.Server.APIKey)
		cmd.Printf("\nYou can now start the server with:\n")
		cmd.Printf("  isulog serve --config %s\n", configPath)
		return nil
	},
}

// initializeConfig writes a fresh configuration unless one exists and force is unset.
// It reports whether a configuration was written.
func initializeConfig(configPath, dataDir string, force bool) (*config.Config, bool, error) {
	if config.ConfigExists(configPath) && !force {
		cfg, err := config.LoadConfig(configPath)
		return cfg, false, err
	}

	cfg, err := config.BootstrapConfig(configPath, dataDir)
	if err != nil {
		return nil, false, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return nil, false, fmt.Errorf("failed to create data directory: %w", err)
	}
	return cfg, true, nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}
