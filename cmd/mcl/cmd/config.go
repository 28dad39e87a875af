package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Koora7334/minecraft-launcher-core/internal/config"
	"github.com/Koora7334/minecraft-launcher-core/internal/logger"
)

var errConfigExists = errors.New("settings file already exists, pass --force to overwrite")

var (
	// configForce overwrites an existing settings file.
	configForce bool

	// configCmd groups the settings file operations.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize the settings file",
	}

	// configInitCmd writes the effective settings to a file, giving the
	// user a starting point to edit.
	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write the effective settings to a file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultConfigFilename
			}

			if !configForce {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s: %w", path, errConfigExists)
				}
			}

			if err := config.Save(path, cfg); err != nil {
				return err
			}

			logger.InfoKV(context.Background(), "settings written",
				"path", path,
			)

			return nil
		},
	}

	// configShowCmd prints the effective settings after file and
	// environment merging.
	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			contents, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal settings: %w", err)
			}

			fmt.Print(string(contents))

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing settings file")

	configCmd.AddCommand(configInitCmd, configShowCmd)
}
