package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Koora7334/minecraft-launcher-core/internal/config"
	"github.com/Koora7334/minecraft-launcher-core/internal/download"
	"github.com/Koora7334/minecraft-launcher-core/internal/logger"
	"github.com/Koora7334/minecraft-launcher-core/internal/repository/session"
	"github.com/Koora7334/minecraft-launcher-core/internal/service/yggdrasil"
	"github.com/Koora7334/minecraft-launcher-core/internal/version"
)

// defaultEnvFilename is picked up from the working directory when no
// --env-file is given.
const defaultEnvFilename = ".env"

var (
	// configPath to the configuration YAML file.
	configPath string
	// envFile with environment variable overrides (MCL_*).
	envFile string
	// logLevel for the run.
	logLevel string

	// cfg is the loaded launcher configuration, available to every
	// subcommand once PersistentPreRunE has run.
	cfg *config.Config

	// rootCmd represents the base launcher utility command.
	rootCmd = &cobra.Command{
		Use:   "mcl",
		Short: "Minecraft launcher utilities: Java runtimes, accounts and profiles.",
		Long: `Client-side utilities for a Minecraft launcher.

The runtime commands resolve Mojang's Java runtime catalogue and install
a runtime build with checksum validation, optional LZMA transfer
compression and mirror fallback. The auth commands manage a Yggdrasil
login session, and the profile commands look up player profiles and
skins.

Settings are read from ` + config.DefaultConfigFilename + ` (or --config),
with MCL_* environment variables taking precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := loadEnvFile(); err != nil {
				return err
			}

			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}

			cfg = loaded

			return nil
		},
	}
)

// loadEnvFile applies variable overrides before envconfig reads them.
// An explicit --env-file must exist; the conventional .env is optional.
func loadEnvFile() error {
	if envFile != "" {
		if err := godotenv.Overload(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}

		return nil
	}

	if _, err := os.Stat(defaultEnvFilename); err == nil {
		_ = godotenv.Load(defaultEnvFilename)
	}

	return nil
}

// newDownloadClient builds the HTTP transfer client the runtime and
// profile commands share.
func newDownloadClient() *download.Client {
	return download.NewClient(
		download.WithTimeout(cfg.Timeout),
		download.WithUserAgent("minecraft-launcher-core/"+version.Version),
	)
}

// newYggdrasilClient builds the account service client, honoring host
// overrides from the configuration.
func newYggdrasilClient() *yggdrasil.Client {
	return yggdrasil.NewClient(
		yggdrasil.WithAuthHost(cfg.AuthHost),
		yggdrasil.WithSessionHost(cfg.SessionHost),
		yggdrasil.WithAccountHost(cfg.AccountHost),
		yggdrasil.WithTimeout(cfg.Timeout),
	)
}

// newSessionRepository builds the session store the auth commands share.
func newSessionRepository() session.Repository {
	return session.NewFileRepository(cfg.SessionFile)
}

// Execute runs the mcl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to an env file with MCL_* overrides")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info",
		"log level (debug, info, warn, error, fatal)")

	rootCmd.AddCommand(runtimeCmd, authCmd, profileCmd, configCmd)
}
