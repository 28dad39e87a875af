package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the mcl subcommands.
// Every field is optional; zero values fall back to Mojang defaults.
type Config struct {
	// IndexURL overrides the Mojang java-runtime index (all.json) location.
	IndexURL string `yaml:"index_url" envconfig:"INDEX_URL"`
	// APIHosts lists mirror hostnames tried before the original host
	// when downloading manifests and runtime files.
	APIHosts []string `yaml:"api_hosts" envconfig:"API_HOSTS"`
	// Channel is the runtime channel to install (e.g. java-runtime-beta).
	Channel string `yaml:"channel" envconfig:"CHANNEL"`
	// Destination is the default directory runtimes are installed into.
	Destination string `yaml:"destination" envconfig:"DESTINATION"`
	// LZMA prefers compressed downloads when the manifest offers them.
	LZMA bool `yaml:"lzma" envconfig:"LZMA"`
	// Concurrency bounds the number of parallel install operations.
	Concurrency int `yaml:"concurrency" envconfig:"CONCURRENCY"`
	// AuthHost overrides the Yggdrasil authentication server.
	AuthHost string `yaml:"auth_host" envconfig:"AUTH_HOST"`
	// SessionHost overrides the Mojang session server (profiles, skins).
	SessionHost string `yaml:"session_host" envconfig:"SESSION_HOST"`
	// AccountHost overrides the Mojang account API (name lookups).
	AccountHost string `yaml:"account_host" envconfig:"ACCOUNT_HOST"`
	// SessionFile is the path where the CLI persists its Yggdrasil session.
	SessionFile string `yaml:"session_file" envconfig:"SESSION_FILE"`
	// Timeout is the duration for a single HTTP request issued by the CLI.
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

const (
	// DefaultConfigFilename is the default filename for CLI settings.
	DefaultConfigFilename = "mcl-settings.yaml"

	// DefaultSessionFilename is the default filename for the stored Yggdrasil session.
	DefaultSessionFilename = "mcl-session.json"

	// DefaultConcurrency is the default bound on parallel install operations.
	DefaultConcurrency = 16

	// DefaultTimeout is the default duration for a single HTTP request.
	// Runtime archives are large, so this is deliberately generous.
	DefaultTimeout = 3 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// envPrefix namespaces the environment variables read by Load (MCL_*).
	envPrefix = "mcl"
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Load reads configuration from the provided path, applies MCL_* environment
// overrides and validates the result. A missing file at the default path is
// not an error: the CLI is expected to work with an empty configuration.
func Load(path string) (*Config, error) {
	usingDefault := path == ""
	if usingDefault {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && usingDefault:
		// Defaults only.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks URL-shaped fields and fills in defaults for unset values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	for name, value := range map[string]string{
		"index_url":    cfg.IndexURL,
		"auth_host":    cfg.AuthHost,
		"session_host": cfg.SessionHost,
		"account_host": cfg.AccountHost,
	} {
		if value == "" {
			continue
		}

		if _, err := url.ParseRequestURI(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.SessionFile == "" {
		cfg.SessionFile = DefaultSessionFilename
	}

	return nil
}
