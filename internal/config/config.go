// ABOUTME: healthcoach configuration with layered defaults, YAML file, and env vars.
// ABOUTME: Handles settings, credentials, and the storage backend factory function.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/healthcoach/internal/charm"
	"github.com/harperreed/healthcoach/internal/storage"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. HEALTHCOACH_BACKEND.
const EnvPrefix = "HEALTHCOACH_"

// MarkdownDirName is the markdown backend's directory inside the data directory.
const MarkdownDirName = "markdown"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Backends lists the supported storage backends.
var Backends = []string{"sqlite", "charm", "markdown"}

// Config stores healthcoach configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "charm", or "markdown".
	Backend string `koanf:"backend" yaml:"backend,omitempty"`

	// DataDir is the root directory for data storage. Supports ~ expansion.
	// Defaults to ~/.local/share/healthcoach.
	DataDir string `koanf:"data_dir" yaml:"data_dir,omitempty"`

	// CharmHost overrides the charm server for the charm backend.
	CharmHost string `koanf:"charm_host" yaml:"charm_host,omitempty"`

	UltrahumanToken string `koanf:"ultrahuman_token" yaml:"ultrahuman_token,omitempty"`
	UltrahumanEmail string `koanf:"ultrahuman_email" yaml:"ultrahuman_email,omitempty"`
	UltrahumanURL   string `koanf:"ultrahuman_url" yaml:"ultrahuman_url,omitempty"`

	OllamaURL   string `koanf:"ollama_url" yaml:"ollama_url,omitempty"`
	OllamaModel string `koanf:"ollama_model" yaml:"ollama_model,omitempty"`

	// ConfidenceThreshold is the minimum classifier confidence; below it a
	// query is treated as unknown.
	ConfidenceThreshold float64 `koanf:"confidence_threshold" yaml:"confidence_threshold,omitempty"`

	// NaturalDates enables phrases like "3 days ago" in queries.
	NaturalDates bool `koanf:"natural_dates" yaml:"natural_dates,omitempty"`

	// FetchDelayMS is the minimum spacing between ingestion requests.
	FetchDelayMS int `koanf:"fetch_delay_ms" yaml:"fetch_delay_ms,omitempty"`

	// FetchWorkers bounds concurrent ingestion requests. The delay still paces them.
	FetchWorkers int `koanf:"fetch_workers" yaml:"fetch_workers,omitempty"`

	// FallbackLog is the CSV file that records unclassified queries.
	FallbackLog string `koanf:"fallback_log" yaml:"fallback_log,omitempty"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		Backend:             "sqlite",
		UltrahumanURL:       "https://partner.ultrahuman.com",
		OllamaURL:           "http://localhost:11434",
		OllamaModel:         "llama3.2",
		ConfidenceThreshold: 0.5,
		FetchDelayMS:        500,
		FetchWorkers:        1,
	}
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetFallbackLog returns the fallback CSV path, defaulting into the data directory.
func (c *Config) GetFallbackLog() string {
	if c.FallbackLog == "" {
		return filepath.Join(c.GetDataDir(), "fallback_queries.csv")
	}
	return ExpandPath(c.FallbackLog)
}

// FetchDelay returns FetchDelayMS as a duration.
func (c *Config) FetchDelay() time.Duration {
	return time.Duration(c.FetchDelayMS) * time.Millisecond
}

// Credentials returns the Ultrahuman token and email. The unprefixed
// ULTRAHUMAN_TOKEN and ULTRAHUMAN_EMAIL variables take precedence.
func (c *Config) Credentials() (token, email string) {
	token, email = c.UltrahumanToken, c.UltrahumanEmail
	if v := os.Getenv("ULTRAHUMAN_TOKEN"); v != "" {
		token = v
	}
	if v := os.Getenv("ULTRAHUMAN_EMAIL"); v != "" {
		email = v
	}
	return token, email
}

// Validate checks field ranges and the backend name.
func (c *Config) Validate() error {
	valid := false
	for _, b := range Backends {
		if c.GetBackend() == b {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence_threshold must be within [0, 1], got %v", ErrInvalidConfig, c.ConfidenceThreshold)
	}
	if c.FetchDelayMS < 0 {
		return fmt.Errorf("%w: fetch_delay_ms must not be negative", ErrInvalidConfig)
	}
	if c.FetchWorkers < 0 {
		return fmt.Errorf("%w: fetch_workers must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	switch backend := c.GetBackend(); backend {
	case "sqlite":
		return storage.Open(filepath.Join(c.GetDataDir(), storage.DBFileName))
	case "charm":
		return charm.Open(charm.Options{Host: c.CharmHost, AutoSync: true})
	case "markdown":
		return storage.NewMarkdownStore(filepath.Join(c.GetDataDir(), MarkdownDirName))
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, backend)
	}
}

// GetConfigPath returns the config file path. HEALTHCOACH_CONFIG overrides it.
func GetConfigPath() string {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "healthcoach", "config.yaml")
}

// Load builds a Config by layering defaults, the optional YAML file, and
// HEALTHCOACH_* environment variables, in increasing precedence. A .env file in
// the working directory is read first and never overrides the real environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	path := GetConfigPath()
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	// HEALTHCOACH_DATA_DIR -> data_dir. Keys stay flat to match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to disk as YAML.
func (c *Config) Save() error {
	path := GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := yamlv3.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
