// ABOUTME: Tests for healthcoach configuration management.
// ABOUTME: Covers layering, load, save, defaults, backend selection, and path expansion.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points config and data lookups at a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	t.Setenv(EnvPrefix+"CONFIG", "")
	return tmpDir
}

func TestGetBackendDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetBackend(); got != "sqlite" {
		t.Errorf("GetBackend() = %q, want %q", got, "sqlite")
	}
}

func TestGetBackendExplicit(t *testing.T) {
	cfg := &Config{Backend: "charm"}
	if got := cfg.GetBackend(); got != "charm" {
		t.Errorf("GetBackend() = %q, want %q", got, "charm")
	}
}

func TestGetDataDirDefault(t *testing.T) {
	isolate(t)
	cfg := &Config{}

	if got := cfg.GetDataDir(); !strings.HasSuffix(got, filepath.Join("data", "healthcoach")) {
		t.Errorf("GetDataDir() = %q", got)
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/health-data"}
	want := filepath.Join(home, "health-data")
	if got := cfg.GetDataDir(); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestGetFallbackLog(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/hc"}
	if got := cfg.GetFallbackLog(); got != "/tmp/hc/fallback_queries.csv" {
		t.Errorf("GetFallbackLog() = %q", got)
	}

	cfg.FallbackLog = "/var/log/q.csv"
	if got := cfg.GetFallbackLog(); got != "/var/log/q.csv" {
		t.Errorf("GetFallbackLog() = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/health", filepath.Join(home, "data/health")},
		{"data/health", "data/health"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}

	if cfg.Backend != "sqlite" {
		t.Errorf("Backend = %q, want sqlite", cfg.Backend)
	}
	if cfg.ConfidenceThreshold != 0.5 {
		t.Errorf("ConfidenceThreshold = %v, want 0.5", cfg.ConfidenceThreshold)
	}
	if cfg.FetchDelay() != 500*time.Millisecond {
		t.Errorf("FetchDelay() = %v, want 500ms", cfg.FetchDelay())
	}
	if cfg.FetchWorkers != 1 {
		t.Errorf("FetchWorkers = %d, want 1", cfg.FetchWorkers)
	}
	if cfg.NaturalDates {
		t.Error("NaturalDates should default to false")
	}
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.Backend = "charm"
	cfg.DataDir = "/tmp/health-data"
	cfg.NaturalDates = true
	cfg.ConfidenceThreshold = 0.7
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if loaded.Backend != "charm" {
		t.Errorf("Backend mismatch: got %q, want %q", loaded.Backend, "charm")
	}
	if loaded.DataDir != "/tmp/health-data" {
		t.Errorf("DataDir mismatch: got %q", loaded.DataDir)
	}
	if !loaded.NaturalDates {
		t.Error("NaturalDates should round-trip")
	}
	if loaded.ConfidenceThreshold != 0.7 {
		t.Errorf("ConfidenceThreshold = %v, want 0.7", loaded.ConfidenceThreshold)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)

	cfg := &Config{Backend: "charm", FetchDelayMS: 100}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	t.Setenv(EnvPrefix+"BACKEND", "sqlite")
	t.Setenv(EnvPrefix+"FETCH_DELAY_MS", "250")
	t.Setenv(EnvPrefix+"NATURAL_DATES", "true")
	t.Setenv(EnvPrefix+"FETCH_WORKERS", "3")

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Backend != "sqlite" {
		t.Errorf("Backend = %q, want env override sqlite", loaded.Backend)
	}
	if loaded.FetchDelayMS != 250 {
		t.Errorf("FetchDelayMS = %d, want 250", loaded.FetchDelayMS)
	}
	if !loaded.NaturalDates {
		t.Error("NaturalDates should be set from env")
	}
	if loaded.FetchWorkers != 3 {
		t.Errorf("FetchWorkers = %d, want 3", loaded.FetchWorkers)
	}
}

func TestConfigPathOverride(t *testing.T) {
	tmpDir := isolate(t)
	custom := filepath.Join(tmpDir, "custom.yaml")
	t.Setenv(EnvPrefix+"CONFIG", custom)

	if got := GetConfigPath(); got != custom {
		t.Errorf("GetConfigPath() = %q, want %q", got, custom)
	}

	if err := os.WriteFile(custom, []byte("ollama_model: mistral\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.OllamaModel != "mistral" {
		t.Errorf("OllamaModel = %q, want mistral", cfg.OllamaModel)
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := isolate(t)

	want := filepath.Join(tmpDir, "healthcoach", "config.yaml")
	if got := GetConfigPath(); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tmpDir := isolate(t)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "nonexistent"))

	if err := (&Config{Backend: "sqlite"}).Save(); err != nil {
		t.Fatalf("Save() should create directory: %v", err)
	}

	configDir := filepath.Join(tmpDir, "nonexistent", "healthcoach")
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		t.Error("Expected config directory to be created")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := isolate(t)

	configDir := filepath.Join(tmpDir, "healthcoach")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("backend: [unclosed"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid YAML config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"charm backend", func(c *Config) { c.Backend = "charm" }, false},
		{"markdown backend", func(c *Config) { c.Backend = "markdown" }, false},
		{"unknown backend", func(c *Config) { c.Backend = "postgres" }, true},
		{"threshold above one", func(c *Config) { c.ConfidenceThreshold = 1.5 }, true},
		{"negative threshold", func(c *Config) { c.ConfidenceThreshold = -0.1 }, true},
		{"negative delay", func(c *Config) { c.FetchDelayMS = -1 }, true},
		{"several workers", func(c *Config) { c.FetchWorkers = 4 }, false},
		{"negative workers", func(c *Config) { c.FetchWorkers = -2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPrefix+"BACKEND", "postgres")

	_, err := Load()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestCredentialsEnvOverride(t *testing.T) {
	cfg := &Config{UltrahumanToken: "from-config", UltrahumanEmail: "me@example.com"}

	t.Setenv("ULTRAHUMAN_TOKEN", "")
	t.Setenv("ULTRAHUMAN_EMAIL", "")
	token, email := cfg.Credentials()
	if token != "from-config" || email != "me@example.com" {
		t.Errorf("Credentials() = (%q, %q)", token, email)
	}

	t.Setenv("ULTRAHUMAN_TOKEN", "from-env")
	token, _ = cfg.Credentials()
	if token != "from-env" {
		t.Errorf("token = %q, want from-env", token)
	}
}

func TestOpenStorageSQLite(t *testing.T) {
	tmpDir := t.TempDir()

	repo, err := (&Config{Backend: "sqlite", DataDir: tmpDir}).OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() for sqlite failed: %v", err)
	}
	defer repo.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, "healthcoach.db")); os.IsNotExist(err) {
		t.Error("Expected healthcoach.db to be created")
	}
}

func TestOpenStorageDefaultBackend(t *testing.T) {
	repo, err := (&Config{DataDir: t.TempDir()}).OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() with default backend failed: %v", err)
	}
	defer repo.Close()
}

func TestOpenStorageInvalidBackend(t *testing.T) {
	_, err := (&Config{Backend: "invalid", DataDir: "/tmp"}).OpenStorage()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for invalid backend, got %v", err)
	}
}

func TestOpenStorageMarkdown(t *testing.T) {
	tmpDir := t.TempDir()

	repo, err := (&Config{Backend: "markdown", DataDir: tmpDir}).OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() for markdown failed: %v", err)
	}
	defer repo.Close()

	if info, err := os.Stat(filepath.Join(tmpDir, MarkdownDirName)); err != nil || !info.IsDir() {
		t.Errorf("Expected %s directory to be created: %v", MarkdownDirName, err)
	}
}
