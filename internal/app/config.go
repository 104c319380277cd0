package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// EnvAPIURL overrides the configured API base URL, matching the
	// deployment convention of the web client this tool replaces.
	EnvAPIURL = "ASKMYDOCS_API_URL"

	defaultAPIBaseURL = "http://localhost:8000"
)

type Config struct {
	APIBaseURL     string `yaml:"api_base_url"`
	RequestTimeout int    `yaml:"request_timeout_seconds"`
	StateDir       string `yaml:"state_dir"`
	LogLevel       string `yaml:"log_level"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

func DefaultConfig() Config {
	return Config{
		APIBaseURL:     defaultAPIBaseURL,
		RequestTimeout: 60,
		StateDir:       DefaultStateRoot(),
		LogLevel:       "info",
		MaxUploadBytes: 50 << 20,
	}
}

// LoadConfig reads the yaml config at path, falling back to defaults when the
// file is missing. A .env file in the working directory and the process
// environment are consulted last, so ASKMYDOCS_API_URL always wins.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, err
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	// A missing .env is fine; it is optional.
	_ = godotenv.Load()
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIBaseURL = v
	}

	cfg.normalize()
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) normalize() {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 60
	}
	if c.StateDir == "" {
		c.StateDir = DefaultStateRoot()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 50 << 20
	}
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "askmydocs", "config.yml")
}

// DefaultStateRoot resolves where the token and logs live. Prefer the XDG
// data dir; fall back to ~/.local/share, then the temp dir.
func DefaultStateRoot() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "askmydocs")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "askmydocs")
	}
	return filepath.Join(os.TempDir(), "askmydocs")
}
