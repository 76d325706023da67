package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything folio reads at startup.
type Config struct {
	APIBaseURL     string
	AuthToken      string
	HealthInterval time.Duration
	RequestTimeout time.Duration
	HealthAPIID    string
	CatalogPath    string
	CatalogURL     string
	StorageBackend string
	StorageDir     string
	LogDir         string
	DevtoolsAddr   string
}

const (
	defaultConfigPath     = "~/.config/folio/config.toml"
	defaultAPIBaseURL     = "https://api.yourdomain.com"
	defaultStorageBackend = "toml"
	defaultStorageDir     = "~/.local/share/folio"
	defaultLogDir         = "~/.local/share/folio/logs"
	defaultHealthInterval = 60 * time.Second
	defaultRequestTimeout = 10 * time.Second

	envAPIBaseURL     = "FOLIO_API_BASE_URL"
	envAuthToken      = "FOLIO_AUTH_TOKEN"
	envDevtoolsAddr   = "FOLIO_DEVTOOLS_ADDR"
	envStorageBackend = "FOLIO_STORAGE_BACKEND"
)

// DefaultEnvFile is loaded into the environment before overrides are read.
const DefaultEnvFile = ".env"

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBaseURL:     defaultAPIBaseURL,
		HealthInterval: defaultHealthInterval,
		RequestTimeout: defaultRequestTimeout,
		StorageBackend: defaultStorageBackend,
		StorageDir:     mustExpand(defaultStorageDir),
		LogDir:         mustExpand(defaultLogDir),
	}
}

// Load reads the config file at path (or the default path), then applies
// environment overrides. Variables from envFiles are added to the process
// environment first without replacing variables already set; missing env
// files are ignored.
func Load(path string, envFiles ...string) (Config, error) {
	if err := loadEnv(envFiles); err != nil {
		return Config{}, err
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		if err := parseInto(file, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseInto(r io.Reader, cfg *Config) error {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBaseURL     string `toml:"api_base_url"`
		AuthToken      string `toml:"auth_token"`
		HealthInterval int    `toml:"health_interval"` // seconds
		RequestTimeout int    `toml:"request_timeout"` // milliseconds
		HealthAPIID    string `toml:"health_api_id"`
		CatalogPath    string `toml:"catalog_path"`
		CatalogURL     string `toml:"catalog_url"`
		StorageBackend string `toml:"storage_backend"`
		StorageDir     string `toml:"storage_dir"`
		LogDir         string `toml:"log_dir"`
		DevtoolsAddr   string `toml:"devtools_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	cfg.AuthToken = strings.TrimSpace(raw.AuthToken)
	if raw.HealthInterval > 0 {
		cfg.HealthInterval = time.Duration(raw.HealthInterval) * time.Second
	}
	if raw.RequestTimeout > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeout) * time.Millisecond
	}
	cfg.HealthAPIID = strings.TrimSpace(raw.HealthAPIID)
	if v := strings.TrimSpace(raw.CatalogPath); v != "" {
		cfg.CatalogPath = mustExpand(v)
	}
	cfg.CatalogURL = strings.TrimSpace(raw.CatalogURL)
	if v := strings.TrimSpace(raw.StorageBackend); v != "" {
		cfg.StorageBackend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.StorageDir); v != "" {
		cfg.StorageDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	cfg.DevtoolsAddr = strings.TrimSpace(raw.DevtoolsAddr)
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envAPIBaseURL)); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(envAuthToken)); v != "" {
		cfg.AuthToken = v
	}
	if v := strings.TrimSpace(os.Getenv(envDevtoolsAddr)); v != "" {
		cfg.DevtoolsAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(envStorageBackend)); v != "" {
		cfg.StorageBackend = strings.ToLower(v)
	}
}

func loadEnv(files []string) error {
	for _, f := range files {
		if strings.TrimSpace(f) == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

// Validate reports configuration that cannot be used.
func (c *Config) Validate() error {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("parse api_base_url %q: %w", c.APIBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("api_base_url %q must be an absolute http(s) URL", c.APIBaseURL)
	}
	switch c.StorageBackend {
	case "toml", "sqlite":
	default:
		return fmt.Errorf("unknown storage_backend %q", c.StorageBackend)
	}
	return nil
}

// LogPath returns the path of folio's own log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/folio.log")
	}
	return filepath.Join(c.LogDir, "folio.log")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
