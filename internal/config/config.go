package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the local API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// BackendConfig describes the external CRUD backend that owns event
// persistence.
type BackendConfig struct {
	// BaseURL is the backend's root, e.g. "http://localhost:3001/api".
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Token is a bearer token sent on every request. The
	// DASHFORGE_BACKEND_TOKEN environment variable overrides it so
	// credentials can stay out of the config file.
	Token string `yaml:"token,omitempty" json:"token,omitempty"`

	// TimeoutSeconds bounds each backend round trip.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the dashboard API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as the display zone and to
	// interpret the backend's zone-less timestamps.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls which weekday opens each grid row.
	// Supported values: "sunday" (default), "monday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a cron-style schedule (e.g. "*/5 * * * *") for
	// background refresh of events and stats.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// UpcomingDays is the size of the "upcoming" window in days.
	UpcomingDays int `yaml:"upcoming_days" json:"upcoming_days"`

	// CacheDir holds the offline event snapshot.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// Backend configures the remote event store.
	Backend BackendConfig `yaml:"backend" json:"backend"`

	// BasicAuth, if non-nil, protects all endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8085",
		Timezone:     "Local",
		WeekStart:    "sunday",
		RefreshCron:  "*/5 * * * *",
		UpcomingDays: 7,
		CacheDir:     "./cache",
		Backend: BackendConfig{
			BaseURL:        "http://localhost:3001/api",
			TimeoutSeconds: 15,
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly, and applies
// environment overrides. A .env file next to the process, if present,
// is loaded first.
func (c *Config) Normalize() {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	if c.Listen == "" {
		c.Listen = "127.0.0.1:8085"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	switch c.WeekStart {
	case "sunday", "monday":
		// ok
	default:
		c.WeekStart = "sunday"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/5 * * * *"
	}
	if c.UpcomingDays <= 0 {
		c.UpcomingDays = 7
	}
	if c.CacheDir == "" {
		c.CacheDir = "./cache"
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://localhost:3001/api"
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = 15
	}
	if tok := os.Getenv("DASHFORGE_BACKEND_TOKEN"); tok != "" {
		c.Backend.Token = tok
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there
//     (0600 perms, parent directory created) and returned.
//   - Otherwise the YAML is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			cfg.Normalize()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to the given path atomically (temp
// file + rename), with 0600 file and 0700 directory permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".dashforge-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
