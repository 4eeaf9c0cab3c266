package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	// FileName is the optional config file looked up in the data directory
	FileName = "lsdir.toml"

	// DefaultAddr is loopback only; set addr explicitly to expose the bridge
	DefaultAddr        = "127.0.0.1:9890"
	DefaultRecentLimit = 50

	EnvDataDir = "LSDIR_DATA_DIR"
	EnvAddr    = "LSDIR_ADDR"
	EnvDSN     = "LSDIR_DSN"
)

// Config is the resolved runtime configuration.
// Precedence: flag > environment > lsdir.toml > default.
type Config struct {
	Addr           string `toml:"addr"`
	DSN            string `toml:"dsn"`
	RecentLimit    int    `toml:"recent_limit"`
	DisableHistory bool   `toml:"disable_history"`
	ServeStatic    bool   `toml:"serve_static"`
	// DesktopServer also exposes the bridge over HTTP while the desktop app runs
	DesktopServer bool `toml:"desktop_server"`

	DataDir string `toml:"-"`
}

// Overrides carries values given on the command line; empty means unset
type Overrides struct {
	Addr    string
	DataDir string
	DSN     string
}

// DefaultDataDir returns the default data directory path (~/.config/lsdir)
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir is unavailable
		return "."
	}
	return filepath.Join(homeDir, ".config", "lsdir")
}

// Load resolves the configuration and makes sure the data directory exists
func Load(o Overrides) (*Config, error) {
	dataDir := firstNonEmpty(o.DataDir, os.Getenv(EnvDataDir), DefaultDataDir())
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	cfg := &Config{
		Addr:        DefaultAddr,
		RecentLimit: DefaultRecentLimit,
		ServeStatic: true,
	}

	if err := cfg.readFile(filepath.Join(dataDir, FileName)); err != nil {
		return nil, err
	}

	cfg.DataDir = dataDir
	cfg.Addr = firstNonEmpty(o.Addr, os.Getenv(EnvAddr), cfg.Addr)
	cfg.DSN = firstNonEmpty(o.DSN, os.Getenv(EnvDSN), cfg.DSN)
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = DefaultRecentLimit
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// DBPath is the SQLite database used when no DSN is configured
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "lsdir.db")
}

// LogPath is the log file inside the data directory
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "lsdir.log")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
