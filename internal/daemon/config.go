// Package daemon holds server configuration and the long-running server
// process wiring.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full daemon configuration, loaded from TOML.
type Config struct {
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Calendar CalendarConfig `toml:"calendar"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DatabaseConfig configures the embedded database.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// CalendarConfig pins the civil timezone all day arithmetic uses. Every
// instance of a deployment must agree on it, so it lives in config, not in
// the environment's local time.
type CalendarConfig struct {
	Timezone string `toml:"timezone"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8432,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir(), "pufflog.db"),
		},
		Calendar: CalendarConfig{
			Timezone: "Europe/Paris",
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// DefaultConfigPath returns ~/.pufflog/config.toml.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), "config.toml")
}

// homeDir returns the pufflog state directory, honoring PUFFLOG_HOME.
func homeDir() string {
	if dir := os.Getenv("PUFFLOG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pufflog"
	}
	return filepath.Join(home, ".pufflog")
}

// LoadConfig reads the config file at path, filling in defaults for any
// missing keys. A missing file yields the defaults without error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as TOML, creating the directory if needed.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// ListenAddr returns the host:port the API binds to.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}
