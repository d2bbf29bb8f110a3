// Package config reads the optional .jscompat.toml file consumed by the
// CLI. Flags always override file values; a missing file means defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFileName is looked up in the working directory when --config is
// not given.
const DefaultFileName = ".jscompat.toml"

// Config is the CLI-facing configuration.
type Config struct {
	Environments []string `toml:"environments"`
	Cache        Cache    `toml:"cache"`
	// TimeoutSeconds bounds each unit's fetch+parse stage. 0 = no timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Cache tunes the cache manager.
type Cache struct {
	Path     string `toml:"path"`     // SQLite cache path; "" = in-memory only
	Capacity int    `toml:"capacity"` // LRU entries; 0 = default
	TTLHours int    `toml:"ttl_hours"`
}

// Default returns the zero configuration with cache TTL set to 24h.
func Default() Config {
	return Config{
		Cache: Cache{TTLHours: 24},
	}
}

// Load reads path. A missing file at the default location is not an
// error; an explicit path that does not exist is.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// Timeout returns the per-unit timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TTL returns the result cache TTL as a duration.
func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}
