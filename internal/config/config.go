// Package config loads and saves the elasticnow config.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/elasticnow/elasticnow/internal/report"
)

// ErrNotFound indicates no config file exists yet.
var ErrNotFound = errors.New("config file not found")

// Config is the persisted record written by setup.
type Config struct {
	ID         string `toml:"id"`
	Instance   string `toml:"instance"`
	SNInstance string `toml:"sn_instance"`
	SNUsername string `toml:"sn_username"`
	SNPassword string `toml:"sn_password"`
	Bin        string `toml:"bin"`

	// Optional tuning.
	SNBaseURL string `toml:"sn_base_url,omitempty"`
	MaxHours  int    `toml:"max_hours,omitzero"`
	WarnHours int    `toml:"warn_hours,omitzero"`
}

// HourCeiling returns the largest hour count a duration may have. A
// max_hours above DefaultMaxHours is ignored.
func (c Config) HourCeiling() int {
	return min(domain.CoalesceInt(c.MaxHours, domain.DefaultMaxHours), domain.DefaultMaxHours)
}

// WarnThreshold returns the report total above which output is flagged.
func (c Config) WarnThreshold() time.Duration {
	if c.WarnHours > 0 {
		return time.Duration(c.WarnHours) * time.Hour
	}
	return report.DefaultWarnThreshold
}

// DefaultPath returns $ELASTICNOW_CONFIG or <user config dir>/elasticnow/config.toml.
func DefaultPath() (string, error) {
	if p := os.Getenv("ELASTICNOW_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding config directory: %w", err)
	}
	return filepath.Join(dir, "elasticnow", "config.toml"), nil
}

// Load reads the config at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if cfg.MaxHours > domain.DefaultMaxHours {
		return nil, fmt.Errorf("reading config %s: max_hours must be at most %d", path, domain.DefaultMaxHours)
	}
	return &cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing config file: %w", err)
	}
	return nil
}

// Store binds a path so components can persist config changes without
// knowing where the file lives.
type Store struct {
	Path string
}

func (s Store) Load() (*Config, error) { return Load(s.Path) }
func (s Store) Save(cfg *Config) error { return Save(s.Path, cfg) }
