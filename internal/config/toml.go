// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	UI     UIConfig     `toml:"ui"`
	Share  ShareConfig  `toml:"share"`
	Auth   AuthConfig   `toml:"auth"`
}

// StoreConfig maps database settings.
type StoreConfig struct {
	Driver *string `toml:"driver"`
	Path   *string `toml:"path"`
}

// ServerConfig maps webhook server settings.
type ServerConfig struct {
	Addr    *string `toml:"addr"`
	SiteURL *string `toml:"site-url"`
}

// UIConfig maps terminal UI timings.
type UIConfig struct {
	SwapDelay   *Duration `toml:"swap-delay"`
	SettleDelay *Duration `toml:"settle-delay"`
	Tick        *Duration `toml:"tick"`
}

// ShareConfig maps share settings.
type ShareConfig struct {
	Command *string `toml:"command"`
}

// AuthConfig maps session settings.
type AuthConfig struct {
	SessionTTL *Duration `toml:"session-ttl"`
}

// Duration decodes TOML strings such as "300ms" or "720h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
