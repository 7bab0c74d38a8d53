// Package config loads the daemon configuration. The TOML file is layered
// on top of Default, then validated; relative paths resolve against the
// data directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Data     DataConfig     `toml:"data"     json:"data"`
	Server   ServerConfig   `toml:"server"   json:"server"`
	Logging  LoggingConfig  `toml:"logging"  json:"logging"`
	Settings SettingsConfig `toml:"settings" json:"settings"`
	Signals  SignalsConfig  `toml:"signals"  json:"signals"`
	Notes    NotesConfig    `toml:"notes"    json:"notes"`
	Time     TimeConfig     `toml:"time"     json:"time"`
}

type DataConfig struct {
	Dir string `toml:"dir" json:"dir"`
}

type ServerConfig struct {
	Bind string `toml:"bind" json:"bind"`
}

type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
	Dev   bool   `toml:"dev"   json:"dev"`
}

type SettingsConfig struct {
	Path string `toml:"path" json:"path"`
}

type SignalsConfig struct {
	Manifest string `toml:"manifest" json:"manifest"`
}

type NotesConfig struct {
	Dir string `toml:"dir" json:"dir"`
}

type TimeConfig struct {
	Zone string `toml:"zone" json:"zone"`
}

func Default() Config {
	return Config{
		Data:     DataConfig{Dir: defaultDataDir()},
		Server:   ServerConfig{Bind: "127.0.0.1:7420"},
		Logging:  LoggingConfig{Level: "info"},
		Settings: SettingsConfig{Path: "settings.yaml"},
		Signals:  SignalsConfig{Manifest: "signals.json"},
		Notes:    NotesConfig{Dir: "notes"},
		Time:     TimeConfig{Zone: "Local"},
	}
}

// Load reads the TOML file at path over the defaults. An empty path, or a
// path that does not exist, yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("decode config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Data.Dir == "" {
		return errors.New("data.dir must not be empty")
	}
	if cfg.Server.Bind == "" {
		return errors.New("server.bind must not be empty")
	}
	if cfg.Settings.Path == "" {
		return errors.New("settings.path must not be empty")
	}
	if cfg.Notes.Dir == "" {
		return errors.New("notes.dir must not be empty")
	}
	if _, err := time.LoadLocation(cfg.Time.Zone); err != nil {
		return fmt.Errorf("time.zone: %w", err)
	}
	return nil
}

func (c Config) DBPath() string {
	return filepath.Join(c.Data.Dir, "worktrack.db")
}

func (c Config) SettingsPath() string {
	return c.resolve(c.Settings.Path)
}

func (c Config) SignalManifestPath() string {
	if c.Signals.Manifest == "" {
		return ""
	}
	return c.resolve(c.Signals.Manifest)
}

func (c Config) NotesDir() string {
	return c.resolve(c.Notes.Dir)
}

// Location returns the zone used for time-of-day and weekday policy.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Time.Zone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Data.Dir, p)
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "worktrack")
	}
	return ".worktrack"
}
