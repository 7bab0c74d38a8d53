package config_test

import (
	"os"
	"path/filepath"
	"testing"
	_ "time/tzdata"

	"worktrack/internal/platform/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != config.Default() {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	payload := `
[data]
dir = "` + filepath.ToSlash(dir) + `"

[server]
bind = "127.0.0.1:9000"

[notes]
dir = "/srv/notes"

[time]
zone = "Europe/Berlin"
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Bind != "127.0.0.1:9000" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected config %#v", cfg)
	}
	if cfg.DBPath() != filepath.Join(dir, "worktrack.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath())
	}
	if cfg.SettingsPath() != filepath.Join(dir, "settings.yaml") {
		t.Fatalf("relative settings path not resolved: %s", cfg.SettingsPath())
	}
	if cfg.NotesDir() != "/srv/notes" {
		t.Fatalf("absolute notes dir changed: %s", cfg.NotesDir())
	}
	if cfg.Location().String() != "Europe/Berlin" {
		t.Fatalf("unexpected location %s", cfg.Location())
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"malformed":     "[server\nbind = 1",
		"empty bind":    "[server]\nbind = \"\"\n",
		"empty notes":   "[notes]\ndir = \"\"\n",
		"unknown zone":  "[time]\nzone = \"Mars/Olympus\"\n",
		"empty setting": "[settings]\npath = \"\"\n",
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := config.Load(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSignalManifestCanBeDisabled(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Signals.Manifest = ""
	if cfg.SignalManifestPath() != "" {
		t.Fatalf("expected empty manifest path, got %s", cfg.SignalManifestPath())
	}
}
