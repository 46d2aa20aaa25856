// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.URL != Default().Server.URL {
		t.Errorf("expected default server URL, got %q", cfg.Server.URL)
	}
}

func TestLoadPartialFileBackfillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[server]\nurl = \"https://vault.example.com\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.URL != "https://vault.example.com" {
		t.Errorf("URL = %q", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs not backfilled: %d", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme not backfilled: %q", cfg.UI.Theme)
	}
}

func TestSaveRoundTripAndPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.Server.URL = "https://vault.internal:8443"
	cfg.UI.Theme = "light"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Server.URL != cfg.Server.URL || loaded.UI.Theme != cfg.UI.Theme {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadFixesLoosePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("version = \"1.0.0\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions not tightened: %o", perm)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.Server.URL = "" }},
		{"relative url", func(c *Config) { c.Server.URL = "vault.example.com" }},
		{"ftp scheme", func(c *Config) { c.Server.URL = "ftp://vault.example.com" }},
		{"zero timeout", func(c *Config) { c.Server.TimeoutSecs = 0 }},
		{"bad tls version", func(c *Config) { c.Server.TLSMinVersion = "1.0" }},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -1 }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QVAULT_SERVER_URL", "https://override.example.com")
	t.Setenv("QVAULT_THEME", "light")
	t.Setenv("QVAULT_TIMEOUT_SECS", "45")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Server.URL != "https://override.example.com" {
		t.Errorf("URL override not applied: %q", cfg.Server.URL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme override not applied: %q", cfg.UI.Theme)
	}
	if cfg.Server.TimeoutSecs != 45 {
		t.Errorf("timeout override not applied: %d", cfg.Server.TimeoutSecs)
	}
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := Save(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloads := make(chan *Config, 4)
	w, err := NewWatcher(path, func(c *Config) { reloads <- c })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cfg := Default()
	cfg.Server.URL = "https://reloaded.example.com"
	if err := Save(cfg, path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-reloads:
		if got.Server.URL != "https://reloaded.example.com" {
			t.Errorf("reloaded URL = %q", got.Server.URL)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}
