// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for qvault.
//
// Configuration lives in TOML with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file location (in order of precedence):
//   - QVAULT_CONFIG environment variable
//   - ~/.qvault/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/qvault-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete qvault configuration.
type Config struct {
	Version string `toml:"version"`

	// Server holds the encryption service connection settings.
	Server ServerConfig `toml:"server"`

	// Files holds local artifact handling settings.
	Files FilesConfig `toml:"files"`

	// UI configuration.
	UI UIConfig `toml:"ui"`

	// Storage holds local snapshot settings.
	Storage StorageConfig `toml:"storage"`
}

// ServerConfig contains the encryption service connection settings.
type ServerConfig struct {
	// URL is the service origin, e.g. "https://vault.example.com".
	URL string `toml:"url"`
	// TimeoutSecs bounds non-file requests.
	TimeoutSecs int `toml:"timeout_secs"`
	// FileTimeoutSecs bounds multipart uploads and binary downloads.
	FileTimeoutSecs int `toml:"file_timeout_secs"`
	// TLSMinVersion is the minimum TLS version. Valid values: "1.2", "1.3".
	TLSMinVersion string `toml:"tls_min_version"`
	// RateLimit caps outgoing requests per second. 0 disables the limit.
	RateLimit float64 `toml:"rate_limit"`
}

// FilesConfig contains local artifact handling settings.
type FilesConfig struct {
	// DownloadDir is where encrypted and decrypted artifacts are written.
	// Empty means the current working directory.
	DownloadDir string `toml:"download_dir"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark" or "light".
	Theme string `toml:"theme"`
	// CompactMode uses a more compact layout.
	CompactMode bool `toml:"compact_mode"`
}

// StorageConfig contains local ledger snapshot settings.
type StorageConfig struct {
	// SnapshotsEnabled persists fetched audit chains to the local database.
	SnapshotsEnabled bool `toml:"snapshots_enabled"`
	// DatabasePath overrides the snapshot database location
	// (default ~/.qvault/snapshots.db).
	DatabasePath string `toml:"database_path"`
}

// =============================================================================
// DEFAULTS AND PATHS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Server: ServerConfig{
			URL:             "http://localhost:8000",
			TimeoutSecs:     30,
			FileTimeoutSecs: 120,
			TLSMinVersion:   "1.2",
			RateLimit:       10,
		},
		Files: FilesConfig{
			DownloadDir: "",
		},
		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
		},
		Storage: StorageConfig{
			SnapshotsEnabled: true,
			DatabasePath:     "",
		},
	}
}

// Dir returns the qvault configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".qvault"), nil
}

// Path returns the path to the TOML config file, honoring QVAULT_CONFIG.
func Path() (string, error) {
	if p := os.Getenv("QVAULT_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions tightens config file permissions to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD AND SAVE
// =============================================================================

// Load reads the config file, fills defaults, applies environment
// overrides, and validates. A missing file is not an error; the defaults
// apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := ensureSecurePermissions(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the given path atomically with 0600
// permissions.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// fillDefaults backfills zero values left by a partial config file.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Server.URL == "" {
		c.Server.URL = def.Server.URL
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = def.Server.TimeoutSecs
	}
	if c.Server.FileTimeoutSecs <= 0 {
		c.Server.FileTimeoutSecs = def.Server.FileTimeoutSecs
	}
	if c.Server.TLSMinVersion == "" {
		c.Server.TLSMinVersion = def.Server.TLSMinVersion
	}
	if c.Server.RateLimit < 0 {
		c.Server.RateLimit = def.Server.RateLimit
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
}

// ApplyEnvOverrides applies QVAULT_* environment variables on top of the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("QVAULT_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("QVAULT_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Server.TimeoutSecs = n
		}
	}
	if v := os.Getenv("QVAULT_TLS_MIN_VERSION"); v != "" {
		c.Server.TLSMinVersion = v
	}
	if v := os.Getenv("QVAULT_DOWNLOAD_DIR"); v != "" {
		c.Files.DownloadDir = v
	}
	if v := os.Getenv("QVAULT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("QVAULT_SNAPSHOTS"); v != "" {
		c.Storage.SnapshotsEnabled = v == "1" || strings.EqualFold(v, "true")
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{Field: "server.url", Message: "must be an absolute http(s) URL"})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{Field: "server.url", Message: "scheme must be http or https"})
	}

	if c.Server.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{Field: "server.timeout_secs", Message: "must be positive"})
	}
	if c.Server.FileTimeoutSecs <= 0 {
		errs = append(errs, ValidationError{Field: "server.file_timeout_secs", Message: "must be positive"})
	}
	if c.Server.TLSMinVersion != "1.2" && c.Server.TLSMinVersion != "1.3" {
		errs = append(errs, ValidationError{Field: "server.tls_min_version", Message: `must be "1.2" or "1.3"`})
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, ValidationError{Field: "server.rate_limit", Message: "cannot be negative"})
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		errs = append(errs, ValidationError{Field: "ui.theme", Message: `must be "dark" or "light"`})
	}
	if c.Files.DownloadDir != "" {
		if info, err := os.Stat(c.Files.DownloadDir); err == nil && !info.IsDir() {
			errs = append(errs, ValidationError{Field: "files.download_dir", Message: "is not a directory"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Timeout returns the non-file request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// FileTimeout returns the file transfer timeout as a duration.
func (c *Config) FileTimeout() time.Duration {
	return time.Duration(c.Server.FileTimeoutSecs) * time.Second
}

// SnapshotDBPath resolves the snapshot database location.
func (c *Config) SnapshotDBPath() (string, error) {
	if c.Storage.DatabasePath != "" {
		return c.Storage.DatabasePath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snapshots.db"), nil
}
