// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"

	"github.com/jeranaias/qvault-tui/internal/config"
)

// =============================================================================
// CONFIG MANAGEMENT
// =============================================================================

// HandleConfig implements `qvault config [show|set|path]`.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return configShow()
	case "set":
		if len(args.Raw) < 3 {
			return fmt.Errorf("usage: qvault config set <key> <value>")
		}
		return configSet(args.Raw[1], args.Raw[2])
	case "path":
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand %q", args.Subcommand)
	}
}

func configShow() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	fmt.Printf("server.url         = %s\n", cfg.Server.URL)
	fmt.Printf("server.timeout     = %ds\n", cfg.Server.TimeoutSecs)
	fmt.Printf("server.tls_min     = %s\n", cfg.Server.TLSMinVersion)
	fmt.Printf("server.rate_limit  = %.1f/s\n", cfg.Server.RateLimit)
	fmt.Printf("files.download_dir = %s\n", orDefault(cfg.Files.DownloadDir, "(current directory)"))
	fmt.Printf("ui.theme           = %s\n", cfg.UI.Theme)
	fmt.Printf("storage.snapshots  = %t\n", cfg.Storage.SnapshotsEnabled)
	return nil
}

func configSet(key, value string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch key {
	case "server.url":
		cfg.Server.URL = value
	case "server.timeout":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer", key)
		}
		cfg.Server.TimeoutSecs = n
	case "server.tls_min":
		cfg.Server.TLSMinVersion = value
	case "files.download_dir":
		cfg.Files.DownloadDir = value
	case "ui.theme":
		cfg.UI.Theme = value
	case "storage.snapshots":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false", key)
		}
		cfg.Storage.SnapshotsEnabled = b
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("rejected: %w", err)
	}

	path, err := config.Path()
	if err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	fmt.Printf("%s = %s\n", key, value)
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
