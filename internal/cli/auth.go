// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jeranaias/qvault-tui/internal/access"
	"github.com/jeranaias/qvault-tui/internal/api"
	"github.com/jeranaias/qvault-tui/internal/config"
	"github.com/jeranaias/qvault-tui/internal/session"
)

// =============================================================================
// LOGIN / LOGOUT / STATUS
// =============================================================================

// HandleLogin performs the credential exchange from the terminal and
// persists the resulting session. The password is read with echo disabled
// and is gone once the exchange completes.
func HandleLogin(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	serverURL := cfg.Server.URL
	if args.Server != "" {
		serverURL = args.Server
	}

	username := args.Username
	if username == "" {
		fmt.Print("Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	role := access.Role(args.Role)
	if args.Role == "" {
		role = access.RoleAdmin
	}
	if !role.Valid() {
		return fmt.Errorf("invalid role %q (valid: ADMIN, SERVICE, AUDITOR)", args.Role)
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return fmt.Errorf("password is required")
	}

	sessionPath, err := session.FilePath()
	if err != nil {
		return err
	}
	store := session.NewStore(sessionPath)

	client := api.NewClient(serverURL, store)
	token, err := client.Login(context.Background(), username, role, string(password))
	if err != nil {
		return fmt.Errorf("login failed: %s", api.UserMessage(err, "the service rejected the request"))
	}

	if _, err := store.Establish(token, username, role); err != nil {
		return err
	}

	fmt.Printf("Signed in as %s (%s) at %s\n", username, role, serverURL)
	return nil
}

// HandleLogout discards the stored session.
func HandleLogout() error {
	sessionPath, err := session.FilePath()
	if err != nil {
		return err
	}
	store := session.NewStore(sessionPath)
	store.Restore()
	store.Clear()
	fmt.Println("Session discarded.")
	return nil
}

// HandleStatus shows the session and service configuration.
func HandleStatus() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("Server:   %s\n", cfg.Server.URL)
	fmt.Printf("Timeout:  %ds (files %ds)\n", cfg.Server.TimeoutSecs, cfg.Server.FileTimeoutSecs)
	fmt.Printf("TLS:      >= %s\n", cfg.Server.TLSMinVersion)

	sessionPath, err := session.FilePath()
	if err != nil {
		return err
	}
	store := session.NewStore(sessionPath)
	store.Restore()

	current := store.Current()
	if !current.Authenticated() {
		fmt.Println("Session:  none (run `qvault login`)")
		return nil
	}
	fmt.Printf("Session:  %s (%s), since %s\n",
		current.Username, current.Role, current.IssuedAt.Format("2006-01-02 15:04"))
	return nil
}
