// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI entry points of qvault: login and
// session inspection, offline ledger verification, and configuration
// management.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information, synced from main at startup.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command identifies the requested entry point.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdStatus
	CmdVerify
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Subcommand string
	Role       string
	Username   string
	Server     string
	Offline    bool
	JSON       bool
	Raw        []string
}

const usageText = `qvault - terminal client for the dual-key encryption service

Usage:
  qvault                     Start the TUI (default)
  qvault login               Sign in and store a session
    --username <name>        Username (prompted when omitted)
    --role <role>            ADMIN, SERVICE, or AUDITOR (default ADMIN)
    --server <url>           Override the configured service URL
  qvault logout              Discard the stored session
  qvault status              Show session and service configuration
  qvault verify              Fetch the audit ledger and verify the chain
    --offline                Verify the latest local snapshot instead
    --json                   Machine-readable output
  qvault config show         Print the active configuration
  qvault config set <k> <v>  Update a configuration value
  qvault config path         Print the config file location
  qvault version             Print version information

The TUI never stores your encryption key or password. Sessions live in
~/.qvault/session.json and die with the token.
`

// Parse reads os.Args and returns the command with its arguments.
func Parse() (Command, Args) {
	argv := os.Args[1:]
	if len(argv) == 0 {
		return CmdTUI, Args{}
	}

	cmd := CmdTUI
	switch argv[0] {
	case "login":
		cmd = CmdLogin
	case "logout":
		cmd = CmdLogout
	case "status", "s":
		cmd = CmdStatus
	case "verify":
		cmd = CmdVerify
	case "config":
		cmd = CmdConfig
	case "version", "--version", "-v":
		cmd = CmdVersion
	case "help", "--help", "-h":
		cmd = CmdHelp
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n%s", argv[0], usageText)
		os.Exit(2)
	}

	args := Args{}
	rest := argv[1:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		switch {
		case arg == "--offline":
			args.Offline = true
		case arg == "--json":
			args.JSON = true
		case strings.HasPrefix(arg, "--"):
			name := strings.TrimPrefix(arg, "--")
			value := ""
			if eq := strings.Index(name, "="); eq >= 0 {
				name, value = name[:eq], name[eq+1:]
			} else if i+1 < len(rest) && !strings.HasPrefix(rest[i+1], "-") {
				value = rest[i+1]
				i++
			}
			switch name {
			case "role":
				args.Role = strings.ToUpper(value)
			case "username", "user":
				args.Username = value
			case "server":
				args.Server = value
			}
		default:
			if args.Subcommand == "" {
				args.Subcommand = arg
			}
			args.Raw = append(args.Raw, arg)
		}
	}
	return cmd, args
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(usageText)
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("qvault %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
