// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/jeranaias/qvault-tui/internal/ledger"
)

func parseArgv(t *testing.T, argv ...string) (Command, Args) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"qvault"}, argv...)
	defer func() { os.Args = old }()
	return Parse()
}

func TestParseDefaultIsTUI(t *testing.T) {
	cmd, _ := parseArgv(t)
	if cmd != CmdTUI {
		t.Errorf("cmd = %v", cmd)
	}
}

func TestParseLoginFlags(t *testing.T) {
	cmd, args := parseArgv(t, "login", "--role", "auditor", "--username", "eve")
	if cmd != CmdLogin {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Role != "AUDITOR" {
		t.Errorf("role = %q", args.Role)
	}
	if args.Username != "eve" {
		t.Errorf("username = %q", args.Username)
	}
}

func TestParseEqualsForm(t *testing.T) {
	_, args := parseArgv(t, "login", "--server=https://vault.example.com")
	if args.Server != "https://vault.example.com" {
		t.Errorf("server = %q", args.Server)
	}
}

func TestParseVerifyFlags(t *testing.T) {
	cmd, args := parseArgv(t, "verify", "--offline", "--json")
	if cmd != CmdVerify {
		t.Fatalf("cmd = %v", cmd)
	}
	if !args.Offline || !args.JSON {
		t.Errorf("flags = %+v", args)
	}
}

func TestParseConfigSubcommand(t *testing.T) {
	cmd, args := parseArgv(t, "config", "set", "ui.theme", "light")
	if cmd != CmdConfig {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Subcommand != "set" {
		t.Errorf("subcommand = %q", args.Subcommand)
	}
	if len(args.Raw) != 3 || args.Raw[2] != "light" {
		t.Errorf("raw = %v", args.Raw)
	}
}

func TestBuildReportValidChain(t *testing.T) {
	block := ledger.Block{
		Index:        0,
		Timestamp:    json.Number("1725000000.0"),
		EventType:    ledger.EventEncryption,
		PreviousHash: "0",
	}
	block.Hash = ledger.ComputeHash(block)
	chain := []ledger.Block{block}

	report := buildReport("test", chain, ledger.VerifyChain(chain))
	if !report.LocalValid {
		t.Error("valid chain reported invalid")
	}
	if report.Blocks != 1 || report.BrokenIndex != nil {
		t.Errorf("report = %+v", report)
	}
}

func TestBuildReportBrokenChain(t *testing.T) {
	block := ledger.Block{Index: 0, Timestamp: json.Number("1"), PreviousHash: "0", Hash: "tampered"}
	chain := []ledger.Block{block}

	report := buildReport("test", chain, ledger.VerifyChain(chain))
	if report.LocalValid {
		t.Error("broken chain reported valid")
	}
	if report.BrokenIndex == nil || *report.BrokenIndex != 0 {
		t.Errorf("broken index = %v", report.BrokenIndex)
	}
	if report.Reason == "" {
		t.Error("reason missing")
	}
}
