// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/qvault-tui/internal/api"
	"github.com/jeranaias/qvault-tui/internal/config"
	"github.com/jeranaias/qvault-tui/internal/ledger"
	"github.com/jeranaias/qvault-tui/internal/session"
	"github.com/jeranaias/qvault-tui/internal/storage"
)

// =============================================================================
// LEDGER VERIFICATION
// =============================================================================

// verifyReport is the --json output shape.
type verifyReport struct {
	Source      string `json:"source"`
	Blocks      int    `json:"blocks"`
	ServerValid *bool  `json:"server_valid,omitempty"`
	LocalValid  bool   `json:"local_valid"`
	BrokenIndex *int64 `json:"broken_index,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// HandleVerify verifies the audit chain: against the live service by
// default, or against the most recent local snapshot with --offline.
func HandleVerify(args Args) error {
	if args.Offline {
		return verifyOffline(args)
	}
	return verifyLive(args)
}

func verifyLive(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sessionPath, err := session.FilePath()
	if err != nil {
		return err
	}
	store := session.NewStore(sessionPath)
	if _, ok := store.Restore(); !ok {
		return fmt.Errorf("no stored session; run `qvault login` first")
	}

	client := api.NewClient(cfg.Server.URL, store)
	ctx := context.Background()

	chain, err := client.Ledger(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch the ledger: %s", api.UserMessage(err, err.Error()))
	}
	serverValid, err := client.ValidateLedger(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch the service verdict: %s", api.UserMessage(err, err.Error()))
	}

	report := buildReport("service", chain, ledger.VerifyChain(chain))
	report.ServerValid = &serverValid

	return emitReport(args, report)
}

func verifyOffline(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dbPath, err := cfg.SnapshotDBPath()
	if err != nil {
		return err
	}

	snapshots, err := storage.OpenSnapshotStore(dbPath)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	latest, err := snapshots.Latest()
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no local snapshots; open the ledger view or run a live verify first")
	}
	if err != nil {
		return err
	}

	source := fmt.Sprintf("snapshot %s (%s)", latest.ID, latest.TakenAt.Format("2006-01-02 15:04"))
	report := buildReport(source, latest.Chain, ledger.VerifyChain(latest.Chain))
	return emitReport(args, report)
}

func buildReport(source string, chain []ledger.Block, verifyErr error) verifyReport {
	report := verifyReport{
		Source:     source,
		Blocks:     len(chain),
		LocalValid: verifyErr == nil,
	}
	var ce *ledger.ChainError
	if errors.As(verifyErr, &ce) {
		idx := ce.Index
		report.BrokenIndex = &idx
		report.Reason = ce.Reason
	}
	return report
}

func emitReport(args Args, report verifyReport) error {
	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Printf("Source:  %s\n", report.Source)
		fmt.Printf("Blocks:  %d\n", report.Blocks)
		if report.ServerValid != nil {
			fmt.Printf("Service: %s\n", verdict(*report.ServerValid))
		}
		fmt.Printf("Local:   %s\n", verdict(report.LocalValid))
		if report.BrokenIndex != nil {
			fmt.Printf("Broken:  block %d (%s)\n", *report.BrokenIndex, report.Reason)
		}
	}

	if !report.LocalValid || (report.ServerValid != nil && !*report.ServerValid) {
		return fmt.Errorf("ledger verification failed")
	}
	return nil
}

func verdict(ok bool) string {
	if ok {
		return "valid"
	}
	return "INVALID"
}
