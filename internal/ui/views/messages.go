// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package views provides the main screens of the qvault TUI.
//
// This file defines the Bubble Tea message types exchanged between the view
// models and the root application model. Messages are organized into:
//   - Authentication: login results and session expiry
//   - Crypto: text and file operation results
//   - Ledger: chain fetches and verification verdicts
//   - Telemetry: alert and statistics fetches
//
// Every result message carries the generation counter of the request that
// produced it, so a view can discard responses from submissions it has
// already abandoned.
package views

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/qvault-tui/internal/access"
	"github.com/jeranaias/qvault-tui/internal/api"
	"github.com/jeranaias/qvault-tui/internal/ledger"
	"github.com/jeranaias/qvault-tui/internal/monitor"
)

// =============================================================================
// AUTHENTICATION MESSAGES
// =============================================================================

// LoginResultMsg reports the outcome of a credential exchange.
type LoginResultMsg struct {
	Token    string
	Username string
	Role     access.Role
	Err      error
}

// SessionExpiredMsg signals that the service rejected the credential. The
// root model clears the session and returns to the login screen; the view
// that triggered it never renders the failure itself.
type SessionExpiredMsg struct{}

// =============================================================================
// CRYPTO MESSAGES
// =============================================================================

// EncryptTextResultMsg reports a text encryption outcome.
type EncryptTextResultMsg struct {
	Gen    uint64
	Result *api.TextEncryptResult
	Err    error
}

// DecryptTextResultMsg reports a text decryption outcome.
type DecryptTextResultMsg struct {
	Gen       uint64
	Plaintext string
	Err       error
}

// EncryptFileResultMsg reports a file encryption outcome. Path is where the
// encrypted artifact was written locally.
type EncryptFileResultMsg struct {
	Gen             uint64
	Path            string
	KeyID           string
	KyberCiphertext string
	Err             error
}

// DecryptFileResultMsg reports a file decryption outcome.
type DecryptFileResultMsg struct {
	Gen  uint64
	Path string
	Err  error
}

// =============================================================================
// LEDGER MESSAGES
// =============================================================================

// LedgerResultMsg delivers a fetched audit chain with both integrity
// verdicts: the service's own and the locally recomputed one.
type LedgerResultMsg struct {
	Gen         uint64
	Chain       []ledger.Block
	ServerValid bool
	LocalErr    *ledger.ChainError
	SnapshotID  string
	Err         error
}

// =============================================================================
// TELEMETRY MESSAGES
// =============================================================================

// TelemetryResultMsg delivers the joined alerts and statistics fetch. The
// two requests succeed or fail as one unit.
type TelemetryResultMsg struct {
	Gen    uint64
	Alerts []monitor.Alert
	Stats  *monitor.Stats
	Err    error
}

// =============================================================================
// HELPERS
// =============================================================================

// expired reports whether an error means the session is gone.
func expired(err error) bool {
	return err != nil && api.Classify(err) == api.KindAuthFailure
}

// IsExpired reports whether a result message carries an authorization
// failure. The root model checks every message with this before routing it,
// so session teardown and the redirect to login happen in one place; the
// originating view never renders the failure.
func IsExpired(msg tea.Msg) bool {
	switch m := msg.(type) {
	case SessionExpiredMsg:
		return true
	case LoginResultMsg:
		return false // a rejected login is a form error, not an expiry
	case EncryptTextResultMsg:
		return expired(m.Err)
	case EncryptFileResultMsg:
		return expired(m.Err)
	case DecryptTextResultMsg:
		return expired(m.Err)
	case DecryptFileResultMsg:
		return expired(m.Err)
	case LedgerResultMsg:
		return expired(m.Err)
	case TelemetryResultMsg:
		return expired(m.Err)
	default:
		return false
	}
}

// chainError extracts the typed verification failure, if any.
func chainError(err error) *ledger.ChainError {
	var ce *ledger.ChainError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}
