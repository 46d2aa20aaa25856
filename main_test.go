// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/qvault-tui/internal/access"
	"github.com/jeranaias/qvault-tui/internal/api"
	"github.com/jeranaias/qvault-tui/internal/config"
	"github.com/jeranaias/qvault-tui/internal/session"
	"github.com/jeranaias/qvault-tui/internal/ui/components"
	"github.com/jeranaias/qvault-tui/internal/ui/views"
)

func testModel(t *testing.T) *Model {
	t.Helper()
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	client := api.NewClient("http://127.0.0.1:1", store)
	return NewModel(config.Default(), client, store, nil)
}

func digit(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDigitShortcutSwitchesTab(t *testing.T) {
	m := testModel(t)
	m.signIn("op", access.RoleAdmin)

	_, handled := m.handleGlobalKey(digit("5"))
	if !handled {
		t.Fatal("digit shortcut not handled")
	}
	if got := m.nav.Active(); got != access.ViewAlerts {
		t.Errorf("active view = %v, want %v", got, access.ViewAlerts)
	}
}

func TestDigitShortcutYieldsToForms(t *testing.T) {
	m := testModel(t)
	m.signIn("op", access.RoleAdmin)
	m.nav.SetActive(access.ViewEncrypt)

	_, handled := m.handleGlobalKey(digit("1"))
	if handled {
		t.Error("digit intercepted while a form owns the keys")
	}
	if got := m.nav.Active(); got != access.ViewEncrypt {
		t.Errorf("active view = %v, want %v", got, access.ViewEncrypt)
	}
}

func TestStatusBarTracksActiveView(t *testing.T) {
	m := testModel(t)
	m.signIn("op", access.RoleAdmin)
	if !m.nav.SetActive(access.ViewEncrypt) {
		t.Fatal("encrypt tab not visible")
	}
	if got := m.activeStatus(); got != components.StatusReady {
		t.Errorf("status = %v, want %v", got, components.StatusReady)
	}

	m.encrypt, _ = m.encrypt.Update(views.EncryptTextResultMsg{Err: errors.New("boom")})
	if got := m.activeStatus(); got != components.StatusError {
		t.Errorf("status = %v, want %v", got, components.StatusError)
	}
}

func TestDigitShortcutRespectsRolePolicy(t *testing.T) {
	m := testModel(t)
	m.signIn("aud", access.RoleAuditor)

	// An auditor sees Overview and Ledger only, so 2 lands on the ledger
	// and 3 is out of range.
	if _, handled := m.handleGlobalKey(digit("2")); !handled {
		t.Fatal("in-range digit not handled")
	}
	if got := m.nav.Active(); got != access.ViewLedger {
		t.Errorf("active view = %v, want %v", got, access.ViewLedger)
	}
	if _, handled := m.handleGlobalKey(digit("3")); handled {
		t.Error("out-of-range digit handled")
	}
}
