// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewTheme(t *testing.T) {
	theme := NewTheme(true)
	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}
	if !theme.IsDark {
		t.Error("dark flag not honored")
	}
}

func TestSetSize(t *testing.T) {
	theme := NewTheme(true)
	theme.SetSize(120, 40)
	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("size = %dx%d", theme.Width, theme.Height)
	}
}

func TestAlertStyle(t *testing.T) {
	theme := NewTheme(true)
	cases := map[string]string{
		"high":     theme.AlertHigh.Render("x"),
		"critical": theme.AlertHigh.Render("x"),
		"medium":   theme.AlertMedium.Render("x"),
		"low":      theme.AlertLow.Render("x"),
		"":         theme.AlertLow.Render("x"),
	}
	for severity, want := range cases {
		if got := theme.AlertStyle(severity).Render("x"); got != want {
			t.Errorf("AlertStyle(%q) mismatch", severity)
		}
	}
}

func TestSeverityColor(t *testing.T) {
	if SeverityColor("high") != Rose {
		t.Error("high should map to Rose")
	}
	if SeverityColor("medium") != Amber {
		t.Error("medium should map to Amber")
	}
	if SeverityColor("low") != TextSecondary {
		t.Error("low should map to TextSecondary")
	}
}
