// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/qvault-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusSubmitting
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSubmitting:
		return "Working..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Shortcut is one key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders the bottom bar: status on the left, key hints on the
// right.
type StatusBar struct {
	theme  *styles.Theme
	width  int
	status Status
}

// NewStatusBar creates a status bar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme}
}

// SetWidth updates the render width.
func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// SetStatus updates the displayed status.
func (sb *StatusBar) SetStatus(s Status) {
	sb.status = s
}

// View renders the bar with the given shortcuts.
func (sb *StatusBar) View(shortcuts []Shortcut) string {
	left := sb.status.String()

	hints := make([]string, len(shortcuts))
	for i, sc := range shortcuts {
		hints[i] = sb.theme.ShortcutKey.Render(sc.Key) + " " + sb.theme.ShortcutDesc.Render(sc.Desc)
	}
	right := strings.Join(hints, "  ")

	gap := sb.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return sb.theme.StatusBar.Width(sb.width).Render(left + strings.Repeat(" ", gap) + right)
}
