// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/qvault-tui/internal/access"
	"github.com/jeranaias/qvault-tui/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header renders the top application bar with the brand and, once
// authenticated, the signed-in identity.
type Header struct {
	theme    *styles.Theme
	width    int
	username string
	role     access.Role
}

// NewHeader creates a header component.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{theme: theme}
}

// SetWidth updates the render width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetIdentity sets the signed-in identity. Empty values clear it.
func (h *Header) SetIdentity(username string, role access.Role) {
	h.username = username
	h.role = role
}

// View renders the header line.
func (h *Header) View() string {
	brand := h.theme.HeaderTitle.Render("qvault")
	subtitle := h.theme.HeaderRole.Render("quantum-resistant vault")

	left := brand + " " + subtitle

	var right string
	if h.username != "" {
		right = h.theme.HeaderRole.Render(fmt.Sprintf("%s [%s]", h.username, h.role))
	}

	gap := h.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}

	line := left + strings.Repeat(" ", gap) + right
	return h.theme.Header.Width(h.width).Render(line)
}
