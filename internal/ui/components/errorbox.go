// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/jeranaias/qvault-tui/internal/ui/styles"
)

// =============================================================================
// ERROR AND SUCCESS BANNERS
// =============================================================================

// ErrorBanner renders an error message box. Empty messages render nothing,
// so views can pass their error field unconditionally.
func ErrorBanner(theme *styles.Theme, message string) string {
	if message == "" {
		return ""
	}
	return theme.ErrorBox.Render(theme.ErrorTitle.Render("Error: ") + message)
}

// SuccessBanner renders a success confirmation line.
func SuccessBanner(theme *styles.Theme, message string) string {
	if message == "" {
		return ""
	}
	return theme.SuccessText.Render("OK ") + theme.ResultValue.Render(message)
}
