// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/atotto/clipboard"

	"github.com/jeranaias/qvault-tui/internal/ui/styles"
	"github.com/jeranaias/qvault-tui/internal/util"
)

// =============================================================================
// RESULT BOX COMPONENT
// =============================================================================

// ResultField is one labeled value in a result box. Sensitive marks values
// that are elided in the rendering but still copyable in full.
type ResultField struct {
	Label     string
	Value     string
	Sensitive bool
}

// ResultBox displays the outcome of a crypto operation: labeled fields with
// copy-to-clipboard selection. The kyber ciphertext lives here, so losing
// this box means losing the artifact.
type ResultBox struct {
	theme    *styles.Theme
	width    int
	fields   []ResultField
	selected int
	copied   bool
}

// NewResultBox creates a result box component.
func NewResultBox(theme *styles.Theme) *ResultBox {
	return &ResultBox{theme: theme, width: 80}
}

// SetWidth updates the render width.
func (rb *ResultBox) SetWidth(width int) {
	rb.width = width
}

// SetFields replaces the displayed fields and resets the selection.
func (rb *ResultBox) SetFields(fields []ResultField) {
	rb.fields = fields
	rb.selected = 0
	rb.copied = false
}

// Empty reports whether the box has nothing to show.
func (rb *ResultBox) Empty() bool {
	return len(rb.fields) == 0
}

// Clear removes all fields.
func (rb *ResultBox) Clear() {
	rb.fields = nil
	rb.copied = false
}

// Next moves the copy selection down.
func (rb *ResultBox) Next() {
	if len(rb.fields) == 0 {
		return
	}
	rb.selected = (rb.selected + 1) % len(rb.fields)
	rb.copied = false
}

// CopySelected copies the selected field's full value to the clipboard.
func (rb *ResultBox) CopySelected() error {
	if len(rb.fields) == 0 {
		return nil
	}
	if err := clipboard.WriteAll(rb.fields[rb.selected].Value); err != nil {
		return err
	}
	rb.copied = true
	return nil
}

// View renders the box.
func (rb *ResultBox) View() string {
	if len(rb.fields) == 0 {
		return ""
	}

	valueWidth := rb.width - 24
	if valueWidth < 16 {
		valueWidth = 16
	}

	var b strings.Builder
	for i, f := range rb.fields {
		marker := "  "
		if i == rb.selected {
			marker = "> "
		}
		value := f.Value
		if f.Sensitive && len(value) > 8 {
			value = value[:8] + "..."
		}
		value = util.TruncateWidth(value, valueWidth)

		b.WriteString(marker)
		b.WriteString(rb.theme.ResultLabel.Render(util.PadRight(f.Label+":", 18)))
		b.WriteString(rb.theme.ResultValue.Render(value))
		if i < len(rb.fields)-1 {
			b.WriteString("\n")
		}
	}

	if rb.copied {
		b.WriteString("\n")
		b.WriteString(rb.theme.CopiedNotice.Render("copied to clipboard"))
	}

	return rb.theme.ResultBox.Width(rb.width - 2).Render(b.String())
}
