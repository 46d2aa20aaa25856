// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/qvault-tui/internal/access"
	"github.com/jeranaias/qvault-tui/internal/ui/styles"
)

// =============================================================================
// OVERVIEW VIEW
// =============================================================================

// systemInfo is the markdown shown to every signed-in role.
const systemInfo = `# How qvault protects your data

Every payload is sealed under **two keys at once**:

- **Key A** stays inside the service. You reference it by its *key ID* and
  it never leaves the vault.
- **Key B** is yours. You type it for each operation and the service
  forgets it the moment the operation completes.

The key exchange uses **Kyber**, a post-quantum key encapsulation
mechanism. Each encryption produces a *kyber ciphertext* alongside the
encrypted data.

> Keep the kyber ciphertext. The service does not retain it, and without
> it the artifact cannot be decrypted - by anyone.

## Operations

| Operation | Needs |
|-----------|-------|
| Encrypt   | payload, your key, key ID |
| Decrypt   | encrypted data, kyber ciphertext, your key, key ID |

## Audit

Every operation is chained into a tamper-evident ledger. Auditors can
verify the chain block by block; any edit to history breaks the hashes
that follow it.
`

// Overview renders the system information page in a scrollable viewport.
type Overview struct {
	theme    *styles.Theme
	viewport viewport.Model
	username string
	role     access.Role
	rendered string
	ready    bool
}

// NewOverview creates the overview view.
func NewOverview(theme *styles.Theme) *Overview {
	return &Overview{theme: theme}
}

// SetIdentity records who is signed in, shown above the rendered page.
func (o *Overview) SetIdentity(username string, role access.Role) {
	o.username = username
	o.role = role
	o.rendered = ""
}

// SetSize resizes the viewport and re-renders the markdown to fit.
func (o *Overview) SetSize(width, height int) {
	if !o.ready {
		o.viewport = viewport.New(width, height)
		o.ready = true
	} else {
		o.viewport.Width = width
		o.viewport.Height = height
	}
	o.render(width)
}

func (o *Overview) render(width int) {
	wrap := width - 4
	if wrap < 40 {
		wrap = 40
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		o.rendered = systemInfo
	} else if out, err := renderer.Render(systemInfo); err != nil {
		o.rendered = systemInfo
	} else {
		o.rendered = out
	}

	header := o.theme.HeaderRole.Render(
		fmt.Sprintf("Signed in as %s (%s)", o.username, o.role))
	o.viewport.SetContent(header + "\n" + o.rendered)
}

// Update scrolls the viewport.
func (o *Overview) Update(msg tea.Msg) (*Overview, tea.Cmd) {
	if !o.ready {
		return o, nil
	}
	var cmd tea.Cmd
	o.viewport, cmd = o.viewport.Update(msg)
	return o, cmd
}

// View renders the page.
func (o *Overview) View() string {
	if !o.ready {
		return ""
	}
	var b strings.Builder
	b.WriteString(o.viewport.View())
	return b.String()
}
