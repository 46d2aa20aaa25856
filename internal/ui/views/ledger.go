// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/qvault-tui/internal/api"
	"github.com/jeranaias/qvault-tui/internal/ledger"
	"github.com/jeranaias/qvault-tui/internal/storage"
	"github.com/jeranaias/qvault-tui/internal/ui/components"
	"github.com/jeranaias/qvault-tui/internal/ui/styles"
	"github.com/jeranaias/qvault-tui/internal/util"
)

// =============================================================================
// LEDGER VIEW
// =============================================================================

// Ledger is the audit chain browser. Each fetch is verified twice: the
// service reports its own verdict and the chain is recomputed locally. A
// snapshot of every fetch is kept in the local store when one is wired.
type Ledger struct {
	theme  *styles.Theme
	client *api.Client
	store  *storage.SnapshotStore
	keys   KeyMap

	table      table.Model
	chain      []ledger.Block
	detail     viewport.Model
	showDetail bool

	loading     bool
	fetched     bool
	gen         uint64
	spinner     spinner.Model
	errMsg      string
	serverValid bool
	localErr    *ledger.ChainError
	snapshotID  string

	width  int
	height int
}

// NewLedger creates the ledger view. store may be nil to disable snapshots.
func NewLedger(theme *styles.Theme, client *api.Client, store *storage.SnapshotStore) *Ledger {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	columns := []table.Column{
		{Title: "#", Width: 5},
		{Title: "Time", Width: 20},
		{Title: "Event", Width: 24},
		{Title: "User", Width: 14},
		{Title: "Hash", Width: 18},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	st := table.DefaultStyles()
	st.Header = theme.TableHeader
	st.Selected = theme.TableRowSelected
	tbl.SetStyles(st)

	return &Ledger{
		theme:   theme,
		client:  client,
		store:   store,
		keys:    DefaultKeyMap(),
		table:   tbl,
		spinner: sp,
	}
}

// SetSize updates layout dimensions.
func (l *Ledger) SetSize(width, height int) {
	l.width = width
	l.height = height
	rows := height - 10
	if rows < 4 {
		rows = 4
	}
	l.table.SetHeight(rows)
	l.detail = viewport.New(width-4, rows+2)
	l.refreshDetail()
}

// Init triggers the first fetch when the view is entered.
func (l *Ledger) Init() tea.Cmd {
	if l.fetched || l.loading {
		return l.spinner.Tick
	}
	return tea.Batch(l.spinner.Tick, l.fetch())
}

// fetch pulls the chain and both integrity verdicts in one command.
func (l *Ledger) fetch() tea.Cmd {
	l.loading = true
	l.gen++
	gen := l.gen
	client := l.client
	store := l.store

	return func() tea.Msg {
		ctx := context.Background()
		chain, err := client.Ledger(ctx)
		if err != nil {
			return LedgerResultMsg{Gen: gen, Err: err}
		}

		serverValid, err := client.ValidateLedger(ctx)
		if err != nil {
			return LedgerResultMsg{Gen: gen, Err: err}
		}

		verifyErr := ledger.VerifyChain(chain)

		var snapshotID string
		if store != nil {
			// Snapshot failures never block the view.
			snapshotID, _ = store.Record(chain, serverValid && verifyErr == nil)
		}

		return LedgerResultMsg{
			Gen:         gen,
			Chain:       chain,
			ServerValid: serverValid,
			LocalErr:    chainError(verifyErr),
			SnapshotID:  snapshotID,
		}
	}
}

// Update handles ledger interaction.
func (l *Ledger) Update(msg tea.Msg) (*Ledger, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd

	case LedgerResultMsg:
		if msg.Gen != l.gen {
			return l, nil
		}
		l.loading = false
		if msg.Err != nil {
			l.errMsg = api.UserMessage(msg.Err, "Could not load the audit ledger.")
			return l, nil
		}
		l.errMsg = ""
		l.fetched = true
		l.chain = msg.Chain
		l.serverValid = msg.ServerValid
		l.localErr = msg.LocalErr
		l.snapshotID = msg.SnapshotID
		l.table.SetRows(l.rows())
		return l, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, l.keys.Refresh):
			return l, l.fetch()
		case key.Matches(msg, l.keys.Submit):
			l.showDetail = !l.showDetail
			l.refreshDetail()
			return l, nil
		case key.Matches(msg, l.keys.Back) && l.showDetail:
			l.showDetail = false
			return l, nil
		}
	}

	var cmd tea.Cmd
	if l.showDetail {
		l.detail, cmd = l.detail.Update(msg)
	} else {
		l.table, cmd = l.table.Update(msg)
		l.refreshDetail()
	}
	return l, cmd
}

// Status reports the fetch state for the status bar.
func (l *Ledger) Status() components.Status {
	switch {
	case l.loading:
		return components.StatusSubmitting
	case l.errMsg != "":
		return components.StatusError
	}
	return components.StatusReady
}

func (l *Ledger) rows() []table.Row {
	rows := make([]table.Row, len(l.chain))
	for i, b := range l.chain {
		event := b.EventType
		if b.IsFailure() {
			event = "! " + event
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", b.Index),
			b.Time().Format("2006-01-02 15:04:05"),
			util.TruncateWidth(event, 24),
			util.TruncateWidth(b.UserID, 14),
			util.TruncateWidth(b.Hash, 18),
		}
	}
	return rows
}

func (l *Ledger) refreshDetail() {
	if l.detail.Width == 0 {
		return
	}
	cursor := l.table.Cursor()
	if cursor < 0 || cursor >= len(l.chain) {
		l.detail.SetContent("")
		return
	}
	l.detail.SetContent(components.HighlightJSON(l.chain[cursor]))
}

// View renders the ledger browser.
func (l *Ledger) View() string {
	t := l.theme
	var b strings.Builder

	b.WriteString(l.integrityLine())
	b.WriteString("\n\n")

	if l.errMsg != "" {
		b.WriteString(components.ErrorBanner(t, l.errMsg))
		b.WriteString("\n\n")
	}

	if l.loading {
		b.WriteString(l.spinner.View())
		b.WriteString(t.MutedText.Render(" loading ledger..."))
	} else if len(l.chain) == 0 && l.fetched {
		b.WriteString(t.MutedText.Render("The ledger is empty."))
	} else if l.showDetail {
		b.WriteString(l.detail.View())
		b.WriteString("\n")
		b.WriteString(t.FormHint.Render("Esc to close, arrows to scroll"))
	} else {
		b.WriteString(l.table.View())
		b.WriteString("\n")
		b.WriteString(t.FormHint.Render("Enter for block detail, r to refresh"))
	}

	if l.snapshotID != "" && !l.loading {
		b.WriteString("\n")
		b.WriteString(t.MutedText.Render("snapshot " + util.TruncateWidth(l.snapshotID, 12)))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// integrityLine summarizes both verification verdicts.
func (l *Ledger) integrityLine() string {
	t := l.theme
	if !l.fetched {
		return t.MutedText.Render("Audit ledger")
	}

	var parts []string
	if l.serverValid {
		parts = append(parts, t.ChainValid.Render("service: valid"))
	} else {
		parts = append(parts, t.ChainBroken.Render("service: INVALID"))
	}
	if l.localErr == nil {
		parts = append(parts, t.ChainValid.Render("local: verified"))
	} else {
		parts = append(parts, t.ChainBroken.Render(
			fmt.Sprintf("local: broken at block %d (%s)", l.localErr.Index, l.localErr.Reason)))
	}
	parts = append(parts, t.MutedText.Render(fmt.Sprintf("%d blocks", len(l.chain))))
	return strings.Join(parts, "  ")
}
