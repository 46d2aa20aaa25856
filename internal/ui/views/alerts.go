// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jeranaias/qvault-tui/internal/api"
	"github.com/jeranaias/qvault-tui/internal/monitor"
	"github.com/jeranaias/qvault-tui/internal/ui/components"
	"github.com/jeranaias/qvault-tui/internal/ui/styles"
)

// =============================================================================
// ALERTS VIEW
// =============================================================================

// Alerts is the telemetry screen: active anomaly alerts plus aggregate
// activity statistics. Both are fetched together; a failure of either
// fails the whole refresh.
type Alerts struct {
	theme  *styles.Theme
	client *api.Client
	keys   KeyMap

	alerts []monitor.Alert
	stats  *monitor.Stats

	loading bool
	fetched bool
	gen     uint64
	spinner spinner.Model
	errMsg  string
	printer *message.Printer

	width  int
	height int
}

// NewAlerts creates the alerts view.
func NewAlerts(theme *styles.Theme, client *api.Client) *Alerts {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return &Alerts{
		theme:   theme,
		client:  client,
		keys:    DefaultKeyMap(),
		spinner: sp,
		printer: message.NewPrinter(language.English),
	}
}

// SetSize updates layout dimensions.
func (a *Alerts) SetSize(width, height int) {
	a.width = width
	a.height = height
}

// Init triggers the first fetch when the view is entered.
func (a *Alerts) Init() tea.Cmd {
	if a.fetched || a.loading {
		return a.spinner.Tick
	}
	return tea.Batch(a.spinner.Tick, a.fetch())
}

// fetch pulls alerts and statistics as one unit.
func (a *Alerts) fetch() tea.Cmd {
	a.loading = true
	a.gen++
	gen := a.gen
	client := a.client

	return func() tea.Msg {
		ctx := context.Background()
		alerts, err := client.Alerts(ctx)
		if err != nil {
			return TelemetryResultMsg{Gen: gen, Err: err}
		}
		stats, err := client.Stats(ctx)
		if err != nil {
			return TelemetryResultMsg{Gen: gen, Err: err}
		}
		return TelemetryResultMsg{Gen: gen, Alerts: alerts, Stats: stats}
	}
}

// Update handles telemetry interaction.
func (a *Alerts) Update(msg tea.Msg) (*Alerts, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case TelemetryResultMsg:
		if msg.Gen != a.gen {
			return a, nil
		}
		a.loading = false
		if msg.Err != nil {
			a.errMsg = api.UserMessage(msg.Err, "Could not load telemetry.")
			return a, nil
		}
		a.errMsg = ""
		a.fetched = true
		a.alerts = msg.Alerts
		a.stats = msg.Stats
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Refresh) {
			return a, a.fetch()
		}
	}
	return a, nil
}

// View renders the telemetry screen.
// Status reports the fetch state for the status bar.
func (a *Alerts) Status() components.Status {
	switch {
	case a.loading:
		return components.StatusSubmitting
	case a.errMsg != "":
		return components.StatusError
	}
	return components.StatusReady
}

func (a *Alerts) View() string {
	t := a.theme
	var b strings.Builder

	if a.errMsg != "" {
		b.WriteString(components.ErrorBanner(t, a.errMsg))
		b.WriteString("\n\n")
	}

	if a.loading {
		b.WriteString(a.spinner.View())
		b.WriteString(t.MutedText.Render(" loading telemetry..."))
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}

	if !a.fetched {
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}

	b.WriteString(a.summaryLine())
	b.WriteString("\n\n")

	b.WriteString(t.FormLabel.Render("Active alerts"))
	b.WriteString("\n")
	b.WriteString(a.alertList())
	b.WriteString("\n\n")

	if a.stats != nil {
		b.WriteString(t.FormLabel.Render("Event distribution"))
		b.WriteString("\n")
		b.WriteString(components.RenderDistribution(t, a.stats, a.width-8))
		b.WriteString("\n\n")

		b.WriteString(t.FormLabel.Render("Last 24 hours"))
		b.WriteString("\n")
		b.WriteString(components.RenderTimeline(t, a.stats))
	}

	b.WriteString("\n\n")
	b.WriteString(t.FormHint.Render("r to refresh"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (a *Alerts) summaryLine() string {
	t := a.theme
	if a.stats == nil {
		return ""
	}
	total := a.printer.Sprintf("%d", a.stats.TotalEvents)
	recent := a.printer.Sprintf("%d", a.stats.EventsLast24h)
	failures := a.printer.Sprintf("%d", a.stats.Failures())
	return strings.Join([]string{
		t.ResultLabel.Render("events: ") + t.ResultValue.Render(total),
		t.ResultLabel.Render("24h: ") + t.ResultValue.Render(recent),
		t.ResultLabel.Render("failures: ") + t.ResultValue.Render(failures),
	}, "   ")
}

func (a *Alerts) alertList() string {
	t := a.theme
	if len(a.alerts) == 0 {
		return t.Healthy.Render("No anomalies detected. All activity looks normal.")
	}
	lines := make([]string, len(a.alerts))
	for i, alert := range a.alerts {
		style := t.AlertStyle(alert.Severity)
		lines[i] = style.Render("* ") + t.ResultValue.Render(alert.Text())
	}
	return strings.Join(lines, "\n")
}
