// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/qvault-tui/internal/monitor"
	"github.com/jeranaias/qvault-tui/internal/ui/styles"
	"github.com/jeranaias/qvault-tui/internal/util"
)

// =============================================================================
// TELEMETRY CHARTS
// =============================================================================

// RenderDistribution renders the event distribution as horizontal bars.
func RenderDistribution(theme *styles.Theme, stats *monitor.Stats, width int) string {
	bars := stats.DistributionBars()
	maxCount := 0
	for _, b := range bars {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	barWidth := width - 28
	if barWidth < 10 {
		barWidth = 10
	}

	var b strings.Builder
	for i, bar := range bars {
		filled := 0
		if maxCount > 0 {
			filled = bar.Count * barWidth / maxCount
		}
		color := theme.ChartBar
		if bar.Label == "Failure" {
			color = theme.AlertHigh
		}
		b.WriteString(theme.ChartLabel.Render(util.PadRight(bar.Label, 12)))
		b.WriteString(renderBar(color, filled, barWidth))
		b.WriteString(fmt.Sprintf(" %d", bar.Count))
		if i < len(bars)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderTimeline renders the 24-hour activity timeline as a column chart.
// Hours are labeled every fourth column to keep the axis readable.
func RenderTimeline(theme *styles.Theme, stats *monitor.Stats) string {
	points := stats.Timeline
	if len(points) == 0 {
		return theme.MutedText.Render("no activity recorded")
	}

	maxEvents := stats.MaxTimelineEvents()
	const height = 6

	var rows []string
	for level := height; level >= 1; level-- {
		var row strings.Builder
		for _, p := range points {
			h := 0
			if maxEvents > 0 {
				h = p.Events * height / maxEvents
				if p.Events > 0 && h == 0 {
					h = 1
				}
			}
			if h >= level {
				row.WriteString(theme.ChartBar.Render("# "))
			} else {
				row.WriteString("  ")
			}
		}
		rows = append(rows, row.String())
	}

	var axis strings.Builder
	for i, p := range points {
		if i%4 == 0 && len(p.Time) >= 2 {
			axis.WriteString(theme.ChartLabel.Render(p.Time[:2]))
		} else {
			axis.WriteString("  ")
		}
	}
	rows = append(rows, axis.String())

	return strings.Join(rows, "\n")
}

// renderBar renders a horizontal bar of the given fill.
func renderBar(style lipgloss.Style, filled, width int) string {
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return style.Render(strings.Repeat("#", filled)) + strings.Repeat("-", width-filled)
}
