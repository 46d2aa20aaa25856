// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER AND NAVIGATION STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderRole  lipgloss.Style

	NavItem       lipgloss.Style
	NavItemActive lipgloss.Style

	// ==========================================================================
	// FORM STYLES
	// ==========================================================================

	FormLabel       lipgloss.Style
	FormHint        lipgloss.Style
	InputContainer  lipgloss.Style
	FocusedBorder   lipgloss.Style
	BlurredBorder   lipgloss.Style
	SubmitButton    lipgloss.Style
	SubmitDisabled  lipgloss.Style
	ModeTabActive   lipgloss.Style
	ModeTabInactive lipgloss.Style

	// ==========================================================================
	// RESULT AND FEEDBACK STYLES
	// ==========================================================================

	ResultBox    lipgloss.Style
	ResultLabel  lipgloss.Style
	ResultValue  lipgloss.Style
	SuccessText  lipgloss.Style
	ErrorBox     lipgloss.Style
	ErrorTitle   lipgloss.Style
	WarningText  lipgloss.Style
	MutedText    lipgloss.Style
	CopiedNotice lipgloss.Style

	// ==========================================================================
	// LEDGER TABLE STYLES
	// ==========================================================================

	TableHeader      lipgloss.Style
	TableRow         lipgloss.Style
	TableRowSelected lipgloss.Style
	TableRowFailure  lipgloss.Style
	ChainValid       lipgloss.Style
	ChainBroken      lipgloss.Style

	// ==========================================================================
	// TELEMETRY STYLES
	// ==========================================================================

	ChartBar    lipgloss.Style
	ChartLabel  lipgloss.Style
	AlertHigh   lipgloss.Style
	AlertMedium lipgloss.Style
	AlertLow    lipgloss.Style
	Healthy     lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	Spinner lipgloss.Style
}

// NewTheme creates a theme adapted to the terminal. dark forces the dark
// palette when the terminal background cannot be detected.
func NewTheme(dark bool) *Theme {
	profile := termenv.ColorProfile()
	if termenv.HasDarkBackground() {
		dark = true
	}
	lipgloss.SetHasDarkBackground(dark)

	t := &Theme{
		IsDark:       dark,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// SetSize updates the theme's layout dimensions on terminal resize.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header and navigation
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderRole = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.NavItem = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.NavItemActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true).
		Padding(0, 1)

	// Forms
	t.FormLabel = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.FormHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.FocusedBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.BlurredBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SubmitButton = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Emerald).
		Bold(true).
		Padding(0, 3)

	t.SubmitDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(Overlay).
		Padding(0, 3)

	t.ModeTabActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true).
		Padding(0, 2)

	t.ModeTabInactive = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)

	// Results and feedback
	t.ResultBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Emerald).
		Padding(0, 2)

	t.ResultLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.ResultValue = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SuccessText = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Rose).
		PaddingLeft(2)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.WarningText = lipgloss.NewStyle().
		Foreground(Amber)

	t.MutedText = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.CopiedNotice = lipgloss.NewStyle().
		Foreground(Emerald).
		Italic(true)

	// Ledger table
	t.TableHeader = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	t.TableRow = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.TableRowSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true)

	t.TableRowFailure = lipgloss.NewStyle().
		Foreground(Rose)

	t.ChainValid = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.ChainBroken = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true).
		Blink(false)

	// Telemetry
	t.ChartBar = lipgloss.NewStyle().
		Foreground(Cyan)

	t.ChartLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.AlertHigh = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.AlertMedium = lipgloss.NewStyle().
		Foreground(Amber)

	t.AlertLow = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Healthy = lipgloss.NewStyle().
		Foreground(Emerald)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)
}

// AlertStyle returns the style for an alert severity.
func (t *Theme) AlertStyle(severity string) lipgloss.Style {
	switch severity {
	case "high", "critical":
		return t.AlertHigh
	case "medium":
		return t.AlertMedium
	default:
		return t.AlertLow
	}
}
