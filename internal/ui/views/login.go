// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/qvault-tui/internal/access"
	"github.com/jeranaias/qvault-tui/internal/api"
	"github.com/jeranaias/qvault-tui/internal/ui/components"
	"github.com/jeranaias/qvault-tui/internal/ui/styles"
)

// =============================================================================
// LOGIN VIEW
// =============================================================================

const (
	loginFieldUsername = iota
	loginFieldPassword
	loginFieldRole
	loginFieldCount
)

// Login is the credential entry screen. The password is masked on entry,
// sent once, and never stored.
type Login struct {
	theme  *styles.Theme
	client *api.Client
	keys   KeyMap

	username textinput.Model
	password textinput.Model
	roleIdx  int
	focus    int

	submitting bool
	spinner    spinner.Model
	errMsg     string
	width      int
}

// NewLogin creates the login view.
func NewLogin(theme *styles.Theme, client *api.Client) *Login {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return &Login{
		theme:    theme,
		client:   client,
		keys:     DefaultKeyMap(),
		username: username,
		password: password,
		spinner:  sp,
	}
}

// Reset clears all fields, typically after logout or session expiry.
func (l *Login) Reset() {
	l.username.SetValue("")
	l.password.SetValue("")
	l.roleIdx = 0
	l.focus = loginFieldUsername
	l.username.Focus()
	l.password.Blur()
	l.submitting = false
	l.errMsg = ""
}

// SetError displays a message above the form, used by the root model for
// the session-expired notice.
func (l *Login) SetError(msg string) {
	l.errMsg = msg
}

// SetWidth updates the render width.
func (l *Login) SetWidth(width int) {
	l.width = width
}

// Init starts the spinner tick.
func (l *Login) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update handles input for the login form.
func (l *Login) Update(msg tea.Msg) (*Login, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd

	case LoginResultMsg:
		l.submitting = false
		if msg.Err != nil {
			l.password.SetValue("")
			l.errMsg = api.UserMessage(msg.Err, "Login failed.")
			return l, nil
		}
		// The root model consumes the success; nothing to show here.
		return l, nil

	case tea.KeyMsg:
		if l.submitting {
			// Input is locked while the exchange is in flight.
			return l, nil
		}
		switch {
		case key.Matches(msg, l.keys.Submit):
			return l, l.submit()
		case msg.String() == "tab" || msg.String() == "down":
			l.setFocus((l.focus + 1) % loginFieldCount)
			return l, nil
		case msg.String() == "shift+tab" || msg.String() == "up":
			l.setFocus((l.focus + loginFieldCount - 1) % loginFieldCount)
			return l, nil
		case l.focus == loginFieldRole && (msg.String() == "left" || msg.String() == "h"):
			l.roleIdx = (l.roleIdx + len(access.Roles()) - 1) % len(access.Roles())
			return l, nil
		case l.focus == loginFieldRole && (msg.String() == "right" || msg.String() == "l" || msg.String() == " "):
			l.roleIdx = (l.roleIdx + 1) % len(access.Roles())
			return l, nil
		}
	}

	var cmd tea.Cmd
	switch l.focus {
	case loginFieldUsername:
		l.username, cmd = l.username.Update(msg)
	case loginFieldPassword:
		l.password, cmd = l.password.Update(msg)
	}
	return l, cmd
}

func (l *Login) setFocus(field int) {
	l.focus = field
	l.username.Blur()
	l.password.Blur()
	switch field {
	case loginFieldUsername:
		l.username.Focus()
	case loginFieldPassword:
		l.password.Focus()
	}
}

// Role returns the currently selected role.
func (l *Login) Role() access.Role {
	return access.Roles()[l.roleIdx]
}

// submit validates locally and starts the credential exchange. Validation
// failures never touch the network.
func (l *Login) submit() tea.Cmd {
	username := strings.TrimSpace(l.username.Value())
	password := l.password.Value()

	if username == "" {
		l.errMsg = "Username is required."
		return nil
	}
	if password == "" {
		l.errMsg = "Password is required."
		return nil
	}

	l.errMsg = ""
	l.submitting = true
	role := l.Role()
	client := l.client

	return func() tea.Msg {
		token, err := client.Login(context.Background(), username, role, password)
		return LoginResultMsg{Token: token, Username: username, Role: role, Err: err}
	}
}

// View renders the login form.
func (l *Login) View() string {
	t := l.theme
	var b strings.Builder

	b.WriteString(t.HeaderTitle.Render("qvault"))
	b.WriteString("  ")
	b.WriteString(t.MutedText.Render("sign in to the encryption service"))
	b.WriteString("\n\n")

	if l.errMsg != "" {
		b.WriteString(components.ErrorBanner(t, l.errMsg))
		b.WriteString("\n\n")
	}

	b.WriteString(t.FormLabel.Render("Username"))
	b.WriteString("\n")
	b.WriteString(l.fieldBorder(loginFieldUsername).Render(l.username.View()))
	b.WriteString("\n\n")

	b.WriteString(t.FormLabel.Render("Password"))
	b.WriteString("\n")
	b.WriteString(l.fieldBorder(loginFieldPassword).Render(l.password.View()))
	b.WriteString("\n\n")

	b.WriteString(t.FormLabel.Render("Role"))
	b.WriteString("\n")
	b.WriteString(l.roleSelector())
	b.WriteString("\n\n")

	if l.submitting {
		b.WriteString(l.spinner.View())
		b.WriteString(t.MutedText.Render(" signing in..."))
	} else {
		b.WriteString(t.SubmitButton.Render("Sign in"))
		b.WriteString("  ")
		b.WriteString(t.FormHint.Render("Enter to submit, Tab to move"))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (l *Login) fieldBorder(field int) lipgloss.Style {
	if l.focus == field {
		return l.theme.FocusedBorder
	}
	return l.theme.BlurredBorder
}

func (l *Login) roleSelector() string {
	roles := access.Roles()
	parts := make([]string, len(roles))
	for i, r := range roles {
		if i == l.roleIdx && l.focus == loginFieldRole {
			parts[i] = l.theme.ModeTabActive.Render(string(r))
		} else if i == l.roleIdx {
			parts[i] = l.theme.NavItemActive.Render(string(r))
		} else {
			parts[i] = l.theme.ModeTabInactive.Render(string(r))
		}
	}
	return strings.Join(parts, " ")
}
