// qvault TUI - terminal client for the dual-key encryption service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/qvault-tui/internal/access"
	"github.com/jeranaias/qvault-tui/internal/api"
	"github.com/jeranaias/qvault-tui/internal/cli"
	"github.com/jeranaias/qvault-tui/internal/config"
	"github.com/jeranaias/qvault-tui/internal/session"
	"github.com/jeranaias/qvault-tui/internal/storage"
	"github.com/jeranaias/qvault-tui/internal/ui/components"
	"github.com/jeranaias/qvault-tui/internal/ui/styles"
	"github.com/jeranaias/qvault-tui/internal/ui/views"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference so the auth-failure hook can deliver the expiry
// message from outside the update loop.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI()
	case cli.CmdLogin:
		err = cli.HandleLogin(args)
	case cli.CmdLogout:
		err = cli.HandleLogout()
	case cli.CmdStatus:
		err = cli.HandleStatus()
	case cli.CmdVerify:
		err = cli.HandleVerify(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Request logging goes to a file; stdout belongs to the TUI.
	if err := config.EnsureDir(); err == nil {
		if dir, dirErr := config.Dir(); dirErr == nil {
			if f, logErr := tea.LogToFile(filepath.Join(dir, "qvault.log"), "qvault"); logErr == nil {
				defer f.Close()
			}
		}
	}

	sessionPath, err := session.FilePath()
	if err != nil {
		return err
	}
	store := session.NewStore(sessionPath)
	restored, hasSession := store.Restore()

	client := api.NewClient(cfg.Server.URL, store,
		api.WithTimeout(cfg.Timeout()),
		api.WithFileTimeout(cfg.FileTimeout()),
		api.WithRateLimit(cfg.Server.RateLimit),
		api.WithAuthFailureHook(func() {
			// Single teardown point: drop the session, then tell the UI.
			store.Clear()
			programMu.Lock()
			p := programRef
			programMu.Unlock()
			if p != nil {
				p.Send(views.SessionExpiredMsg{})
			}
		}),
	)

	var snapshots *storage.SnapshotStore
	if cfg.Storage.SnapshotsEnabled {
		if dbPath, err := cfg.SnapshotDBPath(); err == nil {
			// Snapshots are a convenience; the TUI runs without them.
			snapshots, _ = storage.OpenSnapshotStore(dbPath)
		}
	}
	if snapshots != nil {
		defer snapshots.Close()
	}

	// Config edits take effect without a restart.
	if cfgPath, err := config.Path(); err == nil {
		if watcher, err := config.NewWatcher(cfgPath, func(c *config.Config) {
			client.SetBaseURL(c.Server.URL)
		}); err == nil {
			if watcher.Watch() == nil {
				defer watcher.Close()
			} else {
				watcher.Close()
			}
		}
	}

	m := NewModel(cfg, client, store, snapshots)
	if hasSession {
		m.signIn(restored.Username, restored.Role)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	_, err = p.Run()
	return err
}

// =============================================================================
// ROOT MODEL
// =============================================================================

// appState is the top-level screen switch.
type appState int

const (
	stateLogin appState = iota
	stateDashboard
)

// Model is the root Bubble Tea model: it owns the session lifecycle and
// routes every message to the login screen or the active dashboard view.
type Model struct {
	theme *styles.Theme
	cfg   *config.Config
	store *session.Store
	keys  views.KeyMap

	state  appState
	width  int
	height int

	header    *components.Header
	nav       *components.Nav
	statusbar *components.StatusBar

	login    *views.Login
	overview *views.Overview
	encrypt  *views.Encrypt
	decrypt  *views.Decrypt
	ledger   *views.Ledger
	alerts   *views.Alerts
}

// NewModel wires the root model. snapshots may be nil.
func NewModel(cfg *config.Config, client *api.Client, store *session.Store, snapshots *storage.SnapshotStore) *Model {
	theme := styles.NewTheme(cfg.UI.Theme == "dark")

	return &Model{
		theme:     theme,
		cfg:       cfg,
		store:     store,
		keys:      views.DefaultKeyMap(),
		state:     stateLogin,
		header:    components.NewHeader(theme),
		nav:       components.NewNav(theme),
		statusbar: components.NewStatusBar(theme),
		login:     views.NewLogin(theme, client),
		overview:  views.NewOverview(theme),
		encrypt:   views.NewEncrypt(theme, client, cfg.Files.DownloadDir),
		decrypt:   views.NewDecrypt(theme, client, cfg.Files.DownloadDir),
		ledger:    views.NewLedger(theme, client, snapshots),
		alerts:    views.NewAlerts(theme, client),
	}
}

// signIn flips to the dashboard for the given identity.
func (m *Model) signIn(username string, role access.Role) {
	m.state = stateDashboard
	m.header.SetIdentity(username, role)
	m.overview.SetIdentity(username, role)
	m.nav.SetViews(access.VisibleViews(role, true))
}

// signOut clears everything back to the login screen.
func (m *Model) signOut(notice string) {
	m.store.Clear()
	m.state = stateLogin
	m.header.SetIdentity("", "")
	m.login.Reset()
	if notice != "" {
		m.login.SetError(notice)
	}
}

// Init starts the login screen.
func (m *Model) Init() tea.Cmd {
	if m.state == stateDashboard {
		return tea.Batch(m.login.Init(), m.activeInit())
	}
	return m.login.Init()
}

// Update routes messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}

	case views.LoginResultMsg:
		if msg.Err == nil {
			if _, err := m.store.Establish(msg.Token, msg.Username, msg.Role); err != nil {
				var cmd tea.Cmd
				m.login, cmd = m.login.Update(views.LoginResultMsg{Err: err})
				return m, cmd
			}
			m.signIn(msg.Username, msg.Role)
			m.resize(m.width, m.height)
			return m, m.activeInit()
		}
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	if views.IsExpired(msg) {
		m.signOut("Session expired. Please log in again.")
		return m, nil
	}

	if m.state == stateLogin {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}
	return m, m.updateActive(msg)
}

// handleGlobalKey processes the bindings that work everywhere.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	s := msg.String()
	if s == "ctrl+c" || s == "ctrl+q" {
		return tea.Quit, true
	}
	if m.state != stateDashboard {
		return nil, false
	}

	switch s {
	case "ctrl+l":
		m.signOut("")
		return nil, true
	case "tab":
		m.nav.Next()
		return m.activeInit(), true
	case "shift+tab":
		m.nav.Prev()
		return m.activeInit(), true
	}

	// Digit shortcuts jump straight to the numbered tab. The crypto forms
	// own their runes, so the shortcuts only fire where no text field is
	// listening.
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' && !m.activeCapturesRunes() {
		vs := m.nav.Views()
		if idx := int(s[0] - '1'); idx < len(vs) && m.nav.SetActive(vs[idx]) {
			return m.activeInit(), true
		}
	}
	return nil, false
}

// activeStatus reports the active view's state for the status bar.
func (m *Model) activeStatus() components.Status {
	switch m.nav.Active() {
	case access.ViewEncrypt:
		return m.encrypt.Status()
	case access.ViewDecrypt:
		return m.decrypt.Status()
	case access.ViewLedger:
		return m.ledger.Status()
	case access.ViewAlerts:
		return m.alerts.Status()
	}
	return components.StatusReady
}

// activeCapturesRunes reports whether the active view feeds printable keys
// into a text input.
func (m *Model) activeCapturesRunes() bool {
	switch m.nav.Active() {
	case access.ViewEncrypt, access.ViewDecrypt:
		return true
	}
	return false
}

// activeInit gives the newly shown view a chance to fetch.
func (m *Model) activeInit() tea.Cmd {
	switch m.nav.Active() {
	case access.ViewEncrypt:
		return m.encrypt.Init()
	case access.ViewDecrypt:
		return m.decrypt.Init()
	case access.ViewLedger:
		return m.ledger.Init()
	case access.ViewAlerts:
		return m.alerts.Init()
	default:
		return nil
	}
}

// updateActive forwards a message to every dashboard view that may hold an
// in-flight request, and input only to the visible one. Result messages
// carry generations, so duplicate delivery is harmless.
func (m *Model) updateActive(msg tea.Msg) tea.Cmd {
	if _, isKey := msg.(tea.KeyMsg); isKey {
		return m.updateOne(m.nav.Active(), msg)
	}

	var cmds []tea.Cmd
	for _, v := range m.nav.Views() {
		if cmd := m.updateOne(v, msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) updateOne(v access.View, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch v {
	case access.ViewOverview:
		m.overview, cmd = m.overview.Update(msg)
	case access.ViewEncrypt:
		m.encrypt, cmd = m.encrypt.Update(msg)
	case access.ViewDecrypt:
		m.decrypt, cmd = m.decrypt.Update(msg)
	case access.ViewLedger:
		m.ledger, cmd = m.ledger.Update(msg)
	case access.ViewAlerts:
		m.alerts, cmd = m.alerts.Update(msg)
	}
	return cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)
	m.header.SetWidth(width)
	m.statusbar.SetWidth(width)
	m.login.SetWidth(width)

	contentHeight := height - 4
	m.overview.SetSize(width, contentHeight)
	m.encrypt.SetWidth(width)
	m.decrypt.SetWidth(width)
	m.ledger.SetSize(width, contentHeight)
	m.alerts.SetSize(width, contentHeight)
}

// View renders the current screen.
func (m *Model) View() string {
	if m.state == stateLogin {
		return m.login.View()
	}

	var content string
	switch m.nav.Active() {
	case access.ViewOverview:
		content = m.overview.View()
	case access.ViewEncrypt:
		content = m.encrypt.View()
	case access.ViewDecrypt:
		content = m.decrypt.View()
	case access.ViewLedger:
		content = m.ledger.View()
	case access.ViewAlerts:
		content = m.alerts.View()
	}

	shortcuts := []components.Shortcut{
		{Key: "Tab", Desc: "switch view"},
		{Key: "C-l", Desc: "log out"},
		{Key: "C-c", Desc: "quit"},
	}
	m.statusbar.SetStatus(m.activeStatus())

	return m.header.View() + "\n" +
		m.nav.View() + "\n" +
		content + "\n" +
		m.statusbar.View(shortcuts)
}
