// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/qvault-tui/internal/api"
	"github.com/jeranaias/qvault-tui/internal/ui/components"
	"github.com/jeranaias/qvault-tui/internal/ui/styles"
	"github.com/jeranaias/qvault-tui/internal/util"
)

// =============================================================================
// ENCRYPT VIEW
// =============================================================================

// Mode selects between the text and file workflows of a crypto view.
type Mode int

const (
	ModeText Mode = iota
	ModeFile
)

// String returns the tab label for the mode.
func (m Mode) String() string {
	if m == ModeFile {
		return "File"
	}
	return "Text"
}

// Encrypt is the encryption screen. Both workflows share the user key and
// key ID fields; switching modes clears any previous outcome.
type Encrypt struct {
	theme       *styles.Theme
	client      *api.Client
	keys        KeyMap
	downloadDir string

	mode    Mode
	payload textinput.Model
	file    textinput.Model
	userKey textinput.Model
	keyID   textinput.Model
	focus   int

	submitting bool
	gen        uint64
	spinner    spinner.Model
	errMsg     string
	result     *components.ResultBox
	width      int
}

// NewEncrypt creates the encrypt view. downloadDir is where encrypted
// artifacts are written; empty means the working directory.
func NewEncrypt(theme *styles.Theme, client *api.Client, downloadDir string) *Encrypt {
	payload := textinput.New()
	payload.Placeholder = "text to encrypt"
	payload.Focus()

	file := textinput.New()
	file.Placeholder = "path to file"

	userKey := textinput.New()
	userKey.Placeholder = "your key (never stored)"
	userKey.EchoMode = textinput.EchoPassword
	userKey.EchoCharacter = '*'

	keyID := textinput.New()
	keyID.Placeholder = "service key ID"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return &Encrypt{
		theme:       theme,
		client:      client,
		keys:        DefaultKeyMap(),
		downloadDir: downloadDir,
		payload:     payload,
		file:        file,
		userKey:     userKey,
		keyID:       keyID,
		spinner:     sp,
		result:      components.NewResultBox(theme),
	}
}

// SetWidth updates the render width.
func (e *Encrypt) SetWidth(width int) {
	e.width = width
	e.result.SetWidth(width - 4)
}

// Init starts the spinner tick.
func (e *Encrypt) Init() tea.Cmd {
	return e.spinner.Tick
}

// inputs returns the active fields for the current mode, in focus order.
func (e *Encrypt) inputs() []*textinput.Model {
	if e.mode == ModeFile {
		return []*textinput.Model{&e.file, &e.userKey, &e.keyID}
	}
	return []*textinput.Model{&e.payload, &e.userKey, &e.keyID}
}

// Update handles input for the encrypt form.
func (e *Encrypt) Update(msg tea.Msg) (*Encrypt, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		e.spinner, cmd = e.spinner.Update(msg)
		return e, cmd

	case EncryptTextResultMsg:
		if msg.Gen != e.gen {
			// A response from an abandoned submission.
			return e, nil
		}
		e.submitting = false
		if msg.Err != nil {
			e.errMsg = api.UserMessage(msg.Err, "Encryption failed.")
			return e, nil
		}
		e.errMsg = ""
		e.result.SetFields([]components.ResultField{
			{Label: "Key ID", Value: msg.Result.KeyID},
			{Label: "Kyber ciphertext", Value: msg.Result.KyberCiphertext, Sensitive: true},
			{Label: "Encrypted data", Value: msg.Result.EncryptedData, Sensitive: true},
		})
		return e, nil

	case EncryptFileResultMsg:
		if msg.Gen != e.gen {
			return e, nil
		}
		e.submitting = false
		if msg.Err != nil {
			e.errMsg = api.UserMessage(msg.Err, "File encryption failed.")
			return e, nil
		}
		e.errMsg = ""
		e.result.SetFields([]components.ResultField{
			{Label: "Written to", Value: msg.Path},
			{Label: "Key ID", Value: msg.KeyID},
			{Label: "Kyber ciphertext", Value: msg.KyberCiphertext, Sensitive: true},
		})
		return e, nil

	case tea.KeyMsg:
		if e.submitting {
			return e, nil
		}
		switch {
		case key.Matches(msg, e.keys.ToggleMode):
			e.toggleMode()
			return e, nil
		case key.Matches(msg, e.keys.Submit):
			return e, e.submit()
		case key.Matches(msg, e.keys.Copy) && !e.result.Empty() && e.focusOnResult():
			if err := e.result.CopySelected(); err != nil {
				e.errMsg = "Clipboard unavailable."
			}
			return e, nil
		case msg.String() == "down":
			e.setFocus(e.focus + 1)
			return e, nil
		case msg.String() == "up":
			e.setFocus(e.focus - 1)
			return e, nil
		}
	}

	inputs := e.inputs()
	if e.focus >= 0 && e.focus < len(inputs) {
		var cmd tea.Cmd
		*inputs[e.focus], cmd = inputs[e.focus].Update(msg)
		return e, cmd
	}
	if e.focusOnResult() {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			if s := keyMsg.String(); s == "right" || s == "left" {
				e.result.Next()
			}
		}
	}
	return e, nil
}

// focusOnResult reports whether focus sits past the inputs, on the result.
func (e *Encrypt) focusOnResult() bool {
	return e.focus >= len(e.inputs())
}

// Status reports the form state for the status bar.
func (e *Encrypt) Status() components.Status {
	switch {
	case e.submitting:
		return components.StatusSubmitting
	case e.errMsg != "":
		return components.StatusError
	}
	return components.StatusReady
}

func (e *Encrypt) toggleMode() {
	if e.mode == ModeText {
		e.mode = ModeFile
	} else {
		e.mode = ModeText
	}
	e.errMsg = ""
	e.result.Clear()
	e.setFocus(0)
}

func (e *Encrypt) setFocus(focus int) {
	inputs := e.inputs()
	max := len(inputs)
	if e.result.Empty() {
		max = len(inputs) - 1
	}
	if focus < 0 {
		focus = 0
	}
	if focus > max {
		focus = max
	}
	e.focus = focus
	for i, in := range inputs {
		if i == focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// submit validates locally and starts the encryption. Nothing goes over the
// wire until every required field is present.
func (e *Encrypt) submit() tea.Cmd {
	userKey := e.userKey.Value()
	keyID := strings.TrimSpace(e.keyID.Value())

	if userKey == "" {
		e.errMsg = "Your key is required."
		return nil
	}
	if keyID == "" {
		e.errMsg = "Key ID is required."
		return nil
	}

	e.gen++
	gen := e.gen
	client := e.client

	if e.mode == ModeText {
		data := e.payload.Value()
		if data == "" {
			e.errMsg = "Nothing to encrypt."
			return nil
		}
		e.errMsg = ""
		e.result.Clear()
		e.submitting = true
		return func() tea.Msg {
			result, err := client.EncryptText(context.Background(), api.TextEncryptRequest{
				Data: data, UserKey: userKey, KeyID: keyID,
			})
			return EncryptTextResultMsg{Gen: gen, Result: result, Err: err}
		}
	}

	path := strings.TrimSpace(e.file.Value())
	if path == "" {
		e.errMsg = "File path is required."
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		e.errMsg = fmt.Sprintf("No such file: %s", path)
		return nil
	}

	e.errMsg = ""
	e.result.Clear()
	e.submitting = true
	downloadDir := e.downloadDir
	return func() tea.Msg {
		content, err := os.ReadFile(path)
		if err != nil {
			return EncryptFileResultMsg{Gen: gen, Err: fmt.Errorf("failed to read %s: %w", path, err)}
		}

		result, err := client.EncryptFile(context.Background(), filepath.Base(path), content, userKey, keyID)
		if err != nil {
			return EncryptFileResultMsg{Gen: gen, Err: err}
		}

		artifact, err := result.Artifact()
		if err != nil {
			return EncryptFileResultMsg{Gen: gen, Err: err}
		}

		name := result.Filename
		if name == "" {
			name = filepath.Base(path) + ".enc"
		}
		outPath := filepath.Join(downloadDir, name)
		if err := util.AtomicWriteFile(outPath, artifact, 0600); err != nil {
			return EncryptFileResultMsg{Gen: gen, Err: err}
		}
		return EncryptFileResultMsg{Gen: gen, Path: outPath, KeyID: result.KeyID, KyberCiphertext: result.KyberCiphertext}
	}
}

// View renders the encrypt form.
func (e *Encrypt) View() string {
	t := e.theme
	var b strings.Builder

	b.WriteString(e.modeTabs())
	b.WriteString("\n\n")

	if e.errMsg != "" {
		b.WriteString(components.ErrorBanner(t, e.errMsg))
		b.WriteString("\n\n")
	}

	labels := []string{"Text", "Your key", "Key ID"}
	if e.mode == ModeFile {
		labels[0] = "File path"
	}
	for i, in := range e.inputs() {
		b.WriteString(t.FormLabel.Render(labels[i]))
		b.WriteString("\n")
		border := t.BlurredBorder
		if e.focus == i {
			border = t.FocusedBorder
		}
		b.WriteString(border.Render(in.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if e.submitting {
		b.WriteString(e.spinner.View())
		b.WriteString(t.MutedText.Render(" encrypting..."))
	} else {
		b.WriteString(t.SubmitButton.Render("Encrypt"))
		b.WriteString("  ")
		b.WriteString(t.FormHint.Render("Enter to submit, C-t to switch mode"))
	}

	if !e.result.Empty() {
		b.WriteString("\n\n")
		b.WriteString(components.SuccessBanner(t, "Encrypted."))
		b.WriteString(" ")
		b.WriteString(t.WarningText.Render("Save the kyber ciphertext - it cannot be recovered later."))
		b.WriteString("\n")
		b.WriteString(e.result.View())
		b.WriteString("\n")
		b.WriteString(t.FormHint.Render("Down to reach results, Left/Right to select, c to copy"))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (e *Encrypt) modeTabs() string {
	tabs := make([]string, 2)
	for i, m := range []Mode{ModeText, ModeFile} {
		if e.mode == m {
			tabs[i] = e.theme.ModeTabActive.Render(m.String())
		} else {
			tabs[i] = e.theme.ModeTabInactive.Render(m.String())
		}
	}
	return strings.Join(tabs, " ")
}
