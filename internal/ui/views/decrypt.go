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
// DECRYPT VIEW
// =============================================================================

// Decrypt is the decryption screen. It demands all four pieces of an
// encrypt outcome: the artifact, the kyber ciphertext, the user key, and
// the key ID.
type Decrypt struct {
	theme       *styles.Theme
	client      *api.Client
	keys        KeyMap
	downloadDir string

	mode    Mode
	payload textinput.Model
	file    textinput.Model
	kyber   textinput.Model
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

// NewDecrypt creates the decrypt view.
func NewDecrypt(theme *styles.Theme, client *api.Client, downloadDir string) *Decrypt {
	payload := textinput.New()
	payload.Placeholder = "encrypted data"
	payload.Focus()

	file := textinput.New()
	file.Placeholder = "path to .enc file"

	kyber := textinput.New()
	kyber.Placeholder = "kyber ciphertext from encryption"

	userKey := textinput.New()
	userKey.Placeholder = "your key (never stored)"
	userKey.EchoMode = textinput.EchoPassword
	userKey.EchoCharacter = '*'

	keyID := textinput.New()
	keyID.Placeholder = "service key ID"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return &Decrypt{
		theme:       theme,
		client:      client,
		keys:        DefaultKeyMap(),
		downloadDir: downloadDir,
		payload:     payload,
		file:        file,
		kyber:       kyber,
		userKey:     userKey,
		keyID:       keyID,
		spinner:     sp,
		result:      components.NewResultBox(theme),
	}
}

// SetWidth updates the render width.
func (d *Decrypt) SetWidth(width int) {
	d.width = width
	d.result.SetWidth(width - 4)
}

// Init starts the spinner tick.
func (d *Decrypt) Init() tea.Cmd {
	return d.spinner.Tick
}

func (d *Decrypt) inputs() []*textinput.Model {
	if d.mode == ModeFile {
		return []*textinput.Model{&d.file, &d.kyber, &d.userKey, &d.keyID}
	}
	return []*textinput.Model{&d.payload, &d.kyber, &d.userKey, &d.keyID}
}

// Update handles input for the decrypt form.
func (d *Decrypt) Update(msg tea.Msg) (*Decrypt, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case DecryptTextResultMsg:
		if msg.Gen != d.gen {
			return d, nil
		}
		d.submitting = false
		if msg.Err != nil {
			d.errMsg = api.UserMessage(msg.Err, "Decryption failed.")
			return d, nil
		}
		d.errMsg = ""
		d.result.SetFields([]components.ResultField{
			{Label: "Plaintext", Value: msg.Plaintext},
		})
		return d, nil

	case DecryptFileResultMsg:
		if msg.Gen != d.gen {
			return d, nil
		}
		d.submitting = false
		if msg.Err != nil {
			d.errMsg = api.UserMessage(msg.Err, "File decryption failed.")
			return d, nil
		}
		d.errMsg = ""
		d.result.SetFields([]components.ResultField{
			{Label: "Written to", Value: msg.Path},
		})
		return d, nil

	case tea.KeyMsg:
		if d.submitting {
			return d, nil
		}
		switch {
		case key.Matches(msg, d.keys.ToggleMode):
			d.toggleMode()
			return d, nil
		case key.Matches(msg, d.keys.Submit):
			return d, d.submit()
		case key.Matches(msg, d.keys.Copy) && !d.result.Empty() && d.focusOnResult():
			if err := d.result.CopySelected(); err != nil {
				d.errMsg = "Clipboard unavailable."
			}
			return d, nil
		case msg.String() == "down":
			d.setFocus(d.focus + 1)
			return d, nil
		case msg.String() == "up":
			d.setFocus(d.focus - 1)
			return d, nil
		}
	}

	inputs := d.inputs()
	if d.focus >= 0 && d.focus < len(inputs) {
		var cmd tea.Cmd
		*inputs[d.focus], cmd = inputs[d.focus].Update(msg)
		return d, cmd
	}
	if d.focusOnResult() {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			if s := keyMsg.String(); s == "right" || s == "left" {
				d.result.Next()
			}
		}
	}
	return d, nil
}

func (d *Decrypt) focusOnResult() bool {
	return d.focus >= len(d.inputs())
}

// Status reports the form state for the status bar.
func (d *Decrypt) Status() components.Status {
	switch {
	case d.submitting:
		return components.StatusSubmitting
	case d.errMsg != "":
		return components.StatusError
	}
	return components.StatusReady
}

func (d *Decrypt) toggleMode() {
	if d.mode == ModeText {
		d.mode = ModeFile
	} else {
		d.mode = ModeText
	}
	d.errMsg = ""
	d.result.Clear()
	d.setFocus(0)
}

func (d *Decrypt) setFocus(focus int) {
	inputs := d.inputs()
	max := len(inputs)
	if d.result.Empty() {
		max = len(inputs) - 1
	}
	if focus < 0 {
		focus = 0
	}
	if focus > max {
		focus = max
	}
	d.focus = focus
	for i, in := range inputs {
		if i == focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// submit validates locally and starts the decryption.
func (d *Decrypt) submit() tea.Cmd {
	kyber := strings.TrimSpace(d.kyber.Value())
	userKey := d.userKey.Value()
	keyID := strings.TrimSpace(d.keyID.Value())

	if kyber == "" {
		d.errMsg = "Kyber ciphertext is required."
		return nil
	}
	if userKey == "" {
		d.errMsg = "Your key is required."
		return nil
	}
	if keyID == "" {
		d.errMsg = "Key ID is required."
		return nil
	}

	d.gen++
	gen := d.gen
	client := d.client

	if d.mode == ModeText {
		data := strings.TrimSpace(d.payload.Value())
		if data == "" {
			d.errMsg = "Encrypted data is required."
			return nil
		}
		d.errMsg = ""
		d.result.Clear()
		d.submitting = true
		return func() tea.Msg {
			plain, err := client.DecryptText(context.Background(), api.TextDecryptRequest{
				EncryptedData:   data,
				KyberCiphertext: kyber,
				UserKey:         userKey,
				KeyID:           keyID,
			})
			return DecryptTextResultMsg{Gen: gen, Plaintext: plain, Err: err}
		}
	}

	path := strings.TrimSpace(d.file.Value())
	if path == "" {
		d.errMsg = "File path is required."
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		d.errMsg = fmt.Sprintf("No such file: %s", path)
		return nil
	}

	d.errMsg = ""
	d.result.Clear()
	d.submitting = true
	downloadDir := d.downloadDir
	return func() tea.Msg {
		content, err := os.ReadFile(path)
		if err != nil {
			return DecryptFileResultMsg{Gen: gen, Err: fmt.Errorf("failed to read %s: %w", path, err)}
		}

		plain, err := client.DecryptFile(context.Background(), filepath.Base(path), content, kyber, userKey, keyID)
		if err != nil {
			return DecryptFileResultMsg{Gen: gen, Err: err}
		}

		outPath := filepath.Join(downloadDir, decryptedName(path))
		if err := util.AtomicWriteFile(outPath, plain, 0600); err != nil {
			return DecryptFileResultMsg{Gen: gen, Err: err}
		}
		return DecryptFileResultMsg{Gen: gen, Path: outPath}
	}
}

// decryptedName derives the output filename: the ".enc" suffix is dropped
// and a "decrypted_" prefix marks the file as recovered plaintext.
func decryptedName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".enc")
	return "decrypted_" + name
}

// View renders the decrypt form.
func (d *Decrypt) View() string {
	t := d.theme
	var b strings.Builder

	b.WriteString(d.modeTabs())
	b.WriteString("\n\n")

	if d.errMsg != "" {
		b.WriteString(components.ErrorBanner(t, d.errMsg))
		b.WriteString("\n\n")
	}

	labels := []string{"Encrypted data", "Kyber ciphertext", "Your key", "Key ID"}
	if d.mode == ModeFile {
		labels[0] = "File path"
	}
	for i, in := range d.inputs() {
		b.WriteString(t.FormLabel.Render(labels[i]))
		b.WriteString("\n")
		border := t.BlurredBorder
		if d.focus == i {
			border = t.FocusedBorder
		}
		b.WriteString(border.Render(in.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if d.submitting {
		b.WriteString(d.spinner.View())
		b.WriteString(t.MutedText.Render(" decrypting..."))
	} else {
		b.WriteString(t.SubmitButton.Render("Decrypt"))
		b.WriteString("  ")
		b.WriteString(t.FormHint.Render("Enter to submit, C-t to switch mode"))
	}

	if !d.result.Empty() {
		b.WriteString("\n\n")
		b.WriteString(components.SuccessBanner(t, "Decrypted."))
		b.WriteString("\n")
		b.WriteString(d.result.View())
		b.WriteString("\n")
		b.WriteString(t.FormHint.Render("Down to reach results, Left/Right to select, c to copy"))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (d *Decrypt) modeTabs() string {
	tabs := make([]string, 2)
	for i, m := range []Mode{ModeText, ModeFile} {
		if d.mode == m {
			tabs[i] = d.theme.ModeTabActive.Render(m.String())
		} else {
			tabs[i] = d.theme.ModeTabInactive.Render(m.String())
		}
	}
	return strings.Join(tabs, " ")
}
