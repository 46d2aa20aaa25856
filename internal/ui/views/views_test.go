// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/qvault-tui/internal/access"
	"github.com/jeranaias/qvault-tui/internal/api"
	"github.com/jeranaias/qvault-tui/internal/ledger"
	"github.com/jeranaias/qvault-tui/internal/monitor"
	"github.com/jeranaias/qvault-tui/internal/ui/styles"
)

type noTokens struct{}

func (noTokens) Token() string { return "" }

func testClient() *api.Client {
	return api.NewClient("http://127.0.0.1:1", noTokens{})
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func typeInto(t *testing.T, update func(tea.Msg) tea.Cmd, text string) {
	t.Helper()
	for _, r := range text {
		update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// =============================================================================
// LOGIN
// =============================================================================

func TestLoginValidationBlocksSubmit(t *testing.T) {
	login := NewLogin(styles.NewTheme(true), testClient())

	_, cmd := login.Update(keyMsg("enter"))
	if cmd != nil {
		t.Error("empty form should not produce a command")
	}
	if login.errMsg == "" {
		t.Error("expected a validation message")
	}

	typeInto(t, func(m tea.Msg) tea.Cmd { _, c := login.Update(m); return c }, "alice")
	_, cmd = login.Update(keyMsg("enter"))
	if cmd != nil {
		t.Error("missing password should not produce a command")
	}
	if !strings.Contains(login.errMsg, "Password") {
		t.Errorf("errMsg = %q", login.errMsg)
	}
}

func TestLoginSubmitProducesCommand(t *testing.T) {
	login := NewLogin(styles.NewTheme(true), testClient())
	typeInto(t, func(m tea.Msg) tea.Cmd { _, c := login.Update(m); return c }, "alice")
	login.Update(keyMsg("tab"))
	typeInto(t, func(m tea.Msg) tea.Cmd { _, c := login.Update(m); return c }, "hunter2")

	_, cmd := login.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("complete form should produce a command")
	}
	if !login.submitting {
		t.Error("submitting flag not set")
	}

	// Input is locked while the exchange runs.
	login.Update(keyMsg("x"))
	if strings.Contains(login.username.Value(), "x") {
		t.Error("input accepted while submitting")
	}
}

func TestLoginFailureClearsPassword(t *testing.T) {
	login := NewLogin(styles.NewTheme(true), testClient())
	login.password.SetValue("secret")
	login.submitting = true

	login.Update(LoginResultMsg{Err: &api.APIError{Status: 400, Detail: "Invalid credentials"}})
	if login.password.Value() != "" {
		t.Error("password survived a failed login")
	}
	if login.errMsg != "Invalid credentials" {
		t.Errorf("errMsg = %q", login.errMsg)
	}
	if login.submitting {
		t.Error("still submitting")
	}
}

func TestLoginRoleCycle(t *testing.T) {
	login := NewLogin(styles.NewTheme(true), testClient())
	if login.Role() != access.RoleAdmin {
		t.Errorf("default role = %v", login.Role())
	}
	login.setFocus(loginFieldRole)
	login.Update(keyMsg("l"))
	if login.Role() != access.RoleService {
		t.Errorf("after cycle = %v", login.Role())
	}
}

// =============================================================================
// ENCRYPT
// =============================================================================

func TestEncryptValidation(t *testing.T) {
	enc := NewEncrypt(styles.NewTheme(true), testClient(), t.TempDir())

	_, cmd := enc.Update(keyMsg("enter"))
	if cmd != nil {
		t.Error("empty form should not reach the network")
	}
	if enc.errMsg == "" {
		t.Error("expected a validation message")
	}
}

func TestEncryptFileModeMissingFile(t *testing.T) {
	enc := NewEncrypt(styles.NewTheme(true), testClient(), t.TempDir())
	enc.toggleMode()
	enc.file.SetValue("/definitely/not/here.bin")
	enc.userKey.SetValue("k")
	enc.keyID.SetValue("key-1")

	_, cmd := enc.Update(keyMsg("enter"))
	if cmd != nil {
		t.Error("missing file should fail before the network")
	}
	if !strings.Contains(enc.errMsg, "No such file") {
		t.Errorf("errMsg = %q", enc.errMsg)
	}
}

func TestEncryptStaleResponseDiscarded(t *testing.T) {
	enc := NewEncrypt(styles.NewTheme(true), testClient(), t.TempDir())
	enc.gen = 5
	enc.submitting = true

	enc.Update(EncryptTextResultMsg{Gen: 3, Result: &api.TextEncryptResult{KeyID: "old"}})
	if !enc.submitting {
		t.Error("stale response ended the active submission")
	}
	if !enc.result.Empty() {
		t.Error("stale result was rendered")
	}
}

func TestEncryptSuccessShowsResult(t *testing.T) {
	enc := NewEncrypt(styles.NewTheme(true), testClient(), t.TempDir())
	enc.SetWidth(100)
	enc.gen = 1
	enc.submitting = true

	enc.Update(EncryptTextResultMsg{Gen: 1, Result: &api.TextEncryptResult{
		KeyID:           "key-1",
		KyberCiphertext: "kemkemkemkem",
		EncryptedData:   "ciphercipher",
	}})
	if enc.submitting {
		t.Error("still submitting after result")
	}
	if enc.result.Empty() {
		t.Fatal("no result rendered")
	}
	view := enc.View()
	if !strings.Contains(view, "kyber ciphertext") {
		t.Error("retention warning missing")
	}
}

func TestEncryptModeToggleClearsOutcome(t *testing.T) {
	enc := NewEncrypt(styles.NewTheme(true), testClient(), t.TempDir())
	enc.errMsg = "old error"
	enc.gen = 1
	enc.Update(EncryptTextResultMsg{Gen: 1, Result: &api.TextEncryptResult{KeyID: "k"}})

	enc.toggleMode()
	if enc.mode != ModeFile {
		t.Error("mode did not switch")
	}
	if enc.errMsg != "" || !enc.result.Empty() {
		t.Error("toggle kept stale outcome")
	}
}

func TestEncryptResubmitClearsPriorResult(t *testing.T) {
	enc := NewEncrypt(styles.NewTheme(true), testClient(), t.TempDir())
	enc.SetWidth(100)
	enc.payload.SetValue("hello")
	enc.userKey.SetValue("k")
	enc.keyID.SetValue("key-1")

	enc.gen = 1
	enc.submitting = true
	enc.Update(EncryptTextResultMsg{Gen: 1, Result: &api.TextEncryptResult{
		KeyID:           "key-1",
		KyberCiphertext: "kemkemkemkem",
		EncryptedData:   "ciphercipher",
	}})
	if enc.result.Empty() {
		t.Fatal("no result after first submission")
	}

	if cmd := enc.submit(); cmd == nil {
		t.Fatal("resubmission produced no command")
	}
	if !enc.result.Empty() {
		t.Error("prior result survived resubmission")
	}

	enc.Update(EncryptTextResultMsg{Gen: enc.gen, Err: &api.APIError{Status: 400, Detail: "Invalid key_id"}})
	if !enc.result.Empty() {
		t.Error("failed resubmission still shows the earlier success")
	}
	if view := enc.View(); strings.Contains(view, "Encrypted.") {
		t.Error("success line rendered beside the new error")
	}
}

// =============================================================================
// DECRYPT
// =============================================================================

func TestDecryptRequiresAllFourInputs(t *testing.T) {
	dec := NewDecrypt(styles.NewTheme(true), testClient(), t.TempDir())
	dec.payload.SetValue("cipher")
	dec.userKey.SetValue("k")
	dec.keyID.SetValue("key-1")

	_, cmd := dec.Update(keyMsg("enter"))
	if cmd != nil {
		t.Error("missing kyber ciphertext should fail locally")
	}
	if !strings.Contains(dec.errMsg, "Kyber") {
		t.Errorf("errMsg = %q", dec.errMsg)
	}
}

func TestDecryptedName(t *testing.T) {
	cases := map[string]string{
		"/tmp/report.pdf.enc": "decrypted_report.pdf",
		"archive.tar.gz.enc":  "decrypted_archive.tar.gz",
		"plain.bin":           "decrypted_plain.bin",
	}
	for in, want := range cases {
		if got := decryptedName(in); got != want {
			t.Errorf("decryptedName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecryptErrorShownVerbatim(t *testing.T) {
	dec := NewDecrypt(styles.NewTheme(true), testClient(), t.TempDir())
	dec.gen = 1
	dec.submitting = true

	dec.Update(DecryptTextResultMsg{Gen: 1, Err: &api.APIError{Status: 400, Detail: "Wrong user key"}})
	if dec.errMsg != "Wrong user key" {
		t.Errorf("errMsg = %q", dec.errMsg)
	}
}

func TestDecryptGenericFallbackForBinaryError(t *testing.T) {
	dec := NewDecrypt(styles.NewTheme(true), testClient(), t.TempDir())
	dec.gen = 1
	dec.submitting = true

	dec.Update(DecryptFileResultMsg{Gen: 1, Err: api.ErrDecryptionFailed})
	if dec.errMsg != "File decryption failed." {
		t.Errorf("errMsg = %q", dec.errMsg)
	}
}

func TestDecryptResubmitClearsPriorResult(t *testing.T) {
	dec := NewDecrypt(styles.NewTheme(true), testClient(), t.TempDir())
	dec.SetWidth(100)
	dec.payload.SetValue("cipher")
	dec.kyber.SetValue("kem")
	dec.userKey.SetValue("k")
	dec.keyID.SetValue("key-1")

	dec.gen = 1
	dec.submitting = true
	dec.Update(DecryptTextResultMsg{Gen: 1, Plaintext: "top secret"})
	if dec.result.Empty() {
		t.Fatal("no result after first submission")
	}

	if cmd := dec.submit(); cmd == nil {
		t.Fatal("resubmission produced no command")
	}
	if !dec.result.Empty() {
		t.Error("prior plaintext survived resubmission")
	}

	dec.Update(DecryptTextResultMsg{Gen: dec.gen, Err: &api.APIError{Status: 400, Detail: "Wrong user key"}})
	if !dec.result.Empty() {
		t.Error("failed resubmission still shows the earlier plaintext")
	}
}

// =============================================================================
// LEDGER
// =============================================================================

func makeVerifiedChain(t *testing.T, n int) []ledger.Block {
	t.Helper()
	chain := make([]ledger.Block, n)
	prev := "0"
	for i := range chain {
		chain[i] = ledger.Block{
			Index:         int64(i),
			Timestamp:     json.Number("1725000000.25"),
			EventType:     ledger.EventEncryption,
			KeyID:         "key-1",
			UserID:        "alice",
			DataReference: "ref",
			PreviousHash:  prev,
		}
		chain[i].Hash = ledger.ComputeHash(chain[i])
		prev = chain[i].Hash
	}
	return chain
}

func TestLedgerResultPopulatesTable(t *testing.T) {
	l := NewLedger(styles.NewTheme(true), testClient(), nil)
	l.SetSize(100, 30)
	l.gen = 1
	l.loading = true

	l.Update(LedgerResultMsg{Gen: 1, Chain: makeVerifiedChain(t, 3), ServerValid: true})
	if l.loading {
		t.Error("still loading")
	}
	if len(l.table.Rows()) != 3 {
		t.Errorf("rows = %d", len(l.table.Rows()))
	}
	view := l.View()
	if !strings.Contains(view, "service: valid") || !strings.Contains(view, "local: verified") {
		t.Error("integrity verdicts missing")
	}
}

func TestLedgerBrokenChainVerdict(t *testing.T) {
	l := NewLedger(styles.NewTheme(true), testClient(), nil)
	l.SetSize(100, 30)
	l.gen = 1

	chain := makeVerifiedChain(t, 3)
	chain[1].UserID = "mallory"

	var ce *ledger.ChainError
	if !errors.As(ledger.VerifyChain(chain), &ce) {
		t.Fatal("tampered chain should fail verification")
	}
	l.Update(LedgerResultMsg{Gen: 1, Chain: chain, ServerValid: true, LocalErr: ce})

	if !strings.Contains(l.View(), "local: broken") {
		t.Error("broken verdict missing")
	}
}

func TestLedgerStaleFetchDiscarded(t *testing.T) {
	l := NewLedger(styles.NewTheme(true), testClient(), nil)
	l.SetSize(100, 30)
	l.gen = 2
	l.loading = true

	l.Update(LedgerResultMsg{Gen: 1, Chain: makeVerifiedChain(t, 5)})
	if !l.loading {
		t.Error("stale fetch ended the active load")
	}
	if len(l.table.Rows()) != 0 {
		t.Error("stale rows rendered")
	}
}

// =============================================================================
// ALERTS
// =============================================================================

func TestAlertsHealthyState(t *testing.T) {
	a := NewAlerts(styles.NewTheme(true), testClient())
	a.SetSize(100, 30)
	a.gen = 1
	a.loading = true

	a.Update(TelemetryResultMsg{Gen: 1, Alerts: nil, Stats: &monitor.Stats{
		TotalEvents:   1234,
		EventsLast24h: 56,
		Distribution:  map[string]int{monitor.CategoryEncryption: 30},
	}})

	view := a.View()
	if !strings.Contains(view, "No anomalies") {
		t.Error("healthy state missing")
	}
	if !strings.Contains(view, "1,234") {
		t.Error("grouped number formatting missing")
	}
}

func TestAlertsListRendered(t *testing.T) {
	a := NewAlerts(styles.NewTheme(true), testClient())
	a.SetSize(100, 30)
	a.gen = 1

	a.Update(TelemetryResultMsg{Gen: 1, Alerts: []monitor.Alert{
		{UserID: "bob", Issue: "High failure rate", Count: 7, Severity: "high"},
	}, Stats: &monitor.Stats{}})

	if !strings.Contains(a.View(), "bob") {
		t.Error("alert text missing")
	}
}

func TestExpiredHelper(t *testing.T) {
	if !expired(api.ErrUnauthorized) {
		t.Error("ErrUnauthorized should count as expired")
	}
	if expired(api.ErrTransport) || expired(nil) {
		t.Error("non-auth errors should not count as expired")
	}
}
