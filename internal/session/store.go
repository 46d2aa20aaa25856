// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the authenticated session for the qvault client.
//
// The store is the single source of truth for authorization state. It has
// exactly two writers: a successful login exchange and Clear (called on
// logout and on any authorization failure reported by the HTTP adapter).
// Every other component reads immutable snapshots.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/qvault-tui/internal/access"
	"github.com/jeranaias/qvault-tui/internal/util"
)

// Session is an immutable snapshot of the authorization state.
// Invariant: Role and Username are set if and only if Token is set.
type Session struct {
	Token    string      `json:"token"`
	Role     access.Role `json:"role"`
	Username string      `json:"username"`

	// ClientID identifies this client session in local logs. It is never
	// sent to the server and never derived from the credential.
	ClientID string `json:"client_id"`

	// IssuedAt records when the login exchange completed.
	IssuedAt time.Time `json:"issued_at"`
}

// Authenticated reports whether the snapshot carries a credential.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// ErrInvalidSession indicates a session that violates the token/role/username
// invariant, e.g. a tampered or truncated session file.
var ErrInvalidSession = errors.New("invalid session state")

// Store owns the current session and its on-disk copy.
type Store struct {
	mu      sync.RWMutex
	current Session
	path    string
}

// FilePath returns the default session file location (~/.qvault/session.json).
func FilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".qvault", "session.json"), nil
}

// NewStore creates a session store persisting to path. An empty path disables
// persistence (used by tests and one-shot CLI commands).
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Current returns a snapshot of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the current bearer credential, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Establish records a successful login exchange and persists the session so
// a restarted client keeps its authorization state. The password used for
// the exchange is never part of the session and never written to disk.
func (s *Store) Establish(token, username string, role access.Role) (Session, error) {
	if token == "" || username == "" || !role.Valid() {
		return Session{}, ErrInvalidSession
	}

	sess := Session{
		Token:    token,
		Role:     role,
		Username: username,
		ClientID: uuid.NewString(),
		IssuedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	if err := s.persist(sess); err != nil {
		return sess, err
	}
	return sess, nil
}

// Clear wipes the session and removes the session file. It is idempotent:
// clearing an already-empty store is a no-op, so repeated authorization
// failures are harmless.
func (s *Store) Clear() {
	s.mu.Lock()
	s.current = Session{}
	path := s.path
	s.mu.Unlock()

	if path != "" {
		// Best effort: a stale file only means one extra rejected request.
		_ = os.Remove(path)
	}
}

// Restore loads a persisted session from disk, if one exists and is valid.
// An invalid or unreadable file is discarded rather than trusted.
func (s *Store) Restore() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return Session{}, false
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Session{}, false
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		_ = os.Remove(s.path)
		return Session{}, false
	}
	if sess.Token == "" || sess.Username == "" || !sess.Role.Valid() {
		_ = os.Remove(s.path)
		return Session{}, false
	}

	s.current = sess
	return sess, true
}

// persist writes the session file with owner-only permissions.
func (s *Store) persist(sess Session) error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path, data, 0600)
}
