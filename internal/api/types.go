// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/base64"
	"fmt"

	"github.com/jeranaias/qvault-tui/internal/access"
	"github.com/jeranaias/qvault-tui/internal/ledger"
	"github.com/jeranaias/qvault-tui/internal/monitor"
)

// loginUser matches the nested user object of the login exchange.
type loginUser struct {
	Username string      `json:"username"`
	Role     access.Role `json:"role"`
}

// loginRequest is the POST /auth/login body.
type loginRequest struct {
	User     loginUser `json:"user"`
	Password string    `json:"password"`
}

// loginResponse carries the issued bearer credential.
type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// TextEncryptRequest is the POST /encryption/encrypt body. UserKey is the
// caller-held secret (Key-B); KeyID references the service-held Kyber key
// (Key-A). Both are always required - dual control is the point.
type TextEncryptRequest struct {
	Data    string `json:"data"`
	UserKey string `json:"user_key"`
	KeyID   string `json:"key_id"`
}

// TextEncryptResult is the encrypt response. KyberCiphertext is the
// encapsulated key: the service does not retain it, so the caller must keep
// it to ever decrypt the artifact again.
type TextEncryptResult struct {
	KeyID           string `json:"key_id"`
	KyberCiphertext string `json:"kyber_ciphertext"`
	EncryptedData   string `json:"encrypted_data"`
}

// TextDecryptRequest is the POST /encryption/decrypt body. Every field from
// the original encrypt result must be passed back unmodified.
type TextDecryptRequest struct {
	EncryptedData   string `json:"encrypted_data"`
	KyberCiphertext string `json:"kyber_ciphertext"`
	UserKey         string `json:"user_key"`
	KeyID           string `json:"key_id"`
}

// textDecryptResponse carries the recovered plaintext.
type textDecryptResponse struct {
	Data string `json:"data"`
}

// FileEncryptResult is the encrypt-file response. EncryptedFile stays
// base64-encoded exactly as served; Artifact decodes it on demand.
type FileEncryptResult struct {
	KeyID           string `json:"key_id"`
	KyberCiphertext string `json:"kyber_ciphertext"`
	Filename        string `json:"filename"`
	EncryptedFile   string `json:"encrypted_file"`
}

// Artifact decodes the base64 artifact to its exact binary content.
func (r *FileEncryptResult) Artifact() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(r.EncryptedFile)
	if err != nil {
		return nil, fmt.Errorf("encrypted artifact is not valid base64: %w", err)
	}
	return data, nil
}

// ledgerResponse wraps the served chain.
type ledgerResponse struct {
	Chain []ledger.Block `json:"chain"`
}

// validateResponse is the GET /audit/validate body.
type validateResponse struct {
	IsValid bool `json:"is_valid"`
}

// alertsResponse wraps the served alert list.
type alertsResponse struct {
	Alerts []monitor.Alert `json:"alerts"`
}

// errorResponse is the service's error envelope.
type errorResponse struct {
	Detail string `json:"detail"`
}
