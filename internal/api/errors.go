// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for response classification. Callers branch with
// errors.Is/errors.As; the string forms are for logs, not UI surfaces.
var (
	// ErrUnauthorized indicates the credential is missing, expired, or
	// invalid. The adapter has already fired the auth-failure hook by the
	// time a caller sees this error.
	ErrUnauthorized = errors.New("authorization failed")

	// ErrTransport indicates no usable response arrived: connection
	// refused, timeout, or an unreadable body.
	ErrTransport = errors.New("transport error")

	// ErrDecryptionFailed is the generic fallback for decrypt-file
	// failures whose binary error payload did not parse as JSON.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// APIError is a domain error reported by the service with a human-readable
// detail. The detail is shown verbatim on the originating form.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("service error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("service error (HTTP %d)", e.Status)
}

// Kind tags a classified failure. Every response the adapter returns is
// exactly one of these; callers must handle each.
type Kind int

const (
	KindOK Kind = iota
	KindAuthFailure
	KindDomainError
	KindTransportError
)

// Classify maps an error from any adapter call to its kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrUnauthorized):
		return KindAuthFailure
	case errors.Is(err, ErrTransport):
		return KindTransportError
	default:
		return KindDomainError
	}
}

// UserMessage returns the text to surface for an adapter error: the
// service-provided detail where present, a generic message otherwise.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if errors.Is(err, ErrTransport) {
		return "Could not reach the encryption service. Check your connection."
	}
	if errors.Is(err, ErrUnauthorized) {
		return "Session expired. Please log in again."
	}
	return fallback
}
