// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ledger models the append-only audit ledger served by the
// encryption service and verifies its hash chain locally, so an auditor
// does not have to take the server's word for the chain's integrity.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Event types recorded by the service. The ledger may carry further types;
// unrecognized values are displayed as-is.
const (
	EventEncryption     = "ENCRYPTION_KYBER"
	EventDecryption     = "DECRYPTION_KYBER"
	EventFileEncryption = "FILE_ENCRYPTION"
	EventFileDecryption = "FILE_DECRYPTION"
	EventDecryptFailed  = "DECRYPTION_FAILED"
	EventFileDecFailed  = "FILE_DECRYPTION_FAILED"
)

// Block is one immutable audit record. Timestamp is kept as a json.Number so
// the exact wire representation survives a round trip into the hash check.
type Block struct {
	Index         int64       `json:"index"`
	Timestamp     json.Number `json:"timestamp"`
	EventType     string      `json:"event_type"`
	KeyID         string      `json:"key_id"`
	UserID        string      `json:"user_id"`
	DataReference string      `json:"data_reference"`
	PreviousHash  string      `json:"previous_hash"`
	Hash          string      `json:"hash"`
}

// Time converts the epoch-seconds timestamp to a local time.
func (b Block) Time() time.Time {
	secs, err := b.Timestamp.Float64()
	if err != nil {
		return time.Time{}
	}
	return time.Unix(int64(secs), 0)
}

// IsFailure reports whether the block records a failed operation.
func (b Block) IsFailure() bool {
	return strings.Contains(b.EventType, "FAILED")
}

// CanonicalPayload builds the exact byte string the service hashes for a
// block: its fields as a JSON object with sorted keys and ", "/": "
// separators, matching the producer's serialization. Hash is excluded since
// it is the digest of this payload.
func CanonicalPayload(b Block) []byte {
	var sb strings.Builder
	sb.WriteString(`{"data_reference": `)
	sb.Write(jsonString(b.DataReference))
	sb.WriteString(`, "event_type": `)
	sb.Write(jsonString(b.EventType))
	sb.WriteString(`, "index": `)
	fmt.Fprintf(&sb, "%d", b.Index)
	sb.WriteString(`, "key_id": `)
	sb.Write(jsonString(b.KeyID))
	sb.WriteString(`, "previous_hash": `)
	sb.Write(jsonString(b.PreviousHash))
	sb.WriteString(`, "timestamp": `)
	sb.WriteString(b.Timestamp.String())
	sb.WriteString(`, "user_id": `)
	sb.Write(jsonString(b.UserID))
	sb.WriteString(`}`)
	return []byte(sb.String())
}

// ComputeHash returns the SHA-256 digest of the block's canonical payload.
func ComputeHash(b Block) string {
	sum := sha256.Sum256(CanonicalPayload(b))
	return hex.EncodeToString(sum[:])
}

func jsonString(s string) []byte {
	data, err := json.Marshal(s)
	if err != nil {
		// json.Marshal of a string cannot fail.
		return []byte(`""`)
	}
	return data
}

// ChainError describes where and why chain verification failed.
type ChainError struct {
	Index  int64
	Reason string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("ledger chain broken at block %d: %s", e.Index, e.Reason)
}

// VerifyChain checks the served chain end to end: indexes strictly
// increasing, each block linked to its predecessor's hash, and each block's
// hash matching its own fields. An empty chain is valid.
func VerifyChain(chain []Block) error {
	for i, b := range chain {
		if i > 0 {
			prev := chain[i-1]
			if b.Index <= prev.Index {
				return &ChainError{Index: b.Index, Reason: fmt.Sprintf("index not increasing (previous %d)", prev.Index)}
			}
			if b.PreviousHash != prev.Hash {
				return &ChainError{Index: b.Index, Reason: "previous_hash does not match prior block"}
			}
		}
		if computed := ComputeHash(b); computed != b.Hash {
			return &ChainError{Index: b.Index, Reason: "hash does not match block contents"}
		}
	}
	return nil
}
