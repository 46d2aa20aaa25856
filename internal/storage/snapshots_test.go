// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jeranaias/qvault-tui/internal/ledger"
)

func openTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := OpenSnapshotStore(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("OpenSnapshotStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testChain(n int) []ledger.Block {
	chain := make([]ledger.Block, n)
	prev := "0"
	for i := range chain {
		chain[i] = ledger.Block{
			Index:         int64(i),
			Timestamp:     json.Number("1725000000.5"),
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

func TestRecordAndLatest(t *testing.T) {
	store := openTestStore(t)
	chain := testChain(3)

	id, err := store.Record(chain, true)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == "" {
		t.Fatal("empty snapshot ID")
	}

	snap, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if snap.ID != id {
		t.Errorf("Latest ID = %q, want %q", snap.ID, id)
	}
	if snap.BlockCount != 3 || len(snap.Chain) != 3 {
		t.Errorf("block count = %d / %d blocks", snap.BlockCount, len(snap.Chain))
	}
	if !snap.Verified {
		t.Error("verified flag lost")
	}
	if snap.Chain[2].Hash != chain[2].Hash {
		t.Error("chain payload mismatch")
	}
	if snap.Chain[1].Timestamp != chain[1].Timestamp {
		t.Errorf("timestamp not preserved: %s", snap.Chain[1].Timestamp)
	}
}

func TestGetMissing(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Latest(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrderAndCount(t *testing.T) {
	store := openTestStore(t)
	for i := 1; i <= 3; i++ {
		if _, err := store.Record(testChain(i), i%2 == 0); err != nil {
			t.Fatal(err)
		}
	}

	list, err := store.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
	if len(list[0].Chain) != 0 {
		t.Error("List should not load chain payloads")
	}

	n, err := store.Count()
	if err != nil || n != 3 {
		t.Errorf("Count = %d, %v", n, err)
	}
}

func TestEmptyChainSnapshot(t *testing.T) {
	store := openTestStore(t)
	id, err := store.Record(nil, true)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	snap, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if snap.BlockCount != 0 || len(snap.Chain) != 0 {
		t.Errorf("unexpected content: %+v", snap)
	}
}
