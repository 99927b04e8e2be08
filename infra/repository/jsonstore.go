// Package repository implements the durable store collaborator: the whole
// ledger is serialized to a JSON snapshot after every committed mutation.
// Durability is best-effort; the in-memory state stays authoritative when a
// save fails.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ifbank/ifbank/pkg/account"
)

const snapshotFile = "accounts.json"

// JSONStore persists ledger snapshots to a single JSON file.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore creates the data directory if needed and returns a store
// writing to <dir>/accounts.json.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &JSONStore{path: filepath.Join(dir, snapshotFile)}, nil
}

// Load reads the snapshot. A missing file yields an empty snapshot; a corrupt
// file is an error so the caller can decide to start fresh.
func (s *JSONStore) Load() (account.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	empty := account.Snapshot{
		Accounts: map[string]account.Account{},
		CPFIndex: map[string]string{},
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return empty, nil
	}
	if err != nil {
		return empty, fmt.Errorf("read snapshot: %w", err)
	}

	var snap account.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return empty, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Accounts == nil {
		snap.Accounts = map[string]account.Account{}
	}
	if snap.CPFIndex == nil {
		snap.CPFIndex = map[string]string{}
	}
	return snap, nil
}

// Save writes the snapshot atomically: temp file in the same directory, then
// rename over the previous snapshot.
func (s *JSONStore) Save(snap account.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), snapshotFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
