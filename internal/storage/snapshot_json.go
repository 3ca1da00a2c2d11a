package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"timepunch/internal/core/model"
)

const snapshotFileName = "active_timer.json"

// SnapshotStore persists the active timer snapshot to a JSON file so an
// in-progress timer survives an unplanned restart. One well-known file
// holds the one process-wide timer.
type SnapshotStore struct {
	mu   sync.Mutex
	path string
}

// NewSnapshotStore creates a snapshot store writing to the given path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// DefaultSnapshotPath resolves the snapshot location under the user
// config directory.
func DefaultSnapshotPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, snapshotFileName), nil
}

// Save writes the snapshot to disk.
func (store *SnapshotStore) Save(snapshot *model.TimerSnapshot) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal timer snapshot: %w", err)
	}

	if err := os.WriteFile(store.path, data, 0o644); err != nil {
		return fmt.Errorf("write timer snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot from disk.
// Returns nil, nil when no snapshot is stored.
func (store *SnapshotStore) Load() (*model.TimerSnapshot, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	data, err := os.ReadFile(store.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read timer snapshot: %w", err)
	}

	snapshot := &model.TimerSnapshot{}
	if err := json.Unmarshal(data, snapshot); err != nil {
		return nil, fmt.Errorf("parse timer snapshot: %w", err)
	}
	return snapshot, nil
}

// Clear removes the snapshot file. Missing files are not an error.
func (store *SnapshotStore) Clear() error {
	store.mu.Lock()
	defer store.mu.Unlock()

	err := os.Remove(store.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove timer snapshot: %w", err)
	}
	return nil
}
