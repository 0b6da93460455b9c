package remote

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
)

// snapshotCache persists the last successful unfiltered event list to
// disk so List can fall back to stale data when the backend is down.
// Snapshots are stored in wire form; decoding happens on load so the
// cache stays oblivious to the internal model's evolution.
type snapshotCache struct {
	dir string
}

type snapshotFile struct {
	SavedAt time.Time   `json:"saved_at"`
	Events  []wireEvent `json:"events"`
}

func newSnapshotCache(dir string) *snapshotCache {
	return &snapshotCache{dir: dir}
}

func (s *snapshotCache) path() string {
	return filepath.Join(s.dir, "events-snapshot.json")
}

func (s *snapshotCache) save(events []wireEvent) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshotFile{
		SavedAt: time.Now().UTC(),
		Events:  events,
	}, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: temp file in the same directory, then rename.
	tmp, err := os.CreateTemp(s.dir, ".events-snapshot-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path())
}

func (s *snapshotCache) load(loc *time.Location) ([]model.Event, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return nil, err
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if len(snap.Events) == 0 {
		return nil, errors.New("snapshot is empty")
	}
	return decodeEvents(snap.Events, loc)
}
