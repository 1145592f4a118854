package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/travel-planner-api/internal/domain"
	"github.com/travel-planner-api/internal/pkg/id"
)

// FileStore persists the profile snapshot as one JSON document on disk.
// Writes go to a temp file in the same directory and are renamed over the
// target, so readers see either the old or the new document.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the whole snapshot. A missing or empty file is an empty snapshot.
func (s *FileStore) Load(_ context.Context) (domain.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(data)
}

// Save replaces the stored snapshot with snap.
func (s *FileStore) Save(_ context.Context, snap domain.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(s.path)+"."+id.New()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Encode serializes a snapshot the way every backend stores it.
func Encode(snap domain.Snapshot) ([]byte, error) {
	if snap == nil {
		snap = domain.Snapshot{}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a stored snapshot. Null profiles are dropped and nil item
// lists are normalized to empty ones.
func Decode(data []byte) (domain.Snapshot, error) {
	snap := domain.Snapshot{}
	if len(data) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	for k, p := range snap {
		if p == nil {
			delete(snap, k)
			continue
		}
		if p.Itineraries == nil {
			p.Itineraries = []domain.Itinerary{}
		}
	}
	return snap, nil
}
