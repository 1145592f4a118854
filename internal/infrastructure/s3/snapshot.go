package s3infra

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/travel-planner-api/internal/domain"
	"github.com/travel-planner-api/internal/infrastructure/snapshot"
)

// SnapshotStore keeps the whole profile snapshot as a single S3 object.
type SnapshotStore struct {
	store *Store
	key   string
}

func NewSnapshotStore(store *Store, key string) *SnapshotStore {
	return &SnapshotStore{store: store, key: key}
}

func (s *SnapshotStore) Load(ctx context.Context) (domain.Snapshot, error) {
	rc, err := s.store.Download(ctx, s.key)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return snapshot.Decode(data)
}

func (s *SnapshotStore) Save(ctx context.Context, snap domain.Snapshot) error {
	data, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}
	_, err = s.store.Upload(ctx, s.key, bytes.NewReader(data), "application/json")
	return err
}
