// internal/repository/snapshot_repository.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/storage"
)

// ErrSnapshotNotFound is returned when the configured source holds no snapshot.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository loads and stores the portfolio snapshot an evaluation reads.
type SnapshotRepository interface {
	LoadSnapshot(ctx context.Context) (domain.Snapshot, error)
	SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error
}

type fileSnapshotRepository struct {
	path string
}

// NewFileSnapshotRepository reads and writes a JSON snapshot on local disk.
func NewFileSnapshotRepository(path string) SnapshotRepository {
	return &fileSnapshotRepository{path: path}
}

func (r *fileSnapshotRepository) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Snapshot{}, fmt.Errorf("%s: %w", r.path, ErrSnapshotNotFound)
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}
	return DecodeSnapshot(data)
}

func (r *fileSnapshotRepository) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", r.path, err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", r.path, err)
	}
	return nil
}

type objectSnapshotRepository struct {
	store storage.ObjectStorage
	key   string
}

// NewObjectSnapshotRepository keeps the snapshot as a JSON object in a bucket.
func NewObjectSnapshotRepository(store storage.ObjectStorage, key string) SnapshotRepository {
	return &objectSnapshotRepository{store: store, key: key}
}

func (r *objectSnapshotRepository) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	data, err := r.store.GetObject(ctx, r.key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return domain.Snapshot{}, fmt.Errorf("%s: %w", r.key, ErrSnapshotNotFound)
	}
	if err != nil {
		return domain.Snapshot{}, err
	}
	return DecodeSnapshot(data)
}

func (r *objectSnapshotRepository) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	return r.store.UploadObject(ctx, r.key, data, "application/json")
}

// DecodeSnapshot parses a JSON snapshot.
func DecodeSnapshot(data []byte) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, nil
}

// EncodeSnapshot renders a snapshot as indented JSON.
func EncodeSnapshot(snapshot domain.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}
