package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ritzau/finance-assistant/pkg/model"
)

// FileStore is a read-only RecordStore over JSON snapshots named <resource>.json
type FileStore struct {
	dir string
}

// NewFileStore creates a store reading snapshots from dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the snapshot directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the snapshot file of a resource
func (s *FileStore) Path(res model.Resource) string {
	return filepath.Join(s.dir, res.Path+".json")
}

// List reads the snapshot of a resource. A missing snapshot is an empty list.
func (s *FileStore) List(ctx context.Context, res model.Resource) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.Path(res)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	records, err := decodeList[model.Record](data, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func (s *FileStore) Create(context.Context, model.Resource, RecordInput) (model.Record, error) {
	return model.Record{}, ErrReadOnly
}

func (s *FileStore) Update(context.Context, model.Resource, model.ID, RecordInput) (model.Record, error) {
	return model.Record{}, ErrReadOnly
}

func (s *FileStore) Delete(context.Context, model.Resource, model.ID) error {
	return ErrReadOnly
}
