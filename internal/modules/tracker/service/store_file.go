package service

import (
	"context"
	"os"
	"path/filepath"

	"envelope_bot/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// FileStore — JSON-файл, запись через tmp + rename.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load читает файл; если его нет — создаёт с пустой структурой.
func (f *FileStore) Load(ctx context.Context) (models.TrackingStore, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		empty := EmptyStore()
		if err := f.Save(ctx, empty); err != nil {
			return models.TrackingStore{}, err
		}
		return empty, nil
	}
	if err != nil {
		return models.TrackingStore{}, errors.Wrapf(err, "read tracking %s", f.path)
	}

	var s models.TrackingStore
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return models.TrackingStore{}, errors.Wrapf(err, "decode tracking %s", f.path)
	}
	return normalize(s), nil
}

func (f *FileStore) Save(_ context.Context, s models.TrackingStore) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errors.Wrap(err, "mkdir tracking dir")
	}

	b, err := sonic.ConfigStd.MarshalIndent(normalize(s), "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode tracking")
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create tmp")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write tmp")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync tmp")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close tmp")
	}
	return errors.Wrap(os.Rename(tmp.Name(), f.path), "rename tracking")
}
