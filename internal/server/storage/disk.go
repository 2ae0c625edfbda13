package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/a2hand/internal/filex"
)

// DiskStore writes uploads into a local directory.
type DiskStore struct {
	dir string
	now func() time.Time
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &DiskStore{dir: abs, now: time.Now}, nil
}

// Dir is the absolute directory served under /uploads/.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := GenerateKey(s.now(), name)
	full := filepath.Join(s.dir, key)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("write upload: %w", err)
	}

	return pathFor(key), nil
}

func (s *DiskStore) Remove(_ context.Context, path string) error {
	key, err := keyFrom(path)
	if err != nil {
		return err
	}
	return filex.RemoveIfExists(filepath.Join(s.dir, key))
}
