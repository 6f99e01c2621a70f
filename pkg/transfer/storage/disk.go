package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskService stores blobs on the local filesystem under a root directory,
// sharding keys two levels deep to keep directories small.
type DiskService struct {
	root string
}

func NewDiskService(root string) *DiskService {
	return &DiskService{root: root}
}

func (s *DiskService) path(key string) string {
	if len(key) < 4 {
		return filepath.Join(s.root, key)
	}
	return filepath.Join(s.root, key[0:2], key[2:4], key)
}

// Download opens the file for key. A missing file satisfies
// errors.Is(err, fs.ErrNotExist) so callers can treat it as skippable.
func (s *DiskService) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}
	return f, nil
}

func (s *DiskService) Upload(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := s.path(key)
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(name)
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	return f.Close()
}

func (s *DiskService) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *DiskService) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
