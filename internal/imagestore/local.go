package imagestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LocalStore writes images under a directory that the HTTP server exposes
// at publicBase. Intended for development.
type LocalStore struct {
	dir        string
	publicBase string
	now        func() time.Time
}

func NewLocalStore(dir, publicBase string) *LocalStore {
	return &LocalStore{dir: dir, publicBase: publicBase, now: time.Now}
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Upload(ctx context.Context, upload Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	obj, err := prepare(upload, s.now())
	if err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(obj.Name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(target, upload.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload %s: %w", obj.Name, err)
	}

	return s.publicBase + "/" + obj.Name, nil
}
