package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kata/sweetshop/internal/core/domain"
)

// LocalImageStore writes uploaded images to a directory served under URLPrefix.
type LocalImageStore struct {
	dir       string
	urlPrefix string
}

// NewLocalImageStore creates dir when missing.
func NewLocalImageStore(dir, urlPrefix string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Dir returns the directory files are written to.
func (s *LocalImageStore) Dir() string {
	return s.dir
}

func (s *LocalImageStore) Save(ctx context.Context, filename string, data []byte) (*domain.StoredImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("save image: invalid filename %q", filename)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("save image: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("save image: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return nil, fmt.Errorf("save image: rename: %w", err)
	}

	return &domain.StoredImage{URL: s.urlPrefix + "/" + name, Filename: name}, nil
}
