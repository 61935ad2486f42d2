package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultURLPrefix is where locally stored images are served.
const DefaultURLPrefix = "/uploads"

// LocalStore keeps images in a directory that the router serves statically.
type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, urlPrefix: DefaultURLPrefix}, nil
}

// Dir returns the directory images are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader, contentType string) (string, error) {
	name := filepath.Base(filename)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close image file: %w", err)
	}

	return path.Join(s.urlPrefix, name), nil
}

// Delete removes the file behind ref. References outside the upload prefix
// are ignored.
func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if ref == "" || !strings.HasPrefix(ref, s.urlPrefix+"/") {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(ref, s.urlPrefix+"/"))
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
