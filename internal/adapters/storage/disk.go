// Package storage keeps uploaded verification images on a filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrTooLarge is returned when an image exceeds the store's size cap.
var ErrTooLarge = errors.New("image too large")

// ImageStore implements ports.ImageStore on an afero filesystem rooted at
// the upload directory.
type ImageStore struct {
	fs       afero.Fs
	baseURL  string
	maxBytes int64
}

// NewDiskStore stores images under dir on the OS filesystem and serves them
// below baseURL (e.g. "/uploads").
func NewDiskStore(dir, baseURL string, maxBytes int64) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return NewImageStore(afero.NewBasePathFs(afero.NewOsFs(), dir), baseURL, maxBytes), nil
}

// NewImageStore stores images on fs.
func NewImageStore(fs afero.Fs, baseURL string, maxBytes int64) *ImageStore {
	return &ImageStore{fs: fs, baseURL: strings.TrimRight(baseURL, "/"), maxBytes: maxBytes}
}

// Save writes r to name atomically and returns the public URL. Partial files
// are removed when the copy fails or exceeds the size cap.
func (s *ImageStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	tmp := name + ".part"
	f, err := s.fs.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", tmp, err)
	}

	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > s.maxBytes {
		err = ErrTooLarge
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		_ = s.fs.Remove(tmp)
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return s.baseURL + "/" + name, nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *ImageStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid image name %q", name)
	}
	return nil
}
