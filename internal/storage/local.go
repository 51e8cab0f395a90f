package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStorage keeps one file per document, flat in a single directory.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		return nil, errors.New("upload dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save writes r under a fresh "<uuid>.<ext>" name and returns that name.
func (s *LocalStorage) Save(r io.Reader, ext string) (string, error) {
	name := uuid.NewString() + "." + ext
	path := s.Path(name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file failed: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload file failed: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close upload file failed: %w", err)
	}
	return name, nil
}

func (s *LocalStorage) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *LocalStorage) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes the named file; a file that is already gone is not an error.
func (s *LocalStorage) Remove(name string) error {
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload file failed: %w", err)
	}
	return nil
}
