package fsys

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FS is the read-only file-system surface the bundler needs. The core never
// writes, creates, or deletes through it.
type FS interface {
	Exists(path string) bool
	ReadFile(path string) (string, error)
}

// OS backs FS with the real file system.
type OS struct{}

// Exists reports whether path names an existing regular file.
func (OS) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ReadFile reads the whole file as text.
func (OS) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MapFS is an in-memory FS for tests, keyed by slash-separated paths.
type MapFS map[string]string

func (m MapFS) Exists(path string) bool {
	_, ok := m[filepath.ToSlash(path)]
	return ok
}

func (m MapFS) ReadFile(path string) (string, error) {
	src, ok := m[filepath.ToSlash(path)]
	if !ok {
		return "", fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return src, nil
}
