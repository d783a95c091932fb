package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local stores images on the local filesystem in a single flat directory.
type Local struct {
	dir string
}

// NewLocal creates the upload directory if needed and returns a store
// backed by it.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

// Dir returns the managed upload directory.
func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) Save(ctx context.Context, r io.Reader, ext string) (string, error) {
	name, err := NewFilename(ext)
	if err != nil {
		return "", err
	}

	// Write to a temp file in the same directory, then rename into place
	// so a partially written upload is never visible under its final name.
	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close upload: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(l.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move upload into place: %w", err)
	}

	return name, nil
}

func (l *Local) Remove(ctx context.Context, name string) error {
	path, err := l.resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

func (l *Local) Exists(ctx context.Context, name string) (bool, error) {
	path, err := l.resolve(name)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Ping verifies the upload directory is writable.
func (l *Local) Ping(ctx context.Context) error {
	probe, err := os.CreateTemp(l.dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("upload dir not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

// resolve rejects names that would escape the upload directory.
func (l *Local) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || !fs.ValidPath(name) {
		return "", fmt.Errorf("invalid image filename %q", name)
	}
	return filepath.Join(l.dir, name), nil
}
