// Package storage manages uploaded post images. Files live under a single
// flat namespace and are referenced by generated filename only; the
// database never sees a path.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the named file does not exist. Callers
// deleting a post treat it as best-effort and move on.
var ErrNotFound = errors.New("file not found")

// allowed upload extensions, lowercase
var allowedExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
}

// ImageStore stores uploaded image files under generated names.
type ImageStore interface {
	// Save writes the reader's contents under a fresh collision-resistant
	// name and returns that name.
	Save(ctx context.Context, r io.Reader, ext string) (string, error)
	// Remove deletes the named file, returning ErrNotFound if absent.
	Remove(ctx context.Context, name string) error
	// Exists reports whether the named file is present.
	Exists(ctx context.Context, name string) (bool, error)
	// Ping checks that the backing store is usable.
	Ping(ctx context.Context) error
}

// AllowedExtension reports whether ext (without dot, any case) is an
// accepted image type.
func AllowedExtension(ext string) bool {
	_, ok := allowedExtensions[strings.ToLower(ext)]
	return ok
}

// ContentType returns the MIME type for an allowed extension.
func ContentType(ext string) string {
	return allowedExtensions[strings.ToLower(ext)]
}

// NewFilename generates a unique filename for an upload. UUIDv4 names make
// collisions under concurrent uploads a non-issue.
func NewFilename(ext string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if !AllowedExtension(ext) {
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}
	return uuid.NewString() + "." + ext, nil
}
