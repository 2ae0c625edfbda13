// Package storage keeps uploaded product images and message attachments.
// Both backends hand out paths of the form "uploads/<key>", which is what
// the database stores and what clients fetch.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/a2hand/internal/filex"
	"github.com/google/uuid"
)

// PathPrefix is the first segment of every stored path.
const PathPrefix = "uploads"

// ErrInvalidPath is returned for paths that do not name a stored object.
var ErrInvalidPath = errors.New("invalid upload path")

type Store interface {
	// Save stores the content under a freshly generated key derived from
	// name and returns its path.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	// Remove deletes a stored object. Removing a missing object succeeds.
	Remove(ctx context.Context, path string) error
}

// GenerateKey builds a unique object key:
// YYYYMMDDhhmmss_<8 hex chars>_<sanitised base name>.
func GenerateKey(now time.Time, original string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s", now.UTC().Format("20060102150405"), suffix, filex.SanitizeName(original))
}

func pathFor(key string) string {
	return PathPrefix + "/" + key
}

// keyFrom extracts the object key from a stored path, rejecting anything
// that could escape the upload area.
func keyFrom(path string) (string, error) {
	key, ok := strings.CutPrefix(strings.TrimPrefix(path, "/"), PathPrefix+"/")
	if !ok || key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return key, nil
}
