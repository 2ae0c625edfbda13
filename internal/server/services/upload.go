package services

import (
	"context"
	"io"

	"github.com/dmitrijs2005/a2hand/internal/logging"
	"github.com/dmitrijs2005/a2hand/internal/server/storage"
)

// Upload is a client supplied file: its original name and content.
type Upload struct {
	Name    string
	Content io.Reader
}

// removeFiles deletes stored files best-effort. Failures are logged and
// never reach the caller.
func removeFiles(ctx context.Context, store storage.Store, logger logging.Logger, paths []string) {
	log := logging.FromContext(ctx, logger)
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := store.Remove(context.WithoutCancel(ctx), p); err != nil {
			log.Warn(ctx, "failed to remove stored file", "path", p, "error", err)
		}
	}
}
