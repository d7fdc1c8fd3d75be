package services

import (
	"context"
	"time"

	"mailpilot-be/internal/search"

	"go.uber.org/zap"
)

// StartIndexSaver starts a background goroutine that periodically persists
// the semantic index to dir, so a restart can reload it instead of
// re-embedding the whole store. The worker stops when ctx is done, writing
// one final snapshot on the way out.
func StartIndexSaver(ctx context.Context, interval time.Duration, index *search.Index, dir string, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				if err := index.Save(dir); err != nil {
					logger.Warn("index saver: final save failed", zap.Error(err))
				}
				logger.Info("index saver: shutting down")
				return
			case <-ticker.C:
				if err := index.Save(dir); err != nil {
					logger.Warn("index saver: save failed", zap.Error(err))
					continue
				}
				logger.Debug("index saver: snapshot written", zap.Int("records", index.Len()))
			}
		}
	}()
}
