package storage

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunHistoryPruner drops history older than retention every interval until
// ctx is done. Call from main or app lifecycle.
func RunHistoryPruner(ctx context.Context, store *Storage, retention, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := store.PruneHistory(now.Add(-retention))
			if err != nil {
				log.Error("pruning command history", zap.Error(err))
				continue
			}
			if removed > 0 {
				log.Debug("pruned command history", zap.Int("removed", removed))
			}
		}
	}
}
