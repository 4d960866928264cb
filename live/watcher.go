package live

import (
	"context"
	"time"

	"facility-maintenance/microservices/statistics-service/logging"
	"facility-maintenance/microservices/statistics-service/repositories"
)

// Invalidator drops cached statistics of a department (all departments when
// the id is empty).
type Invalidator interface {
	Invalidate(ctx context.Context, departmentID string) error
}

const (
	minRetryDelay = time.Second
	maxRetryDelay = 30 * time.Second
)

// Follow forwards every task mutation reported by watcher to the cache and to
// the hub, reopening the feed with exponential backoff when it fails. It
// returns when ctx is done. cache and hub may be nil.
func Follow(ctx context.Context, watcher repositories.ChangeWatcher, cache Invalidator, hub *Hub) {
	onChange := func(departmentID string) {
		if cache != nil {
			if err := cache.Invalidate(ctx, departmentID); err != nil {
				logging.Logger.Warnf("Event ID: CACHE_INVALIDATE_FAILED, Description: %v", err)
			}
		}
		if hub != nil {
			hub.Publish(departmentID)
		}
		logging.Logger.Debugf("Event ID: STATISTICS_INVALIDATED, Description: department=%q", departmentID)
	}

	delay := minRetryDelay
	for {
		started := time.Now()
		err := watcher.Watch(ctx, onChange)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logging.Logger.Errorf("Event ID: CHANGE_FEED_FAILED, Description: %v, retrying in %s", err, delay)
		}
		// anything may have changed while the feed was down
		onChange("")

		if time.Since(started) > maxRetryDelay {
			delay = minRetryDelay
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}
