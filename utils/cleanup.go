package utils

import (
	"context"
	"time"
)

// StartSessionJanitor periodically purges expired in-memory visitor sessions
// until ctx is cancelled. It is a no-op for Redis-backed stores.
func StartSessionJanitor(ctx context.Context, store *SessionStore, interval time.Duration) {
	if store == nil || store.Backend() != "memory" {
		return
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := store.PurgeExpired(); n > 0 {
					Sugar.Debugf("session janitor purged %d expired sessions", n)
				}
			}
		}
	}()
}
