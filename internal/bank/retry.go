package bank

import (
	"context"
	"log/slog"
	"time"

	"github.com/nikitakapustkin/bankctl/pkg/logger"
)

// WithSyncRetry runs fn, re-attempting while it fails with the
// user-not-yet-synced condition: a freshly registered user is written to the
// auth service first and only becomes queryable in the bank once the event
// stream catches up. The Nth wait is N*BaseDelay. Any other failure, or
// exhausting MaxAttempts, propagates the error unchanged. The loop has no
// cancellation primitive; it ends only by success or exhaustion.
func (c *Client) WithSyncRetry(ctx context.Context, op string, fn func() error) error {
	maxAttempts := c.retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsUserNotSynced(err) || attempt == maxAttempts {
			return err
		}

		logger.InfoContext(ctx, "user not yet synced with bank, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
		)
		time.Sleep(time.Duration(attempt) * c.retry.BaseDelay)
	}
}
