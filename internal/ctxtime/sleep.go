// Package ctxtime provides time helpers that honor context cancellation.
// The reconnect backoff uses it so a pending retry delay can be interrupted.
package ctxtime

import (
	"context"
	"time"
)

// Sleep pauses for d or until ctx is done, whichever comes first. It returns
// ctx.Err() when the context ended the wait early.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if ctx == nil {
		time.Sleep(d)
		return nil
	}

	t := time.NewTimer(d)
	select {
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	case <-t.C:
	}
	return nil
}
