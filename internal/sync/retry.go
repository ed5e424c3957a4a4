package sync

import (
	"context"
	"time"

	"github.com/mithrel/folio/internal/errs"
)

// retry runs fn until it succeeds, fails with a non-retryable error, or has
// been attempted maxRetries+1 times. Attempt n (counting from 0) is preceded
// by a wait of baseDelay * 2^n, so the first retry waits 2*baseDelay.
// Attempts never overlap.
func (c *Client) retry(ctx context.Context, maxRetries int, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = ctx.Err(); err != nil {
			return errs.Classify(err)
		}
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || !errs.Classify(err).Retryable() {
			return err
		}
		delay := c.baseDelay << (attempt + 1)
		c.log.Debugw("retrying", "attempt", attempt+1, "delay", delay, "error", err)
		if serr := c.sleep(ctx, delay); serr != nil {
			return errs.Classify(serr)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
