// Package retry re-issues remote calls whose failure class is worth another
// try, with exponential backoff between attempts.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pipewright/pipewright/internal/remote"
)

// Config bounds the retry loop.
type Config struct {
	MaxAttempts int
	BackoffBase time.Duration
	MaxBackoff  time.Duration
}

// DefaultConfig is three attempts with backoff starting at two seconds.
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, BackoffBase: 2 * time.Second, MaxBackoff: 30 * time.Second}
}

// Attempt identifies one try of a retried call. Session carries the mutated
// correlation identifier: attempt 1 uses the base verbatim, attempt n appends
// "#rn" so a retried generative call starts a fresh conversation instead of
// colliding with the failed attempt's state.
type Attempt struct {
	Number  int
	Session string
}

// Func issues one attempt of a remote call.
type Func func(ctx context.Context, attempt Attempt) *remote.Result

// Controller runs calls under a retry policy.
type Controller struct {
	cfg    Config
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New returns a Controller, filling zero config fields with defaults.
func New(cfg Config, logger *slog.Logger) *Controller {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = def.BackoffBase
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{cfg: cfg, logger: logger, sleep: sleepCtx}
}

// Do runs fn until it succeeds, fails with a non-retryable class, or
// attempts run out. The last result is returned unchanged.
func (c *Controller) Do(ctx context.Context, session string, fn Func) *remote.Result {
	var res *remote.Result
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		res = fn(ctx, Attempt{Number: attempt, Session: SessionFor(session, attempt)})
		if res == nil {
			return remote.Errorf(remote.ClassUnknown, "remote call returned no result")
		}
		if res.OK() || !res.Class.Retryable() {
			return res
		}
		if attempt == c.cfg.MaxAttempts {
			break
		}

		delay := c.Backoff(attempt)
		c.logger.Warn("remote call failed, retrying",
			"session", session, "attempt", attempt, "class", string(res.Class), "backoff", delay)
		if err := c.sleep(ctx, delay); err != nil {
			return remote.Errorf(remote.ClassUnknown, "retry wait interrupted: %v", err)
		}
	}
	return res
}

// Backoff returns the delay after a failed attempt n: the base doubled per
// completed attempt, capped at MaxBackoff.
func (c *Controller) Backoff(attempt int) time.Duration {
	d := c.cfg.BackoffBase << (attempt - 1)
	if d <= 0 || d > c.cfg.MaxBackoff {
		return c.cfg.MaxBackoff
	}
	return d
}

// SessionFor derives the correlation identifier for one attempt.
func SessionFor(base string, attempt int) string {
	if attempt <= 1 {
		return base
	}
	return fmt.Sprintf("%s#r%d", base, attempt)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
