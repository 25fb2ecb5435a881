package retry

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pipewright/pipewright/internal/remote"
)

func newTestController(cfg Config) (*Controller, *[]time.Duration) {
	c := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var delays []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return c, &delays
}

func TestDoFirstTrySuccess(t *testing.T) {
	c, delays := newTestController(Config{})
	calls := 0
	res := c.Do(context.Background(), "task-1-scan", func(ctx context.Context, at Attempt) *remote.Result {
		calls++
		if at.Session != "task-1-scan" {
			t.Fatalf("session = %q", at.Session)
		}
		return &remote.Result{Status: remote.StatusSuccess, Completion: "ok"}
	})
	if !res.OK() {
		t.Fatalf("status = %q", res.Status)
	}
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
	if len(*delays) != 0 {
		t.Fatalf("delays = %v", *delays)
	}
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	c, delays := newTestController(Config{MaxAttempts: 3, BackoffBase: 2 * time.Second})
	var sessions []string
	calls := 0
	res := c.Do(context.Background(), "task-1-scan", func(ctx context.Context, at Attempt) *remote.Result {
		calls++
		sessions = append(sessions, at.Session)
		if calls < 3 {
			return remote.Errorf(remote.ClassTransient, "service hiccup")
		}
		return &remote.Result{Status: remote.StatusSuccess}
	})

	if !res.OK() {
		t.Fatalf("status = %q, message = %q", res.Status, res.Message)
	}
	if calls != 3 {
		t.Fatalf("calls = %d", calls)
	}
	want := []string{"task-1-scan", "task-1-scan#r2", "task-1-scan#r3"}
	for i, s := range sessions {
		if s != want[i] {
			t.Fatalf("sessions = %v, want %v", sessions, want)
		}
	}
	if len(*delays) != 2 {
		t.Fatalf("delays = %v", *delays)
	}
	if (*delays)[0] != 2*time.Second || (*delays)[1] != 4*time.Second {
		t.Fatalf("delays = %v", *delays)
	}
}

func TestDoDelaysMonotonic(t *testing.T) {
	c, delays := newTestController(Config{MaxAttempts: 5, BackoffBase: time.Second, MaxBackoff: time.Minute})
	c.Do(context.Background(), "s", func(ctx context.Context, at Attempt) *remote.Result {
		return remote.Errorf(remote.ClassThrottled, "always throttled")
	})
	if len(*delays) != 4 {
		t.Fatalf("delays = %v", *delays)
	}
	for i := 1; i < len(*delays); i++ {
		if (*delays)[i] < (*delays)[i-1] {
			t.Fatalf("delays not monotonic: %v", *delays)
		}
	}
}

func TestDoNonRetryableStops(t *testing.T) {
	for _, class := range []remote.Class{remote.ClassBadRequest, remote.ClassAuth, remote.ClassNotFound, remote.ClassUnknown} {
		c, delays := newTestController(Config{MaxAttempts: 3, BackoffBase: time.Second})
		calls := 0
		res := c.Do(context.Background(), "s", func(ctx context.Context, at Attempt) *remote.Result {
			calls++
			return remote.Errorf(class, "permanent")
		})
		if calls != 1 {
			t.Fatalf("class %q: calls = %d, want 1", class, calls)
		}
		if res.Class != class {
			t.Fatalf("class = %q, want %q", res.Class, class)
		}
		if len(*delays) != 0 {
			t.Fatalf("class %q: delays = %v", class, *delays)
		}
	}
}

func TestDoBudgetExhausted(t *testing.T) {
	c, _ := newTestController(Config{MaxAttempts: 3, BackoffBase: time.Second})
	calls := 0
	res := c.Do(context.Background(), "s", func(ctx context.Context, at Attempt) *remote.Result {
		calls++
		return remote.Errorf(remote.ClassThrottled, "still throttled")
	})
	if calls != 3 {
		t.Fatalf("calls = %d", calls)
	}
	if res.OK() || res.Class != remote.ClassThrottled {
		t.Fatalf("result = %+v", res)
	}
}

func TestBackoffCapped(t *testing.T) {
	c := New(Config{MaxAttempts: 10, BackoffBase: 2 * time.Second, MaxBackoff: 10 * time.Second}, nil)
	if d := c.Backoff(1); d != 2*time.Second {
		t.Fatalf("Backoff(1) = %v", d)
	}
	if d := c.Backoff(2); d != 4*time.Second {
		t.Fatalf("Backoff(2) = %v", d)
	}
	if d := c.Backoff(4); d != 10*time.Second {
		t.Fatalf("Backoff(4) = %v", d)
	}
	if d := c.Backoff(40); d != 10*time.Second {
		t.Fatalf("Backoff(40) = %v (overflow must cap)", d)
	}
}

func TestDoCanceledDuringWait(t *testing.T) {
	c := New(Config{MaxAttempts: 3, BackoffBase: time.Hour}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := c.Do(ctx, "s", func(ctx context.Context, at Attempt) *remote.Result {
		return remote.Errorf(remote.ClassTransient, "flaky")
	})
	if res.OK() {
		t.Fatal("expected error result")
	}
}

func TestSessionFor(t *testing.T) {
	if s := SessionFor("base", 1); s != "base" {
		t.Fatalf("attempt 1 = %q", s)
	}
	if s := SessionFor("base", 2); s != "base#r2" {
		t.Fatalf("attempt 2 = %q", s)
	}
}
