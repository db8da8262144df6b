package router

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
)

// fakeClock advances its current time by the full duration of every
// sleep, so waits resolve instantly and deterministically.
type fakeClock struct {
	mu    sync.Mutex
	t     time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func (f *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if d > 0 {
		f.slept = append(f.slept, d)
		f.t = f.t.Add(d)
	}
	return nil
}

func (f *fakeClock) sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.slept...)
}

func (f *fakeClock) clock() clock {
	return clock{now: f.now, sleep: f.sleep}
}

func newTestLimiter() (*RateLimiter, *fakeClock) {
	fc := newFakeClock()
	rl := NewRateLimiter()
	rl.clk = fc.clock()
	return rl, fc
}

func TestLimitsDefaults(t *testing.T) {
	rl, _ := newTestLimiter()
	l := rl.Snapshot("groq")

	if l.RequestsRemaining != DefaultRequestLimit || l.RequestsLimit != DefaultRequestLimit {
		t.Errorf("unexpected request budget %d/%d", l.RequestsRemaining, l.RequestsLimit)
	}
	if l.TokensRemaining != DefaultTokenLimit || l.TokensLimit != DefaultTokenLimit {
		t.Errorf("unexpected token budget %d/%d", l.TokensRemaining, l.TokensLimit)
	}
	if rl.IsRateLimited("groq") {
		t.Error("fresh provider should not be rate limited")
	}
}

func TestRateLimitWindow(t *testing.T) {
	rl, fc := newTestLimiter()

	rl.SetRateLimited("groq", 90*time.Second)
	if !rl.IsRateLimited("groq") {
		t.Fatal("should be limited immediately after SetRateLimited")
	}
	if got := rl.TimeUntilAvailable("groq"); got != 90*time.Second {
		t.Errorf("expected 90s until available, got %v", got)
	}

	fc.advance(89 * time.Second)
	if !rl.IsRateLimited("groq") {
		t.Error("should still be limited one second before reset")
	}

	fc.advance(2 * time.Second)
	// Reset time passed, but the request budget is still zero: the
	// limiter stays limited until Acquire runs the optimistic reset.
	if !rl.IsRateLimited("groq") {
		t.Error("zeroed budget keeps the provider limited")
	}
	if got := rl.TimeUntilAvailable("groq"); got != 0 {
		t.Errorf("expected 0 after reset passed, got %v", got)
	}
}

func TestAcquireOptimisticReset(t *testing.T) {
	rl, _ := newTestLimiter()

	// Limited with no reset time recorded.
	rl.SetRateLimited("groq", 0)
	if err := rl.Acquire(context.Background(), "groq"); err != nil {
		t.Fatalf("acquire should recover via optimistic reset: %v", err)
	}
	defer rl.Release("groq")

	l := rl.Snapshot("groq")
	if l.RequestsRemaining != l.RequestsLimit {
		t.Errorf("budget should be restored, got %d/%d", l.RequestsRemaining, l.RequestsLimit)
	}
}

func TestAcquireWaitsInBoundedIncrements(t *testing.T) {
	rl, fc := newTestLimiter()

	rl.SetRateLimited("groq", 150*time.Second)
	if err := rl.Acquire(context.Background(), "groq"); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	rl.Release("groq")

	for _, d := range fc.sleeps() {
		if d > maxLimitWait {
			t.Errorf("sleep %v exceeds the %v cap", d, maxLimitWait)
		}
	}
	// 150s of waiting must have been split into capped chunks.
	if n := len(fc.sleeps()); n < 3 {
		t.Errorf("expected at least 3 bounded sleeps, got %d (%v)", n, fc.sleeps())
	}
}

func TestAcquireHonorsCancellation(t *testing.T) {
	rl, _ := newTestLimiter()
	rl.SetRateLimited("groq", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := rl.Acquire(ctx, "groq"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if rl.Inflight("groq") != 0 {
		t.Error("cancelled acquire must not hold a slot")
	}
}

func TestAcquireMinimumInterval(t *testing.T) {
	rl, fc := newTestLimiter()

	// Record a dispatch two seconds ago.
	rl.UpdateFromHeaders("groq", nil)
	fc.advance(2 * time.Second)

	if err := rl.Acquire(context.Background(), "groq"); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer rl.Release("groq")

	sleeps := fc.sleeps()
	if len(sleeps) != 1 || sleeps[0] != 4*time.Second {
		t.Errorf("expected a single 4s spacing sleep, got %v", sleeps)
	}
}

func TestAcquireSlotTimeout(t *testing.T) {
	rl, _ := newTestLimiter()
	rl.maxConcurrent = 1
	rl.slotTimeout = 50 * time.Millisecond

	if err := rl.Acquire(context.Background(), "groq"); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	err := rl.Acquire(context.Background(), "groq")
	if !errors.Is(err, ErrSlotTimeout) {
		t.Errorf("expected ErrSlotTimeout, got %v", err)
	}

	rl.Release("groq")
	if rl.Inflight("groq") != 0 {
		t.Errorf("expected zero inflight after release, got %d", rl.Inflight("groq"))
	}
}

func TestReleaseWithoutAcquireIsNoop(t *testing.T) {
	rl, _ := newTestLimiter()

	rl.Release("groq")
	rl.Release("groq")
	if rl.Inflight("groq") != 0 {
		t.Error("unmatched release must not underflow")
	}

	// A real acquire still works afterwards.
	if err := rl.Acquire(context.Background(), "groq"); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if rl.Inflight("groq") != 1 {
		t.Errorf("expected one inflight, got %d", rl.Inflight("groq"))
	}
	rl.Release("groq")
	if rl.Inflight("groq") != 0 {
		t.Errorf("expected zero inflight, got %d", rl.Inflight("groq"))
	}
}

func TestUpdateFromHeaders(t *testing.T) {
	rl, fc := newTestLimiter()

	h := http.Header{}
	h.Set("x-ratelimit-remaining-requests", "7")
	h.Set("x-ratelimit-limit-requests", "30")
	h.Set("x-ratelimit-remaining-tokens", "5000")
	h.Set("x-ratelimit-limit-tokens", "6000")
	h.Set("x-ratelimit-reset-requests", "2s")
	rl.UpdateFromHeaders("groq", h)

	l := rl.Snapshot("groq")
	if l.RequestsRemaining != 7 || l.RequestsLimit != 30 {
		t.Errorf("unexpected request budget %d/%d", l.RequestsRemaining, l.RequestsLimit)
	}
	if l.TokensRemaining != 5000 || l.TokensLimit != 6000 {
		t.Errorf("unexpected token budget %d/%d", l.TokensRemaining, l.TokensLimit)
	}
	if want := fc.now().Add(2 * time.Second); !l.ResetAt.Equal(want) {
		t.Errorf("expected reset at %v, got %v", want, l.ResetAt)
	}
	if l.RequestCount != 1 {
		t.Errorf("expected request count 1, got %d", l.RequestCount)
	}

	// Missing headers leave the observed values untouched.
	rl.UpdateFromHeaders("groq", http.Header{})
	l = rl.Snapshot("groq")
	if l.RequestsRemaining != 7 || l.RequestCount != 2 {
		t.Errorf("absent headers must not clobber state: %+v", l)
	}
}

func TestUpdateFromHeadersIntegerSeconds(t *testing.T) {
	rl, fc := newTestLimiter()

	h := http.Header{}
	h.Set("x-ratelimit-remaining", "0")
	h.Set("x-ratelimit-reset-requests", "30")
	rl.UpdateFromHeaders("openrouter", h)

	if !rl.IsRateLimited("openrouter") {
		t.Error("zero remaining should rate-limit")
	}
	if want := fc.now().Add(30 * time.Second); !rl.Snapshot("openrouter").ResetAt.Equal(want) {
		t.Errorf("integer seconds reset not applied, got %v", rl.Snapshot("openrouter").ResetAt)
	}
}

func TestResetRestoresBudgets(t *testing.T) {
	rl, _ := newTestLimiter()

	rl.SetRateLimited("groq", time.Hour)
	rl.Reset("groq")

	if rl.IsRateLimited("groq") {
		t.Error("reset provider should not be limited")
	}
	l := rl.Snapshot("groq")
	if l.RequestsRemaining != l.RequestsLimit || !l.ResetAt.IsZero() {
		t.Errorf("reset did not restore state: %+v", l)
	}
}
