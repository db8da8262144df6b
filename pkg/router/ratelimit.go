package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	// Conservative budgets assumed until real values are observed
	// from upstream response headers.
	DefaultRequestLimit = 100
	DefaultTokenLimit   = 10000

	// DefaultMaxConcurrent is the per-provider in-flight request cap.
	DefaultMaxConcurrent = 10

	// DefaultMinInterval is the minimum spacing between requests to
	// the same provider. Free-tier upstreams enforce coarse per-minute
	// quotas; pacing locally avoids burning them on requests that are
	// guaranteed to 429.
	DefaultMinInterval = 6 * time.Second

	// maxLimitWait caps each sleep iteration while waiting out a rate
	// limit, keeping the loop responsive to cancellation.
	maxLimitWait = 60 * time.Second

	// slotAcquireTimeout bounds how long a caller queues on the
	// concurrency gate.
	slotAcquireTimeout = 30 * time.Second
)

// ErrSlotTimeout reports that no concurrency slot freed up in time.
// It is distinguishable from transport errors so the router can record
// it as an admission failure.
var ErrSlotTimeout = errors.New("could not acquire rate limit slot")

// Limits is the tracked rate-limit state for one provider.
type Limits struct {
	RequestsRemaining int
	RequestsLimit     int
	TokensRemaining   int
	TokensLimit       int

	// ResetAt is when budgets are assumed replenished; zero when the
	// upstream gave no signal.
	ResetAt time.Time

	// LastRequestAt is when the most recent request was dispatched.
	LastRequestAt time.Time

	// RequestCount is diagnostic only.
	RequestCount int64
}

func (l *Limits) isLimited(now time.Time) bool {
	if !l.ResetAt.IsZero() && now.Before(l.ResetAt) {
		return true
	}
	return l.RequestsRemaining <= 0
}

func (l *Limits) timeUntilReset(now time.Time) time.Duration {
	if l.ResetAt.IsZero() {
		return 0
	}
	if d := l.ResetAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// RateLimiter is the per-provider admission controller. State is
// created lazily on first reference and lives for the process.
type RateLimiter struct {
	mu       sync.Mutex
	limits   map[string]*Limits
	gates    map[string]*semaphore.Weighted
	inflight map[string]int

	maxConcurrent int64
	minInterval   time.Duration
	slotTimeout   time.Duration
	clk           clock
}

// NewRateLimiter creates a limiter with the default pacing settings.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limits:        make(map[string]*Limits),
		gates:         make(map[string]*semaphore.Weighted),
		inflight:      make(map[string]int),
		maxConcurrent: DefaultMaxConcurrent,
		minInterval:   DefaultMinInterval,
		slotTimeout:   slotAcquireTimeout,
		clk:           systemClock(),
	}
}

func (rl *RateLimiter) limitsLocked(name string) *Limits {
	l, ok := rl.limits[name]
	if !ok {
		l = &Limits{
			RequestsRemaining: DefaultRequestLimit,
			RequestsLimit:     DefaultRequestLimit,
			TokensRemaining:   DefaultTokenLimit,
			TokensLimit:       DefaultTokenLimit,
		}
		rl.limits[name] = l
	}
	return l
}

func (rl *RateLimiter) gate(name string) *semaphore.Weighted {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	g, ok := rl.gates[name]
	if !ok {
		g = semaphore.NewWeighted(rl.maxConcurrent)
		rl.gates[name] = g
	}
	return g
}

// Snapshot returns a copy of the provider's current limit state.
func (rl *RateLimiter) Snapshot(name string) Limits {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return *rl.limitsLocked(name)
}

// IsRateLimited reports whether the provider should not be called
// right now.
func (rl *RateLimiter) IsRateLimited(name string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.limitsLocked(name).isLimited(rl.clk.now())
}

// TimeUntilAvailable returns how long until the recorded reset time
// passes, zero when none is set.
func (rl *RateLimiter) TimeUntilAvailable(name string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.limitsLocked(name).timeUntilReset(rl.clk.now())
}

// SetRateLimited zeroes the provider's request budget. A positive
// resetAfter also records when the budget replenishes.
func (rl *RateLimiter) SetRateLimited(name string, resetAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l := rl.limitsLocked(name)
	l.RequestsRemaining = 0
	if resetAfter > 0 {
		l.ResetAt = rl.clk.now().Add(resetAfter)
	}
}

// Reset restores the provider's budgets and clears the reset time.
func (rl *RateLimiter) Reset(name string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l := rl.limitsLocked(name)
	l.RequestsRemaining = l.RequestsLimit
	l.TokensRemaining = l.TokensLimit
	l.ResetAt = time.Time{}
}

// UpdateFromHeaders opportunistically refreshes budgets from provider
// quota headers. Header names vary per provider; missing fields leave
// state unchanged. The request timestamp and counter always advance.
func (rl *RateLimiter) UpdateFromHeaders(name string, headers http.Header) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l := rl.limitsLocked(name)
	now := rl.clk.now()

	if headers != nil {
		if v, ok := headerInt(headers, "x-ratelimit-remaining"); ok {
			l.RequestsRemaining = v
		}
		if v, ok := headerInt(headers, "x-ratelimit-limit"); ok {
			l.RequestsLimit = v
		}
		if v, ok := headerInt(headers, "x-ratelimit-reset"); ok {
			// Generic reset is an absolute unix timestamp.
			l.ResetAt = time.Unix(int64(v), 0)
		}

		// Groq-style suffixed headers take precedence.
		if v, ok := headerInt(headers, "x-ratelimit-remaining-requests"); ok {
			l.RequestsRemaining = v
		}
		if v, ok := headerInt(headers, "x-ratelimit-limit-requests"); ok {
			l.RequestsLimit = v
		}
		if v, ok := headerInt(headers, "x-ratelimit-remaining-tokens"); ok {
			l.TokensRemaining = v
		}
		if v, ok := headerInt(headers, "x-ratelimit-limit-tokens"); ok {
			l.TokensLimit = v
		}
		if d, ok := headerDuration(headers, "x-ratelimit-reset-requests"); ok {
			l.ResetAt = now.Add(d)
		}
	}

	l.LastRequestAt = now
	l.RequestCount++
}

// headerInt parses an integer header, reporting whether it was present
// and well-formed.
func headerInt(h http.Header, key string) (int, bool) {
	raw := h.Get(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// headerDuration parses a relative reset header. Upstreams send either
// plain seconds ("30") or Go-parseable durations ("2s", "6m0s").
func headerDuration(h http.Header, key string) (time.Duration, bool) {
	raw := h.Get(key)
	if raw == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, true
	}
	return 0, false
}

// Acquire admits one request to the provider. It may suspend the
// caller: first waiting out a recorded rate limit (bounded sleeps so
// cancellation is honored), then queueing on the concurrency gate,
// then enforcing the minimum inter-request spacing.
func (rl *RateLimiter) Acquire(ctx context.Context, name string) error {
	for {
		rl.mu.Lock()
		l := rl.limitsLocked(name)
		now := rl.clk.now()
		limited := l.isLimited(now)
		wait := l.timeUntilReset(now)
		if limited && wait <= 0 {
			// No reset time recorded: optimistically assume the
			// upstream window rolled over.
			l.RequestsRemaining = l.RequestsLimit
			l.ResetAt = time.Time{}
			limited = false
		}
		rl.mu.Unlock()

		if !limited {
			break
		}
		if wait > maxLimitWait {
			wait = maxLimitWait
		}
		if err := rl.clk.sleep(ctx, wait); err != nil {
			return err
		}
		// Re-check after waking; another caller may have consumed the
		// replenished budget in the meantime.
	}

	gate := rl.gate(name)
	gateCtx, cancel := context.WithTimeout(ctx, rl.slotTimeout)
	err := gate.Acquire(gateCtx, 1)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w for %s", ErrSlotTimeout, name)
	}

	rl.mu.Lock()
	rl.inflight[name]++
	sinceLast := rl.clk.now().Sub(rl.limitsLocked(name).LastRequestAt)
	rl.mu.Unlock()

	if sinceLast < rl.minInterval {
		if err := rl.clk.sleep(ctx, rl.minInterval-sinceLast); err != nil {
			rl.Release(name)
			return err
		}
	}

	rl.mu.Lock()
	rl.limitsLocked(name).LastRequestAt = rl.clk.now()
	rl.mu.Unlock()
	return nil
}

// Release returns the provider's concurrency slot. Calling it without
// a matching Acquire is a no-op.
func (rl *RateLimiter) Release(name string) {
	rl.mu.Lock()
	g, ok := rl.gates[name]
	if !ok || rl.inflight[name] <= 0 {
		rl.mu.Unlock()
		return
	}
	rl.inflight[name]--
	rl.mu.Unlock()
	g.Release(1)
}

// Inflight reports the provider's current in-flight request count.
func (rl *RateLimiter) Inflight(name string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.inflight[name]
}
