package router

import (
	"sync"
	"time"
)

const usageWindow = 24 * time.Hour

// Usage is the accumulated daily consumption for one provider.
type Usage struct {
	Requests int64 `json:"requests"`
	Tokens   int64 `json:"tokens"`
}

// QuotaManager keeps per-provider usage counters over a rolling day.
// All operations are total; the rollover check runs before every one
// of them.
type QuotaManager struct {
	mu        sync.Mutex
	usage     map[string]*Usage
	lastReset time.Time
	clk       clock
}

func NewQuotaManager() *QuotaManager {
	clk := systemClock()
	return &QuotaManager{
		usage:     make(map[string]*Usage),
		lastReset: clk.now(),
		clk:       clk,
	}
}

// checkRollover clears the ledger when more than a day has elapsed.
// Callers must hold the lock.
func (q *QuotaManager) checkRollover() {
	now := q.clk.now()
	if now.Sub(q.lastReset) > usageWindow {
		q.usage = make(map[string]*Usage)
		q.lastReset = now
	}
}

// RecordUsage adds one request and the given token count for the
// provider.
func (q *QuotaManager) RecordUsage(name string, tokens int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.checkRollover()

	u, ok := q.usage[name]
	if !ok {
		u = &Usage{}
		q.usage[name] = u
	}
	u.Requests++
	u.Tokens += int64(tokens)
}

// Usage returns the provider's counters for the current window.
func (q *QuotaManager) Usage(name string) Usage {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.checkRollover()

	if u, ok := q.usage[name]; ok {
		return *u
	}
	return Usage{}
}

// AllUsage snapshots every provider's counters.
func (q *QuotaManager) AllUsage() map[string]Usage {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.checkRollover()

	out := make(map[string]Usage, len(q.usage))
	for name, u := range q.usage {
		out[name] = *u
	}
	return out
}
