package router

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/copyspell/copyspell/pkg/provider"
)

func newTestRouter(priority []string, providers ...provider.Provider) (*Router, *fakeClock) {
	fc := newFakeClock()
	r := New(priority, providers...)
	r.limiter.clk = fc.clock()
	r.quota.clk = fc.clock()
	r.quota.lastReset = fc.now()
	return r, fc
}

// panicProvider blows up on every Generate call. Used to verify slot
// accounting survives adapter bugs.
type panicProvider struct {
	*provider.State
	name string
}

func newPanicProvider(name string) *panicProvider {
	return &panicProvider{State: provider.NewState(true), name: name}
}

func (p *panicProvider) Name() string         { return p.name }
func (p *panicProvider) Models() []string     { return []string{"boom-model"} }
func (p *panicProvider) DefaultModel() string { return "boom-model" }

func (p *panicProvider) Generate(ctx context.Context, req provider.GenerationRequest) provider.GenerationResult {
	panic("kaboom")
}

func (p *panicProvider) GenerateStream(ctx context.Context, req provider.GenerationRequest) <-chan string {
	panic("kaboom")
}

func (p *panicProvider) CheckAvailability(ctx context.Context) bool { return true }

func TestGenerateNoProviders(t *testing.T) {
	r, _ := newTestRouter(nil)

	res := r.Generate(context.Background(), "write copy", Options{})
	if res.Success {
		t.Fatal("expected failure with no providers")
	}
	if res.Attempts != 0 {
		t.Errorf("expected 0 attempts, got %d", res.Attempts)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "No providers available") {
		t.Errorf("unexpected diagnostics %v", res.Errors)
	}
}

func TestGenerateFirstProviderWins(t *testing.T) {
	a := provider.NewMockProvider("groq")
	b := provider.NewMockProvider("deepseek")
	r, _ := newTestRouter([]string{"groq", "deepseek"}, a, b)

	res := r.Generate(context.Background(), "write copy", Options{})
	if !res.Success {
		t.Fatalf("expected success, got errors %v", res.Errors)
	}
	if res.ProviderUsed != "groq" || res.Attempts != 1 {
		t.Errorf("expected groq in 1 attempt, got %s in %d", res.ProviderUsed, res.Attempts)
	}
	if b.Calls() != 0 {
		t.Errorf("fallback provider should not be contacted, got %d calls", b.Calls())
	}
}

func TestGenerateFallsBackOnFailure(t *testing.T) {
	a := provider.NewMockProvider("groq")
	a.Queue(provider.GenerationResult{ErrorMessage: "upstream exploded"})
	b := provider.NewMockProvider("deepseek")
	r, _ := newTestRouter([]string{"groq", "deepseek"}, a, b)

	res := r.Generate(context.Background(), "write copy", Options{})
	if !res.Success {
		t.Fatalf("expected fallback success, got errors %v", res.Errors)
	}
	if res.ProviderUsed != "deepseek" {
		t.Errorf("expected deepseek, got %s", res.ProviderUsed)
	}
	if res.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", res.Attempts)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "groq: upstream exploded") {
		t.Errorf("unexpected diagnostics %v", res.Errors)
	}
}

func TestGeneratePreferredProviderFirst(t *testing.T) {
	a := provider.NewMockProvider("groq")
	b := provider.NewMockProvider("deepseek")
	r, _ := newTestRouter([]string{"groq", "deepseek"}, a, b)

	res := r.Generate(context.Background(), "write copy", Options{PreferredProvider: "deepseek"})
	if res.ProviderUsed != "deepseek" || res.Attempts != 1 {
		t.Errorf("expected deepseek in 1 attempt, got %s in %d", res.ProviderUsed, res.Attempts)
	}
	if a.Calls() != 0 {
		t.Errorf("priority provider should be bypassed, got %d calls", a.Calls())
	}
}

func TestGenerateSkipsRateLimitedProvider(t *testing.T) {
	a := provider.NewMockProvider("groq")
	b := provider.NewMockProvider("deepseek")
	r, _ := newTestRouter([]string{"groq", "deepseek"}, a, b)

	r.limiter.SetRateLimited("groq", time.Minute)

	res := r.Generate(context.Background(), "write copy", Options{})
	if res.ProviderUsed != "deepseek" || res.Attempts != 1 {
		t.Errorf("expected deepseek in 1 attempt, got %s in %d", res.ProviderUsed, res.Attempts)
	}
	if a.Calls() != 0 {
		t.Errorf("rate-limited provider should not be contacted, got %d calls", a.Calls())
	}
}

func TestGeneratePreferredButRateLimitedIsSkippedWithoutAttempt(t *testing.T) {
	a := provider.NewMockProvider("groq")
	b := provider.NewMockProvider("deepseek")
	r, _ := newTestRouter([]string{"groq", "deepseek"}, a, b)

	// The adapter itself is fine; only the local limiter window is shut.
	r.limiter.SetRateLimited("groq", time.Minute)

	res := r.Generate(context.Background(), "write copy", Options{PreferredProvider: "groq"})
	if !res.Success || res.ProviderUsed != "deepseek" {
		t.Fatalf("expected deepseek fallback, got %+v", res)
	}
	if res.Attempts != 1 {
		t.Errorf("skip must not count as an attempt, got %d", res.Attempts)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "groq: Rate limited, wait 60s") {
		t.Errorf("unexpected diagnostics %v", res.Errors)
	}
}

func TestGenerateRetryCeiling(t *testing.T) {
	failed := provider.GenerationResult{ErrorMessage: "nope"}
	a := provider.NewMockProvider("groq")
	a.Queue(failed)
	b := provider.NewMockProvider("deepseek")
	b.Queue(failed)
	c := provider.NewMockProvider("openrouter")
	c.Queue(failed)
	r, _ := newTestRouter([]string{"groq", "deepseek", "openrouter"}, a, b, c)

	res := r.Generate(context.Background(), "write copy", Options{MaxRetries: 2})
	if res.Success {
		t.Fatal("expected total failure")
	}
	if res.Attempts != 2 {
		t.Errorf("expected attempts capped at 2, got %d", res.Attempts)
	}
	if c.Calls() != 0 {
		t.Errorf("third provider should never be contacted, got %d calls", c.Calls())
	}
	if len(res.Errors) != 2 {
		t.Errorf("expected one diagnostic per attempt, got %v", res.Errors)
	}
}

func TestGenerateRateLimitHeuristic(t *testing.T) {
	a := provider.NewMockProvider("groq")
	a.Queue(provider.GenerationResult{ErrorMessage: "Rate limit exceeded, slow down"})
	b := provider.NewMockProvider("deepseek")
	r, _ := newTestRouter([]string{"groq", "deepseek"}, a, b)

	res := r.Generate(context.Background(), "write copy", Options{})
	if !res.Success || res.ProviderUsed != "deepseek" {
		t.Fatalf("expected deepseek fallback, got %+v", res)
	}
	if a.Status() != provider.StatusRateLimited {
		t.Errorf("adapter should be marked rate-limited, got %s", a.Status())
	}
	if !r.limiter.IsRateLimited("groq") {
		t.Error("limiter should close the window on a rate-limit error message")
	}
}

// throttledProvider records an upstream reset time during Generate and
// then fails with a rate-limit message, like an adapter that saw a 429
// with Retry-After.
type throttledProvider struct {
	*provider.State
	name    string
	resetAt time.Time
}

func (p *throttledProvider) Name() string         { return p.name }
func (p *throttledProvider) Models() []string     { return []string{"slow-model"} }
func (p *throttledProvider) DefaultModel() string { return "slow-model" }

func (p *throttledProvider) Generate(ctx context.Context, req provider.GenerationRequest) provider.GenerationResult {
	p.SetRateLimited(p.resetAt)
	return provider.GenerationResult{ErrorMessage: "Rate limit exceeded, retry later"}
}

func (p *throttledProvider) GenerateStream(ctx context.Context, req provider.GenerationRequest) <-chan string {
	out := make(chan string)
	close(out)
	return out
}

func (p *throttledProvider) CheckAvailability(ctx context.Context) bool { return true }

func TestGenerateRateLimitHeuristicUsesAdapterReset(t *testing.T) {
	p := &throttledProvider{State: provider.NewState(true), name: "groq"}
	r, fc := newTestRouter([]string{"groq"}, p)
	p.resetAt = fc.now().Add(90 * time.Second)

	res := r.Generate(context.Background(), "write copy", Options{})
	if res.Success {
		t.Fatal("expected failure from a throttled adapter")
	}
	if got := p.RateLimitReset(); !got.Equal(p.resetAt) {
		t.Fatalf("adapter reset time not recorded, got %v", got)
	}
	if got := r.limiter.TimeUntilAvailable("groq"); got != 90*time.Second {
		t.Errorf("limiter window should match the adapter's reset time, got %v", got)
	}
}

func TestGenerateSlotReleasedOnPanic(t *testing.T) {
	p := newPanicProvider("groq")
	r, _ := newTestRouter([]string{"groq"}, p)

	res := r.Generate(context.Background(), "write copy", Options{})
	if res.Success {
		t.Fatal("expected failure from a panicking adapter")
	}
	if res.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", res.Attempts)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "kaboom") {
		t.Errorf("unexpected diagnostics %v", res.Errors)
	}
	if got := r.limiter.Inflight("groq"); got != 0 {
		t.Errorf("slot leaked after panic, inflight=%d", got)
	}
	if p.Status() != provider.StatusError {
		t.Errorf("adapter should be marked errored, got %s", p.Status())
	}
}

func TestGenerateRecordsUsage(t *testing.T) {
	a := provider.NewMockProvider("groq")
	a.Queue(provider.GenerationResult{Success: true, Content: "headline", TokensUsed: 42})
	r, _ := newTestRouter([]string{"groq"}, a)

	res := r.Generate(context.Background(), "write copy", Options{})
	if !res.Success || res.TokensUsed != 42 {
		t.Fatalf("unexpected result %+v", res)
	}

	usage := r.UsageStats()
	if u := usage["groq"]; u.Requests != 1 || u.Tokens != 42 {
		t.Errorf("usage not recorded, got %+v", u)
	}
}

func TestGenerateStreamForwardsChunks(t *testing.T) {
	a := provider.NewMockProvider("groq")
	a.QueueChunks("Buy ", "this ", "thing")
	r, _ := newTestRouter([]string{"groq"}, a)

	var got []string
	for chunk := range r.GenerateStream(context.Background(), "write copy", Options{}) {
		got = append(got, chunk)
	}
	if strings.Join(got, "") != "Buy this thing" {
		t.Errorf("unexpected stream %q", got)
	}
	if inflight := r.limiter.Inflight("groq"); inflight != 0 {
		t.Errorf("stream did not release its slot, inflight=%d", inflight)
	}
}

func TestGenerateStreamNoProviders(t *testing.T) {
	r, _ := newTestRouter(nil)

	var got []string
	for chunk := range r.GenerateStream(context.Background(), "write copy", Options{}) {
		got = append(got, chunk)
	}
	if len(got) != 1 || got[0] != "[Error: No providers available]" {
		t.Errorf("expected a single error marker, got %q", got)
	}
}

func TestResetProvider(t *testing.T) {
	a := provider.NewMockProvider("groq")
	r, _ := newTestRouter([]string{"groq"}, a)

	a.SetError("upstream exploded")
	r.limiter.SetRateLimited("groq", time.Hour)

	if !r.ResetProvider("groq") {
		t.Fatal("expected reset to succeed")
	}
	if !a.Available() || a.LastError() != "" {
		t.Error("adapter status should be restored")
	}
	if r.limiter.IsRateLimited("groq") {
		t.Error("limiter budgets should be replenished")
	}
	if r.ResetProvider("missing") {
		t.Error("unknown provider must report false")
	}
}

func TestHealthCheck(t *testing.T) {
	a := provider.NewMockProvider("groq")
	b := provider.NewMockProvider("deepseek")
	b.SetReachable(false)
	r, _ := newTestRouter([]string{"groq", "deepseek"}, a, b)

	got := r.HealthCheck(context.Background())
	if !got["groq"] || got["deepseek"] {
		t.Errorf("unexpected health map %v", got)
	}
}
