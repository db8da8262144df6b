package router

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/copyspell/copyspell/pkg/provider"
)

// DefaultMaxRetries bounds how many providers one routed call tries.
const DefaultMaxRetries = 3

// Options tunes a single routed generation call. Zero values use the
// provider defaults and the standard retry ceiling.
type Options struct {
	SystemPrompt      string
	PreferredProvider string
	Model             string
	Temperature       *float64
	MaxTokens         int
	MaxRetries        int
}

// Result is the immutable outcome of one routed call.
type Result struct {
	Success      bool     `json:"success"`
	Content      string   `json:"content"`
	ProviderUsed string   `json:"provider_used"`
	ModelUsed    string   `json:"model_used"`
	TokensUsed   int      `json:"tokens_used"`
	Attempts     int      `json:"attempts"`
	Errors       []string `json:"errors"`
}

// ProviderStatus is the reportable state of one configured adapter.
type ProviderStatus struct {
	Configured bool     `json:"configured"`
	Available  bool     `json:"available"`
	Status     string   `json:"status"`
	LastError  string   `json:"last_error,omitempty"`
	Models     []string `json:"models"`
}

// Router orchestrates provider selection, admission control, fallback,
// and usage bookkeeping. It holds no per-call state; the shared maps
// (limiter, quota, adapter status) are safe for concurrent callers.
type Router struct {
	providers map[string]provider.Provider
	priority  []string
	limiter   *RateLimiter
	quota     *QuotaManager
}

// New builds a router over the given adapters. priority is the
// configured fallback order; providers missing from it sort last by
// name.
func New(priority []string, providers ...provider.Provider) *Router {
	byName := make(map[string]provider.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Router{
		providers: byName,
		priority:  priority,
		limiter:   NewRateLimiter(),
		quota:     NewQuotaManager(),
	}
}

// Limiter exposes the shared rate limiter, mainly for tests and
// status reporting.
func (r *Router) Limiter() *RateLimiter { return r.limiter }

// Providers lists the configured provider names.
func (r *Router) Providers() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// readyProviders returns providers that are configured, available, and
// not rate-limited, in configured-priority order.
func (r *Router) readyProviders() []string {
	ready := make(map[string]bool)
	for name, p := range r.providers {
		if p.Available() && !r.limiter.IsRateLimited(name) {
			ready[name] = true
		}
	}

	ordered := make([]string, 0, len(ready))
	for _, name := range r.priority {
		if ready[name] {
			ordered = append(ordered, name)
			delete(ready, name)
		}
	}
	rest := make([]string, 0, len(ready))
	for name := range ready {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

// candidateOrder builds the attempt order for one call: the preferred
// provider first when it is usable, then the ready list de-duplicated.
func (r *Router) candidateOrder(preferred string) []string {
	ready := r.readyProviders()
	if preferred == "" {
		return ready
	}
	p, ok := r.providers[preferred]
	if !ok || !p.Available() {
		return ready
	}

	order := []string{preferred}
	for _, name := range ready {
		if name != preferred {
			order = append(order, name)
		}
	}
	return order
}

// Generate routes one generation call with automatic fallback across
// providers. It always returns a well-formed result; total failure is
// reported through the success flag and the diagnostics list.
func (r *Router) Generate(ctx context.Context, prompt string, opts Options) Result {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	var errs []string
	attempts := 0

	order := r.candidateOrder(opts.PreferredProvider)
	if len(order) == 0 {
		return Result{
			Attempts: 0,
			Errors:   []string{"No providers available. Please configure at least one API key."},
		}
	}

	for _, name := range order {
		if attempts >= maxRetries {
			break
		}
		p := r.providers[name]

		// Skip (without burning an attempt) anything that went
		// rate-limited since the order was computed.
		if r.limiter.IsRateLimited(name) {
			if wait := r.limiter.TimeUntilAvailable(name); wait > 0 {
				errs = append(errs, fmt.Sprintf("%s: Rate limited, wait %.0fs", name, wait.Seconds()))
				GenerateTotal.WithLabelValues(name, "skipped").Inc()
				continue
			}
		}

		if err := r.limiter.Acquire(ctx, name); err != nil {
			if ctx.Err() != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
				return Result{Attempts: attempts, Errors: errs}
			}
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			p.SetError(err.Error())
			GenerateTotal.WithLabelValues(name, "failure").Inc()
			continue
		}

		attempts++
		res := r.attempt(ctx, name, p, prompt, opts)
		r.limiter.UpdateFromHeaders(name, res.Headers)

		if res.Success {
			r.quota.RecordUsage(name, res.TokensUsed)
			GenerateTotal.WithLabelValues(name, "success").Inc()
			TokensTotal.WithLabelValues(name).Add(float64(res.TokensUsed))
			if len(errs) > 0 {
				FallbackTotal.Inc()
			}
			return Result{
				Success:      true,
				Content:      res.Content,
				ProviderUsed: name,
				ModelUsed:    res.Model,
				TokensUsed:   res.TokensUsed,
				Attempts:     attempts,
				Errors:       errs,
			}
		}

		msg := res.ErrorMessage
		if msg == "" {
			msg = "Unknown error"
		}
		errs = append(errs, fmt.Sprintf("%s: %s", name, msg))
		GenerateTotal.WithLabelValues(name, "failure").Inc()

		// Heuristic: upstream error text is the only rate-limit signal
		// some providers give outside the 429 path. Substring matching
		// is brittle but matches what those providers actually send.
		if strings.Contains(strings.ToLower(msg), "rate limit") {
			resetAt := p.RateLimitReset()
			if resetAt.IsZero() {
				p.SetRateLimited(time.Time{})
			}
			var after time.Duration
			if !resetAt.IsZero() {
				after = resetAt.Sub(r.limiter.clk.now())
			}
			r.limiter.SetRateLimited(name, after)
			ProviderRateLimited.WithLabelValues(name).Set(1)
		}
	}

	return Result{Attempts: attempts, Errors: errs}
}

// attempt invokes one adapter with the slot guaranteed to be released
// and panics converted into ordinary failure results.
func (r *Router) attempt(ctx context.Context, name string, p provider.Provider, prompt string, opts Options) (res provider.GenerationResult) {
	defer r.limiter.Release(name)
	defer func() {
		if rec := recover(); rec != nil {
			fmt.Printf(`{"level":"error","msg":"provider_panic","provider":"%s","error":"%v"}`+"\n", name, rec)
			p.SetError(fmt.Sprintf("%v", rec))
			res = provider.GenerationResult{
				Provider:     name,
				ErrorMessage: fmt.Sprintf("%v", rec),
			}
		}
	}()

	return p.Generate(ctx, provider.GenerationRequest{
		Prompt:       prompt,
		SystemPrompt: opts.SystemPrompt,
		Model:        opts.Model,
		Temperature:  opts.Temperature,
		MaxTokens:    opts.MaxTokens,
	})
}

// GenerateStream routes a streaming call to a single provider. There
// is no mid-stream fallback: restarting on another provider would
// silently discard output the caller already displayed, so a failure
// surfaces as one error-marker chunk instead.
func (r *Router) GenerateStream(ctx context.Context, prompt string, opts Options) <-chan string {
	out := make(chan string)

	name := ""
	if p, ok := r.providers[opts.PreferredProvider]; ok && p.Available() {
		name = opts.PreferredProvider
	} else if ready := r.readyProviders(); len(ready) > 0 {
		name = ready[0]
	}

	if name == "" {
		go func() {
			defer close(out)
			select {
			case out <- "[Error: No providers available]":
			case <-ctx.Done():
			}
		}()
		return out
	}

	p := r.providers[name]
	go func() {
		defer close(out)

		if err := r.limiter.Acquire(ctx, name); err != nil {
			select {
			case out <- fmt.Sprintf("[Error: %v]", err):
			case <-ctx.Done():
			}
			return
		}
		defer r.limiter.Release(name)

		for chunk := range p.GenerateStream(ctx, provider.GenerationRequest{
			Prompt:       prompt,
			SystemPrompt: opts.SystemPrompt,
			Model:        opts.Model,
			Temperature:  opts.Temperature,
			MaxTokens:    opts.MaxTokens,
		}) {
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Status reports every configured provider's state.
func (r *Router) Status() map[string]ProviderStatus {
	out := make(map[string]ProviderStatus, len(r.providers))
	for name, p := range r.providers {
		out[name] = ProviderStatus{
			Configured: p.Configured(),
			Available:  p.Available(),
			Status:     string(p.Status()),
			LastError:  p.LastError(),
			Models:     p.Models(),
		}
	}
	return out
}

// UsageStats snapshots the rolling-day ledger.
func (r *Router) UsageStats() map[string]Usage {
	return r.quota.AllUsage()
}

// ResetProvider restores a provider's adapter status and replenishes
// its limiter budgets.
func (r *Router) ResetProvider(name string) bool {
	p, ok := r.providers[name]
	if !ok {
		return false
	}
	p.ResetStatus()
	r.limiter.Reset(name)
	ProviderRateLimited.WithLabelValues(name).Set(0)
	return true
}

// HealthCheck probes every configured provider concurrently.
func (r *Router) HealthCheck(ctx context.Context) map[string]bool {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]bool, len(r.providers))
	)
	for name, p := range r.providers {
		wg.Add(1)
		go func(name string, p provider.Provider) {
			defer wg.Done()
			ok := p.CheckAvailability(ctx)
			mu.Lock()
			results[name] = ok
			mu.Unlock()
		}(name, p)
	}
	wg.Wait()
	return results
}
