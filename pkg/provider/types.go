package provider

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Status is the lifecycle state of a provider adapter.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusRateLimited Status = "rate_limited"
	StatusError       Status = "error"
	StatusDisabled    Status = "disabled"
)

// GenerationRequest carries the inputs for a single generation call.
// Zero values fall back to the provider's configured defaults.
type GenerationRequest struct {
	Prompt       string
	SystemPrompt string
	Model        string
	Temperature  *float64
	MaxTokens    int
}

// GenerationResult is the outcome of one non-streaming generation attempt.
// Adapters report failures through it instead of returning errors; the
// router decides whether to fall back.
type GenerationResult struct {
	Success      bool
	Content      string
	Provider     string
	Model        string
	TokensUsed   int
	ErrorMessage string

	// Headers from the upstream response, when one was received.
	// Used to harvest x-ratelimit-* quota metadata.
	Headers http.Header
}

// Config holds the static configuration of one provider adapter.
type Config struct {
	Name         string
	APIKey       string
	BaseURL      string
	DefaultModel string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
}

// Provider is the uniform contract every upstream text-generation
// service is wrapped behind. Adapters never retry internally and never
// panic for ordinary failure modes.
type Provider interface {
	// Name returns the stable provider identifier (e.g. "groq").
	Name() string

	// Models lists the supported model identifiers, default first.
	Models() []string

	// DefaultModel returns the model used when none is requested.
	DefaultModel() string

	// Configured reports whether a credential is present.
	Configured() bool

	// Generate issues one non-streaming request.
	Generate(ctx context.Context, req GenerationRequest) GenerationResult

	// GenerateStream issues one streaming request and returns a finite
	// sequence of text fragments. A failure surfaces as a single
	// "[Error: ...]" marker chunk; the channel is always closed.
	GenerateStream(ctx context.Context, req GenerationRequest) <-chan string

	// CheckAvailability probes the upstream service with a short
	// timeout. It never returns an error; any failure reads as false.
	CheckAvailability(ctx context.Context) bool

	// Available reports whether the adapter can be used right now.
	// A rate-limited adapter transitions back to available once its
	// recorded reset time has passed.
	Available() bool

	Status() Status
	LastError() string
	RateLimitReset() time.Time
	SetRateLimited(resetAt time.Time)
	SetError(msg string)
	ResetStatus()
}

// State tracks the mutable status of an adapter. Concrete providers
// embed it to satisfy the status half of the Provider interface.
type State struct {
	mu             sync.Mutex
	configured     bool
	status         Status
	lastError      string
	rateLimitReset time.Time
	now            func() time.Time
}

// NewState returns a State that is available when a credential exists
// and disabled otherwise.
func NewState(configured bool) *State {
	st := StatusDisabled
	if configured {
		st = StatusAvailable
	}
	return &State{
		configured: configured,
		status:     st,
		now:        time.Now,
	}
}

func (s *State) Configured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configured
}

// Available reports whether the provider can be used. Reading it may
// transition RateLimited back to Available once the reset time passes.
func (s *State) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configured || s.status == StatusDisabled {
		return false
	}
	if s.status == StatusRateLimited {
		if !s.rateLimitReset.IsZero() && s.now().Before(s.rateLimitReset) {
			return false
		}
		s.status = StatusAvailable
	}
	return s.status == StatusAvailable
}

func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *State) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// RateLimitReset returns the recorded reset time, zero when unset.
func (s *State) RateLimitReset() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rateLimitReset
}

// SetRateLimited marks the provider rate-limited. A zero resetAt means
// the upstream gave no retry-after signal.
func (s *State) SetRateLimited(resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusRateLimited
	s.rateLimitReset = resetAt
}

func (s *State) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusError
	s.lastError = msg
}

// ResetStatus restores Available (or Disabled without a credential) and
// clears the last error and reset time.
func (s *State) ResetStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configured {
		s.status = StatusAvailable
	} else {
		s.status = StatusDisabled
	}
	s.lastError = ""
	s.rateLimitReset = time.Time{}
}
