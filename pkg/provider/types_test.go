package provider

import (
	"testing"
	"time"
)

func TestStateDisabledWithoutCredential(t *testing.T) {
	s := NewState(false)

	if s.Available() {
		t.Error("unconfigured state should not be available")
	}
	if s.Status() != StatusDisabled {
		t.Errorf("expected disabled, got %s", s.Status())
	}

	// Reset must not revive an unconfigured provider.
	s.ResetStatus()
	if s.Status() != StatusDisabled {
		t.Errorf("reset of unconfigured state should stay disabled, got %s", s.Status())
	}
}

func TestStateRateLimitAutoRecovery(t *testing.T) {
	s := NewState(true)

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.SetRateLimited(current.Add(30 * time.Second))
	if s.Available() {
		t.Error("should be unavailable while reset time is in the future")
	}
	if s.Status() != StatusRateLimited {
		t.Errorf("expected rate_limited, got %s", s.Status())
	}

	current = current.Add(31 * time.Second)
	if !s.Available() {
		t.Error("should auto-recover once reset time has passed")
	}
	if s.Status() != StatusAvailable {
		t.Errorf("expected available after recovery, got %s", s.Status())
	}
}

func TestStateRateLimitWithoutResetTime(t *testing.T) {
	s := NewState(true)
	s.SetRateLimited(time.Time{})

	// No reset time recorded: the next availability read recovers.
	if !s.Available() {
		t.Error("rate limit without reset time should recover immediately")
	}
}

func TestStateErrorAndReset(t *testing.T) {
	s := NewState(true)
	s.SetError("HTTP error: 500")

	if s.Status() != StatusError {
		t.Errorf("expected error status, got %s", s.Status())
	}
	if s.LastError() != "HTTP error: 500" {
		t.Errorf("unexpected last error: %q", s.LastError())
	}

	s.ResetStatus()
	if s.Status() != StatusAvailable {
		t.Errorf("expected available after reset, got %s", s.Status())
	}
	if s.LastError() != "" {
		t.Errorf("reset should clear last error, got %q", s.LastError())
	}
	if !s.RateLimitReset().IsZero() {
		t.Error("reset should clear the rate limit reset time")
	}
}
