package groq

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/copyspell/copyspell/pkg/provider"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"choices": [{"message": {"content": "fast copy"}}],
			"usage": {"total_tokens": 57}
		}`)
	}))
	defer srv.Close()

	p := New("key", srv.URL)
	res := p.Generate(context.Background(), provider.GenerationRequest{Prompt: "x"})

	if !res.Success || res.Content != "fast copy" || res.TokensUsed != 57 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Provider != "groq" {
		t.Errorf("expected provider groq, got %q", res.Provider)
	}
	if res.Model != "llama-3.3-70b-versatile" {
		t.Errorf("expected default model, got %q", res.Model)
	}
}

func TestRetryAfterHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := New("key", srv.URL)
	res := p.Generate(context.Background(), provider.GenerationRequest{Prompt: "x"})

	if res.Success || res.ErrorMessage != "Rate limit exceeded" {
		t.Errorf("unexpected result %+v", res)
	}
	if p.Status() != provider.StatusRateLimited {
		t.Errorf("expected rate_limited, got %s", p.Status())
	}
	if p.RateLimitReset().IsZero() {
		t.Error("Retry-After header should set a reset time")
	}
}

func TestCheckAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer srv.Close()

	if p := New("key", srv.URL); !p.CheckAvailability(context.Background()) {
		t.Error("expected availability probe to succeed")
	}
}
