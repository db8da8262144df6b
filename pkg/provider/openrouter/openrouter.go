package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/copyspell/copyspell/pkg/provider"
)

const apiBase = "https://openrouter.ai/api/v1"

var defaultModels = []string{
	"anthropic/claude-3.5-sonnet",
	"anthropic/claude-3-haiku",
	"meta-llama/llama-3.3-70b-instruct",
	"google/gemini-pro-1.5",
	"mistralai/mistral-7b-instruct",
}

// Provider adapts the OpenRouter chat-completions API. OpenRouter puts
// the 429 retry-after signal inside the error JSON metadata rather
// than a header, and reports exhausted prepaid credit as HTTP 402.
type Provider struct {
	*provider.State
	client *provider.ChatClient
}

// New creates the adapter. baseURL is overridable for tests; empty
// selects the public endpoint.
func New(apiKey string, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = apiBase
	}
	client := provider.NewChatClient(provider.Config{
		Name:         "openrouter",
		APIKey:       apiKey,
		BaseURL:      baseURL,
		DefaultModel: defaultModels[0],
	})
	client.ExtraHeaders = map[string]string{
		"HTTP-Referer": "https://copyspell-ai.app",
		"X-Title":      "CopySpell AI",
	}
	// middle-out keeps long prompts inside the model context window.
	client.ExtraFields = map[string]interface{}{
		"transforms": []string{"middle-out"},
	}
	client.RetryAfter = retryAfterMetadata
	client.FailureMessage = failureMessage

	return &Provider{
		State:  provider.NewState(apiKey != ""),
		client: client,
	}
}

// retryAfterMetadata reads error.metadata.retry_after (seconds) from
// the 429 response body.
func retryAfterMetadata(_ *http.Response, body []byte) time.Duration {
	secs := gjson.GetBytes(body, "error.metadata.retry_after").Float()
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func failureMessage(status int, body []byte) string {
	msg := gjson.GetBytes(body, "error.message").String()
	if status == http.StatusPaymentRequired {
		if msg == "" {
			msg = "Insufficient credits"
		}
		return msg
	}
	if msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP error: %d", status)
}

func (p *Provider) Name() string         { return "openrouter" }
func (p *Provider) Models() []string     { return defaultModels }
func (p *Provider) DefaultModel() string { return defaultModels[0] }

func (p *Provider) Generate(ctx context.Context, req provider.GenerationRequest) provider.GenerationResult {
	return p.client.Complete(ctx, p.State, req)
}

func (p *Provider) GenerateStream(ctx context.Context, req provider.GenerationRequest) <-chan string {
	return p.client.Stream(ctx, p.State, req)
}

// CheckAvailability probes the key-info endpoint, which is free and
// validates the credential in one call.
func (p *Provider) CheckAvailability(ctx context.Context) bool {
	return p.client.Probe(ctx, "/auth/key")
}
