package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

const probeTimeout = 10 * time.Second

// ChatClient implements the OpenAI-compatible chat-completions wire
// format shared by every upstream this package talks to. Concrete
// adapters customize it with extra headers, payload fields, and the
// provider-specific retry-after signal.
type ChatClient struct {
	Config Config

	// ExtraHeaders are added to every request (e.g. OpenRouter's
	// HTTP-Referer attribution headers).
	ExtraHeaders map[string]string

	// ExtraFields are merged into every request payload.
	ExtraFields map[string]interface{}

	// RetryAfter extracts the rate-limit reset delay from a 429
	// response. Returning 0 means the upstream gave no signal.
	RetryAfter func(resp *http.Response, body []byte) time.Duration

	// FailureMessage maps a non-2xx, non-429 response to a
	// human-readable error. Nil uses the default extraction.
	FailureMessage func(status int, body []byte) string

	http  *http.Client
	probe *http.Client
	now   func() time.Time
}

// NewChatClient builds a client for one upstream endpoint.
func NewChatClient(cfg Config) *ChatClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	return &ChatClient{
		Config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		probe:  &http.Client{Timeout: probeTimeout},
		now:    time.Now,
	}
}

// RetryAfterHeader reads the standard Retry-After header in seconds.
// This is the default 429 signal for Groq and DeepSeek.
func RetryAfterHeader(resp *http.Response, _ []byte) time.Duration {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func (c *ChatClient) resolveModel(req GenerationRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return c.Config.DefaultModel
}

func (c *ChatClient) buildPayload(req GenerationRequest, stream bool) ([]byte, error) {
	messages := make([]map[string]string, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Prompt})

	temperature := c.Config.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := c.Config.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	payload := map[string]interface{}{
		"model":       c.resolveModel(req),
		"messages":    messages,
		"temperature": temperature,
		"max_tokens":  maxTokens,
		"top_p":       0.95,
		"stream":      stream,
	}
	for k, v := range c.ExtraFields {
		payload[k] = v
	}
	return json.Marshal(payload)
}

func (c *ChatClient) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Config.APIKey)
	for k, v := range c.ExtraHeaders {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (c *ChatClient) failure(model, msg string, headers http.Header) GenerationResult {
	return GenerationResult{
		Provider:     c.Config.Name,
		Model:        model,
		ErrorMessage: msg,
		Headers:      headers,
	}
}

func (c *ChatClient) failureMessage(status int, body []byte) string {
	if c.FailureMessage != nil {
		if msg := c.FailureMessage(status, body); msg != "" {
			return msg
		}
	}
	if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP error: %d", status)
}

// Complete issues one non-streaming chat-completion request. A 429
// marks the state rate-limited; every failure mode comes back as an
// unsuccessful result, never an error.
func (c *ChatClient) Complete(ctx context.Context, state *State, req GenerationRequest) GenerationResult {
	model := c.resolveModel(req)
	if c.Config.APIKey == "" {
		return c.failure("", "API key not configured", nil)
	}

	body, err := c.buildPayload(req, false)
	if err != nil {
		return c.failure(model, fmt.Sprintf("Error: %v", err), nil)
	}
	httpReq, err := c.newRequest(ctx, body)
	if err != nil {
		return c.failure(model, fmt.Sprintf("Error: %v", err), nil)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		state.SetError(err.Error())
		return c.failure(model, fmt.Sprintf("Error: %v", err), nil)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		state.SetError(err.Error())
		return c.failure(model, fmt.Sprintf("Error: %v", err), resp.Header)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		var resetAt time.Time
		if c.RetryAfter != nil {
			if d := c.RetryAfter(resp, respBody); d > 0 {
				resetAt = c.now().Add(d)
			}
		}
		state.SetRateLimited(resetAt)
		return c.failure(model, "Rate limit exceeded", resp.Header)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := c.failureMessage(resp.StatusCode, respBody)
		state.SetError(msg)
		return c.failure(model, msg, resp.Header)
	}

	content := gjson.GetBytes(respBody, "choices.0.message.content")
	if !content.Exists() {
		return c.failure(model, "No content in response", resp.Header)
	}

	return GenerationResult{
		Success:    true,
		Content:    content.String(),
		Provider:   c.Config.Name,
		Model:      model,
		TokensUsed: int(gjson.GetBytes(respBody, "usage.total_tokens").Int()),
		Headers:    resp.Header,
	}
}

// Stream issues one streaming chat-completion request and decodes the
// newline-delimited "data: " fragments until the [DONE] sentinel. Any
// failure yields a single error-marker chunk; the channel is closed
// when the upstream completes or faults.
func (c *ChatClient) Stream(ctx context.Context, state *State, req GenerationRequest) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		if c.Config.APIKey == "" {
			c.emit(ctx, out, "[Error: API key not configured]")
			return
		}

		body, err := c.buildPayload(req, true)
		if err != nil {
			c.emit(ctx, out, fmt.Sprintf("[Error: %v]", err))
			return
		}
		httpReq, err := c.newRequest(ctx, body)
		if err != nil {
			c.emit(ctx, out, fmt.Sprintf("[Error: %v]", err))
			return
		}

		resp, err := c.http.Do(httpReq)
		if err != nil {
			c.emit(ctx, out, fmt.Sprintf("[Error: %v]", err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			state.SetRateLimited(time.Time{})
			c.emit(ctx, out, "[Rate limit exceeded]")
			return
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
			c.emit(ctx, out, fmt.Sprintf("[Error: %s]", c.failureMessage(resp.StatusCode, respBody)))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1<<20)
		for scanner.Scan() {
			line := scanner.Text()
			if len(line) < 6 || line[:6] != "data: " {
				continue
			}
			data := line[6:]
			if data == "[DONE]" {
				return
			}
			delta := gjson.Get(data, "choices.0.delta.content")
			if !delta.Exists() {
				continue
			}
			if !c.emit(ctx, out, delta.String()) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			c.emit(ctx, out, fmt.Sprintf("[Error: %v]", err))
		}
	}()

	return out
}

// emit sends a chunk unless the caller went away.
func (c *ChatClient) emit(ctx context.Context, out chan<- string, chunk string) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// Probe performs a cheap authenticated GET against the given path.
// Any failure, including transport errors, reads as unavailable.
func (c *ChatClient) Probe(ctx context.Context, path string) bool {
	if c.Config.APIKey == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Config.BaseURL+path, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.Config.APIKey)

	resp, err := c.probe.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
