package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// maxConnectAttempts bounds retries on daemon connection errors.
const maxConnectAttempts = 3

// Client is the copyspell daemon SDK client.
type Client struct {
	endpoint string
	http     *http.Client
	backoff  BackoffStrategy
}

// NewClient creates a new daemon client.
// endpoint defaults to "http://127.0.0.1:8090" if empty.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = "http://127.0.0.1:8090"
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http: &http.Client{
			// Generation calls can legitimately take a while when the
			// daemon walks the fallback chain.
			Timeout: 180 * time.Second,
		},
		backoff: DefaultBackoff(),
	}
}

// Generate runs one generation call. Connection errors are retried
// with backoff; an HTTP error status is final and surfaces through
// the result's Error field.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp *http.Response
	for attempt := 0; ; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/generate", bytes.NewReader(body))
		if err != nil {
			return GenerateResult{}, err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err = c.http.Do(httpReq)
		if err == nil {
			break
		}
		if attempt >= maxConnectAttempts-1 {
			return GenerateResult{}, fmt.Errorf("daemon unreachable: %w", err)
		}
		select {
		case <-time.After(c.backoff.Next(attempt)):
		case <-ctx.Done():
			return GenerateResult{}, ctx.Err()
		}
	}
	defer resp.Body.Close()

	var res GenerateResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return GenerateResult{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && res.Error == "" {
		return GenerateResult{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return res, nil
}

// GenerateStream runs one streaming generation call and yields text
// fragments as they arrive. The channel is always closed; transport
// failures surface as a final "[Error: ...]" chunk.
func (c *Client) GenerateStream(ctx context.Context, req GenerateRequest) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		emit := func(chunk string) bool {
			select {
			case out <- chunk:
				return true
			case <-ctx.Done():
				return false
			}
		}

		body, err := json.Marshal(req)
		if err != nil {
			emit(fmt.Sprintf("[Error: %v]", err))
			return
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/generate/stream", bytes.NewReader(body))
		if err != nil {
			emit(fmt.Sprintf("[Error: %v]", err))
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(httpReq)
		if err != nil {
			emit("[Error: daemon unreachable]")
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			emit(fmt.Sprintf("[Error: unexpected status %d]", resp.StatusCode))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				return
			}
			var chunk string
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if !emit(chunk) {
				return
			}
		}
	}()
	return out
}

// Providers fetches every provider's status.
func (c *Client) Providers(ctx context.Context) (map[string]ProviderStatus, error) {
	var out map[string]ProviderStatus
	if err := c.getJSON(ctx, "/v1/providers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResetProvider restores one provider's status and budgets.
func (c *Client) ResetProvider(ctx context.Context, name string) error {
	body, _ := json.Marshal(map[string]string{"provider": name})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/providers/reset", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("unknown provider: %s", name)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

// Usage fetches the rolling-day usage ledger.
func (c *Client) Usage(ctx context.Context) (map[string]Usage, error) {
	var out map[string]Usage
	if err := c.getJSON(ctx, "/v1/usage", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// History fetches the most recent archived runs, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	path := "/v1/history"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var out []HistoryEntry
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearHistory discards every archived run.
func (c *Client) ClearHistory(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint+"/v1/history", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

// Options fetches the daemon's form catalogs.
func (c *Client) Options(ctx context.Context) (OptionSet, error) {
	var out OptionSet
	if err := c.getJSON(ctx, "/v1/options", &out); err != nil {
		return OptionSet{}, err
	}
	return out, nil
}

// Ping checks daemon health and upstream reachability.
func (c *Client) Ping(ctx context.Context) (Health, error) {
	var out Health
	if err := c.getJSON(ctx, "/v1/health", &out); err != nil {
		return Health{}, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
