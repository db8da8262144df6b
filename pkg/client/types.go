package client

import "time"

// GenerateRequest mirrors the daemon's generation payload. IDs refer
// to the daemon's option catalogs; Custom fields override them with
// free text.
type GenerateRequest struct {
	Keywords          string `json:"keywords"`
	ContentType       string `json:"content_type,omitempty"`
	Framework         string `json:"framework,omitempty"`
	Audience          string `json:"audience,omitempty"`
	Tone              string `json:"tone,omitempty"`
	AdditionalContext string `json:"additional_context,omitempty"`
	Provider          string `json:"provider,omitempty"`
	Model             string `json:"model,omitempty"`
	WordCount         string `json:"word_count,omitempty"`

	CustomAudience    string `json:"custom_audience,omitempty"`
	CustomTone        string `json:"custom_tone,omitempty"`
	CustomContentType string `json:"custom_content_type,omitempty"`
	CustomFramework   string `json:"custom_framework,omitempty"`
}

// GenerateResult is the daemon's generation response.
type GenerateResult struct {
	Success  bool     `json:"success"`
	Content  string   `json:"content"`
	Provider string   `json:"provider"`
	Model    string   `json:"model"`
	Tokens   int      `json:"tokens"`
	Attempts int      `json:"attempts"`
	Errors   []string `json:"errors,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// ProviderStatus is one provider's reported state.
type ProviderStatus struct {
	Configured bool     `json:"configured"`
	Available  bool     `json:"available"`
	Status     string   `json:"status"`
	LastError  string   `json:"last_error,omitempty"`
	Models     []string `json:"models"`
}

// Usage is one provider's rolling-day consumption.
type Usage struct {
	Requests int64 `json:"requests"`
	Tokens   int64 `json:"tokens"`
}

// HistoryEntry is one archived generation run.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"timestamp"`
	Keywords    string    `json:"keywords"`
	ContentType string    `json:"content_type"`
	Framework   string    `json:"framework"`
	Audience    string    `json:"audience"`
	Tone        string    `json:"tone"`
	Content     string    `json:"content,omitempty"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model,omitempty"`
	Success     bool      `json:"success"`
	Tokens      int       `json:"tokens"`
}

// Option is one selectable catalog entry.
type Option struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	BestFor     string `json:"best_for,omitempty"`
}

// OptionSet is the daemon's form-catalog payload.
type OptionSet struct {
	Audiences    []Option `json:"audiences"`
	Tones        []Option `json:"tones"`
	ContentTypes []Option `json:"content_types"`
	Frameworks   []Option `json:"frameworks"`
	WordCounts   []string `json:"word_counts"`
	Providers    []string `json:"providers"`
}

// Health reports daemon liveness and upstream reachability.
type Health struct {
	Status    string          `json:"status"`
	Providers map[string]bool `json:"providers"`
}
