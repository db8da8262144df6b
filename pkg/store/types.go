package store

import "time"

// Generation is one archived generation run. Failed runs are stored
// too, with an empty Content and Success false, so the history view
// can show what was tried.
type Generation struct {
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
