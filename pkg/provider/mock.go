package provider

import (
	"context"
	"sync"
)

// MockProvider is a scriptable in-memory provider for tests. Results
// are returned in the order they were queued; once the script runs out
// the last entry repeats.
type MockProvider struct {
	*State

	mu        sync.Mutex
	name      string
	models    []string
	script    []GenerationResult
	calls     int
	chunks    []string
	reachable bool
}

// NewMockProvider creates a configured, available mock.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		State:     NewState(true),
		name:      name,
		models:    []string{"mock-model"},
		reachable: true,
	}
}

// Queue appends a scripted result for the next Generate calls.
func (m *MockProvider) Queue(results ...GenerationResult) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, results...)
	return m
}

// QueueChunks sets the fragments the next GenerateStream call yields.
func (m *MockProvider) QueueChunks(chunks ...string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = chunks
	return m
}

// SetReachable controls what CheckAvailability reports.
func (m *MockProvider) SetReachable(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reachable = ok
}

// Calls reports how many Generate calls were made.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockProvider) Name() string         { return m.name }
func (m *MockProvider) Models() []string     { return m.models }
func (m *MockProvider) DefaultModel() string { return m.models[0] }

func (m *MockProvider) Generate(ctx context.Context, req GenerationRequest) GenerationResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if len(m.script) == 0 {
		return GenerationResult{
			Success:  true,
			Content:  "mock content",
			Provider: m.name,
			Model:    m.models[0],
		}
	}
	res := m.script[0]
	if len(m.script) > 1 {
		m.script = m.script[1:]
	}
	if res.Provider == "" {
		res.Provider = m.name
	}
	if res.Model == "" {
		res.Model = m.models[0]
	}
	return res
}

func (m *MockProvider) GenerateStream(ctx context.Context, req GenerationRequest) <-chan string {
	m.mu.Lock()
	chunks := m.chunks
	m.mu.Unlock()

	out := make(chan string, len(chunks))
	for _, c := range chunks {
		out <- c
	}
	close(out)
	return out
}

func (m *MockProvider) CheckAvailability(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reachable
}
