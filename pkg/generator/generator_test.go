package generator

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/copyspell/copyspell/pkg/provider"
	"github.com/copyspell/copyspell/pkg/router"
	"github.com/copyspell/copyspell/pkg/store"
)

// memHistory is an in-memory HistoryStore for tests.
type memHistory struct {
	mu      sync.Mutex
	entries []store.Generation
}

func (m *memHistory) SaveGeneration(ctx context.Context, g store.Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, g)
	return nil
}

func (m *memHistory) RecentGenerations(ctx context.Context, limit int) ([]store.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]store.Generation(nil), m.entries...)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memHistory) ClearHistory(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func TestGenerateArchivesResult(t *testing.T) {
	mock := provider.NewMockProvider("groq")
	mock.Queue(provider.GenerationResult{Success: true, Content: "Titlu: Cafea buna", TokensUsed: 77})
	hist := &memHistory{}
	g := New(router.New([]string{"groq"}, mock), hist)

	res := g.Generate(context.Background(), Request{
		Keywords:    "cafea de specialitate",
		ContentType: "google_ad",
		Framework:   "AIDA",
		Audience:    "entrepreneurs",
		Tone:        "professional",
	})
	if !res.Success {
		t.Fatalf("expected success, got %v", res.Errors)
	}
	if res.TokensUsed != 77 {
		t.Errorf("reported usage should win over estimation, got %d", res.TokensUsed)
	}

	entries, _ := hist.RecentGenerations(context.Background(), 10)
	if len(entries) != 1 {
		t.Fatalf("expected 1 archived entry, got %d", len(entries))
	}
	e := entries[0]
	if e.ContentType != "Google Ad" || e.Audience != "Antreprenori si freelanceri" || e.Tone != "Profesional" {
		t.Errorf("catalog names should be resolved for history, got %+v", e)
	}
	if e.Provider != "groq" || !e.Success || e.Content == "" {
		t.Errorf("unexpected archived entry %+v", e)
	}
}

func TestGenerateEstimatesMissingUsage(t *testing.T) {
	mock := provider.NewMockProvider("groq")
	mock.Queue(provider.GenerationResult{Success: true, Content: "Continut generat."})
	g := New(router.New([]string{"groq"}, mock), nil)

	res := g.Generate(context.Background(), Request{Keywords: "abonament sala"})
	if !res.Success {
		t.Fatalf("expected success, got %v", res.Errors)
	}
	if res.TokensUsed <= 0 {
		t.Errorf("missing usage should be estimated locally, got %d", res.TokensUsed)
	}
}

func TestGenerateFailureArchivedWithoutContent(t *testing.T) {
	mock := provider.NewMockProvider("groq")
	mock.Queue(provider.GenerationResult{ErrorMessage: "upstream exploded"})
	hist := &memHistory{}
	g := New(router.New([]string{"groq"}, mock), hist)

	res := g.Generate(context.Background(), Request{Keywords: "abonament sala"})
	if res.Success {
		t.Fatal("expected failure")
	}
	entries, _ := hist.RecentGenerations(context.Background(), 10)
	if len(entries) != 1 {
		t.Fatalf("failed runs should still be archived, got %d entries", len(entries))
	}
	if entries[0].Success || entries[0].Content != "" {
		t.Errorf("failed entry should have no content, got %+v", entries[0])
	}
}

func TestGenerateCustomOverrides(t *testing.T) {
	mock := provider.NewMockProvider("groq")
	hist := &memHistory{}
	g := New(router.New([]string{"groq"}, mock), hist)

	g.Generate(context.Background(), Request{
		Keywords:          "aplicatie de meditatie",
		CustomAudience:    "Studenti stresati in sesiune",
		CustomTone:        "Calm si linistitor",
		CustomContentType: "Push Notification",
		CustomFramework:   "Hook-Story-Offer",
	})

	entries, _ := hist.RecentGenerations(context.Background(), 1)
	if len(entries) != 1 {
		t.Fatal("expected an archived entry")
	}
	e := entries[0]
	if e.Audience != "Studenti stresati in sesiune" || e.Tone != "Calm si linistitor" {
		t.Errorf("custom audience/tone should pass through, got %+v", e)
	}
	if e.ContentType != "Push Notification" || e.Framework != "Hook-Story-Offer" {
		t.Errorf("custom content type/framework should pass through, got %+v", e)
	}
}

func TestGenerateStreamArchivesAssembledContent(t *testing.T) {
	mock := provider.NewMockProvider("groq")
	mock.QueueChunks("Dimineata ", "incepe ", "cu cafea.")
	hist := &memHistory{}
	g := New(router.New([]string{"groq"}, mock), hist)

	var parts []string
	for chunk := range g.GenerateStream(context.Background(), Request{Keywords: "cafea"}) {
		parts = append(parts, chunk)
	}
	if got := strings.Join(parts, ""); got != "Dimineata incepe cu cafea." {
		t.Errorf("unexpected stream %q", got)
	}

	entries, _ := hist.RecentGenerations(context.Background(), 1)
	if len(entries) != 1 {
		t.Fatal("stream output should be archived")
	}
	if entries[0].Content != "Dimineata incepe cu cafea." || entries[0].Tokens <= 0 {
		t.Errorf("unexpected archived entry %+v", entries[0])
	}
}

func TestGenerateStreamErrorNotArchived(t *testing.T) {
	hist := &memHistory{}
	g := New(router.New(nil), hist)

	var parts []string
	for chunk := range g.GenerateStream(context.Background(), Request{Keywords: "cafea"}) {
		parts = append(parts, chunk)
	}
	if len(parts) != 1 || !strings.HasPrefix(parts[0], "[Error") {
		t.Fatalf("expected a single error marker, got %q", parts)
	}
	entries, _ := hist.RecentGenerations(context.Background(), 10)
	if len(entries) != 0 {
		t.Errorf("error streams must not be archived, got %d entries", len(entries))
	}
}

func TestOptions(t *testing.T) {
	mock := provider.NewMockProvider("groq")
	g := New(router.New([]string{"groq"}, mock), nil)

	opts := g.Options()
	if len(opts.Audiences) == 0 || len(opts.Tones) == 0 || len(opts.ContentTypes) == 0 || len(opts.Frameworks) == 0 {
		t.Error("catalogs should not be empty")
	}
	if len(opts.Providers) != 1 || opts.Providers[0] != "groq" {
		t.Errorf("unexpected providers %v", opts.Providers)
	}
}
