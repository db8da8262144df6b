package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/copyspell/copyspell/pkg/router"
	"github.com/copyspell/copyspell/pkg/store"
)

// HistoryStore archives finished generation runs. A nil store disables
// history without disabling generation.
type HistoryStore interface {
	SaveGeneration(ctx context.Context, g store.Generation) error
	RecentGenerations(ctx context.Context, limit int) ([]store.Generation, error)
	ClearHistory(ctx context.Context) error
}

// Request is one content-generation order. IDs refer to the built-in
// catalogs; the Custom fields override their counterpart with free
// text when set.
type Request struct {
	Keywords          string `json:"keywords"`
	ContentType       string `json:"content_type"`
	Framework         string `json:"framework"`
	Audience          string `json:"audience"`
	Tone              string `json:"tone"`
	AdditionalContext string `json:"additional_context"`
	PreferredProvider string `json:"provider"`
	Model             string `json:"model"`
	WordCount         string `json:"word_count"`

	CustomAudience    string `json:"custom_audience"`
	CustomTone        string `json:"custom_tone"`
	CustomContentType string `json:"custom_content_type"`
	CustomFramework   string `json:"custom_framework"`
}

// Generator turns a content request into a prompt, routes it, and
// archives the outcome.
type Generator struct {
	router  *router.Router
	history HistoryStore
}

func New(r *router.Router, history HistoryStore) *Generator {
	return &Generator{router: r, history: history}
}

// resolved carries the display names used for prompt assembly and the
// history record.
type resolved struct {
	params          PromptParams
	contentTypeName string
	frameworkName   string
	audienceName    string
	toneName        string
}

func (g *Generator) resolve(req Request) resolved {
	r := resolved{}

	if req.CustomAudience != "" {
		r.audienceName = req.CustomAudience
		r.params.Audience = req.CustomAudience
	} else {
		a := AudienceByID(req.Audience)
		r.audienceName = a.Name
		r.params.Audience = AudienceBlock(a)
	}

	if req.CustomTone != "" {
		r.toneName = req.CustomTone
		r.params.Tone = req.CustomTone
	} else {
		t := ToneByID(req.Tone)
		r.toneName = t.Name
		r.params.Tone = ToneBlock(t)
	}

	if req.CustomContentType != "" {
		r.contentTypeName = req.CustomContentType
		r.params.ContentTypeName = req.CustomContentType
	} else {
		ct := ContentTypeByID(req.ContentType)
		r.contentTypeName = ct.Name
		r.params.ContentTypeID = ct.ID
		r.params.ContentTypeName = ct.Name
	}

	r.frameworkName = req.Framework
	if req.CustomFramework != "" {
		r.frameworkName = req.CustomFramework
	} else if _, ok := FrameworkByName(req.Framework); !ok {
		r.frameworkName = Frameworks[0].Name
	}
	r.params.Framework = r.frameworkName

	r.params.Keywords = req.Keywords
	r.params.AdditionalContext = req.AdditionalContext
	r.params.WordCount = req.WordCount
	return r
}

// Generate builds the prompt and routes it with fallback. The outcome
// is archived whether or not it succeeded.
func (g *Generator) Generate(ctx context.Context, req Request) router.Result {
	rv := g.resolve(req)
	prompt := BuildPrompt(rv.params)

	res := g.router.Generate(ctx, prompt, router.Options{
		SystemPrompt:      SystemPrompt,
		PreferredProvider: req.PreferredProvider,
		Model:             req.Model,
	})

	// Some upstreams omit the usage block; estimate locally so quota
	// and history numbers stay meaningful.
	if res.Success && res.TokensUsed == 0 {
		res.TokensUsed = EstimateTokens(SystemPrompt, prompt, res.Content)
	}

	g.archive(ctx, req, rv, res)
	return res
}

// GenerateStream builds the prompt and streams fragments from one
// provider. The assembled output is archived after the stream ends,
// unless it opens with an error marker.
func (g *Generator) GenerateStream(ctx context.Context, req Request) <-chan string {
	rv := g.resolve(req)
	prompt := BuildPrompt(rv.params)

	upstream := g.router.GenerateStream(ctx, prompt, router.Options{
		SystemPrompt:      SystemPrompt,
		PreferredProvider: req.PreferredProvider,
		Model:             req.Model,
	})

	out := make(chan string)
	go func() {
		defer close(out)

		var parts []string
		for chunk := range upstream {
			parts = append(parts, chunk)
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}

		content := strings.Join(parts, "")
		if content == "" || strings.HasPrefix(content, "[Error") {
			return
		}
		g.archive(ctx, req, rv, router.Result{
			Success:    true,
			Content:    content,
			TokensUsed: EstimateTokens(SystemPrompt, prompt, content),
		})
	}()
	return out
}

func (g *Generator) archive(ctx context.Context, req Request, rv resolved, res router.Result) {
	if g.history == nil {
		return
	}
	entry := store.Generation{
		CreatedAt:   time.Now().UTC(),
		Keywords:    req.Keywords,
		ContentType: rv.contentTypeName,
		Framework:   rv.frameworkName,
		Audience:    rv.audienceName,
		Tone:        rv.toneName,
		Provider:    res.ProviderUsed,
		Model:       res.ModelUsed,
		Success:     res.Success,
		Tokens:      res.TokensUsed,
	}
	if res.Success {
		entry.Content = res.Content
	}
	if err := g.history.SaveGeneration(ctx, entry); err != nil {
		// History is best-effort; the generation itself already finished.
		fmt.Printf(`{"level":"warn","msg":"history_save_failed","error":"%v"}`+"\n", err)
	}
}

// History returns the most recent archived runs, newest first.
func (g *Generator) History(ctx context.Context, limit int) ([]store.Generation, error) {
	if g.history == nil {
		return nil, nil
	}
	return g.history.RecentGenerations(ctx, limit)
}

// Archive exposes the backing history store, nil when history is
// disabled.
func (g *Generator) Archive() HistoryStore {
	return g.history
}

// ClearHistory discards every archived run.
func (g *Generator) ClearHistory(ctx context.Context) error {
	if g.history == nil {
		return nil
	}
	return g.history.ClearHistory(ctx)
}

// OptionSet is the catalog payload consumed by UIs to build their
// forms.
type OptionSet struct {
	Audiences    []Audience    `json:"audiences"`
	Tones        []Tone        `json:"tones"`
	ContentTypes []ContentType `json:"content_types"`
	Frameworks   []Framework   `json:"frameworks"`
	WordCounts   []string      `json:"word_counts"`
	Providers    []string      `json:"providers"`
}

// Options returns every selectable catalog plus the configured
// provider names.
func (g *Generator) Options() OptionSet {
	return OptionSet{
		Audiences:    Audiences,
		Tones:        Tones,
		ContentTypes: ContentTypes,
		Frameworks:   Frameworks,
		WordCounts:   []string{"short", "normal", "long"},
		Providers:    g.router.Providers(),
	}
}

// Router exposes the underlying router for status and usage queries.
func (g *Generator) Router() *router.Router { return g.router }
