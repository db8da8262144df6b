package deepseek

import (
	"context"

	"github.com/copyspell/copyspell/pkg/provider"
)

const apiBase = "https://api.deepseek.com/v1"

var defaultModels = []string{
	"deepseek-chat",
	"deepseek-reasoner",
}

// Provider adapts the DeepSeek chat-completions API.
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
		Name:         "deepseek",
		APIKey:       apiKey,
		BaseURL:      baseURL,
		DefaultModel: defaultModels[0],
	})
	client.RetryAfter = provider.RetryAfterHeader

	return &Provider{
		State:  provider.NewState(apiKey != ""),
		client: client,
	}
}

func (p *Provider) Name() string         { return "deepseek" }
func (p *Provider) Models() []string     { return defaultModels }
func (p *Provider) DefaultModel() string { return defaultModels[0] }

func (p *Provider) Generate(ctx context.Context, req provider.GenerationRequest) provider.GenerationResult {
	return p.client.Complete(ctx, p.State, req)
}

func (p *Provider) GenerateStream(ctx context.Context, req provider.GenerationRequest) <-chan string {
	return p.client.Stream(ctx, p.State, req)
}

func (p *Provider) CheckAvailability(ctx context.Context) bool {
	return p.client.Probe(ctx, "/models")
}
