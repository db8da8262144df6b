package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/copyspell/copyspell/pkg/client"
)

// Server adapts copyspell-d to the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	apiClient *client.Client
}

// NewServer creates a new MCP server instance.
func NewServer(apiURL string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"copyspell",
			"1.0.0",
		),
		apiClient: client.NewClient(apiURL),
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	// copyspell://usage
	s.mcpServer.AddResource(mcp.NewResource(
		"copyspell://usage",
		"Provider Usage",
		mcp.WithResourceDescription("Per-provider request and token counts for the rolling day"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadUsage)

	// copyspell://history
	s.mcpServer.AddResource(mcp.NewResource(
		"copyspell://history",
		"Generation History",
		mcp.WithResourceDescription("Recent generation runs with their parameters and outcomes"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadHistory)

	// copyspell://options
	s.mcpServer.AddResource(mcp.NewResource(
		"copyspell://options",
		"Generation Options",
		mcp.WithResourceDescription("Available audiences, tones, content types, and frameworks"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadOptions)
}

// --- Tools ---

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"generate_copy",
		mcp.WithDescription("Generate Romanian marketing copy for a topic. Routes across AI providers with automatic fallback."),
		mcp.WithString("keywords", mcp.Required(), mcp.Description("The topic or product to write about")),
		mcp.WithString("content_type", mcp.Description("Format id (e.g. 'facebook_post', 'google_ad', 'email')")),
		mcp.WithString("framework", mcp.Description("Copywriting framework (e.g. 'AIDA', 'PAS')")),
		mcp.WithString("audience", mcp.Description("Audience id (e.g. 'entrepreneurs')")),
		mcp.WithString("tone", mcp.Description("Tone id (e.g. 'professional')")),
		mcp.WithString("provider", mcp.Description("Preferred provider name (optional)")),
	), s.handleGenerateCopy)

	s.mcpServer.AddTool(mcp.NewTool(
		"provider_status",
		mcp.WithDescription("Report the status of every configured AI provider (available, rate-limited, errored)."),
	), s.handleProviderStatus)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"copyspell-aware",
		mcp.WithPromptDescription("Provides context about CopySpell concepts (content types, frameworks, providers)"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleReadUsage(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	usage, err := s.apiClient.Usage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch usage: %w", err)
	}
	return jsonResource(request.Params.URI, usage)
}

func (s *Server) handleReadHistory(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries, err := s.apiClient.History(ctx, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return jsonResource(request.Params.URI, entries)
}

func (s *Server) handleReadOptions(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	opts, err := s.apiClient.Options(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch options: %w", err)
	}
	return jsonResource(request.Params.URI, opts)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleGenerateCopy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := client.GenerateRequest{
		Keywords:    mcp.ParseString(request, "keywords", ""),
		ContentType: mcp.ParseString(request, "content_type", ""),
		Framework:   mcp.ParseString(request, "framework", ""),
		Audience:    mcp.ParseString(request, "audience", ""),
		Tone:        mcp.ParseString(request, "tone", ""),
		Provider:    mcp.ParseString(request, "provider", ""),
	}
	if strings.TrimSpace(req.Keywords) == "" {
		return mcp.NewToolResultError("keywords are required"), nil
	}

	res, err := s.apiClient.Generate(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = strings.Join(res.Errors, "\n")
		}
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %s", msg)), nil
	}

	resultMsg := fmt.Sprintf("%s\n\n---\nProvider: %s | Model: %s | Tokens: %d | Attempts: %d",
		res.Content, res.Provider, res.Model, res.Tokens, res.Attempts)
	return mcp.NewToolResultText(resultMsg), nil
}

func (s *Server) handleProviderStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.apiClient.Providers(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	var b strings.Builder
	for name, ps := range status {
		fmt.Fprintf(&b, "%s: %s", name, ps.Status)
		if ps.LastError != "" {
			fmt.Fprintf(&b, " (last error: %s)", ps.LastError)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "copyspell-aware" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are interacting with CopySpell, a marketing copy generation service.

Concepts:
- Content type: The deliverable format (facebook_post, google_ad, email, landing_page, ...).
- Framework: The copywriting structure (AIDA, PAS, Storytelling, ...).
- Audience / Tone: Who the copy speaks to and in what voice.
- Provider: The upstream AI service; CopySpell falls back automatically when one is rate-limited.

Use the 'generate_copy' tool to produce copy. The output is in Romanian.
Use 'provider_status' when generation fails to see whether providers are rate-limited.
Read copyspell://options to discover valid content type, framework, audience, and tone ids.
`

	return mcp.NewGetPromptResult(
		"copyspell-aware",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}
