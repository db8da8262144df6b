package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/copyspell/copyspell/pkg/client"
)

const pollRate = 2 * time.Second

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

type tickMsg time.Time

type dataMsg struct {
	providers map[string]client.ProviderStatus
	usage     map[string]client.Usage
	history   []client.HistoryEntry
	err       error
}

type model struct {
	api      *client.Client
	spinner  spinner.Model
	viewport viewport.Model
	ready    bool

	providers map[string]client.ProviderStatus
	usage     map[string]client.Usage
	history   []client.HistoryEntry
	lastErr   error
	lastPoll  time.Time
}

func newModel(api *client.Client) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return model{api: api, spinner: sp}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchData(m.api), tick())
}

func fetchData(api *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		providers, err := api.Providers(ctx)
		if err != nil {
			return dataMsg{err: err}
		}
		usage, err := api.Usage(ctx)
		if err != nil {
			return dataMsg{err: err}
		}
		history, err := api.History(ctx, 10)
		if err != nil {
			return dataMsg{err: err}
		}
		return dataMsg{providers: providers, usage: usage, history: history}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		return m, tea.Batch(fetchData(m.api), tick())

	case dataMsg:
		m.lastPoll = time.Now()
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		m.lastErr = nil
		m.providers = msg.providers
		m.usage = msg.usage
		m.history = msg.history
		if m.ready {
			m.viewport.SetContent(m.historyView())
		}
		return m, nil

	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.statusView()) + 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight)
			m.viewport.SetContent(m.historyView())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight
		}
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("CopySpell AI"))
	b.WriteString("\n")
	b.WriteString(paneStyle.Render(m.statusView()))
	b.WriteString("\n")
	if m.ready {
		b.WriteString(paneStyle.Render(m.viewport.View()))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("q: quit  •  ↑/↓: scroll history"))
	return b.String()
}

func (m model) statusView() string {
	var b strings.Builder

	if m.lastErr != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("daemon unreachable: %v", m.lastErr)))
		b.WriteString("\n")
	}
	if m.providers == nil {
		b.WriteString(m.spinner.View())
		b.WriteString(" connecting...")
		return b.String()
	}

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString(headerStyle.Render("Providers"))
	b.WriteString("\n")
	for _, name := range names {
		ps := m.providers[name]
		var badge string
		switch {
		case !ps.Configured:
			badge = dimStyle.Render("not configured")
		case ps.Status == "available":
			badge = okStyle.Render("available")
		case ps.Status == "rate_limited":
			badge = warnStyle.Render("rate limited")
		default:
			badge = errStyle.Render(ps.Status)
		}
		u := m.usage[name]
		b.WriteString(fmt.Sprintf("  %-12s %s  %s\n",
			name, badge,
			dimStyle.Render(fmt.Sprintf("%d req / %d tok today", u.Requests, u.Tokens))))
		if ps.LastError != "" {
			b.WriteString(dimStyle.Render(fmt.Sprintf("    last error: %s", truncate(ps.LastError, 70))))
			b.WriteString("\n")
		}
	}

	if !m.lastPoll.IsZero() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  updated %s", m.lastPoll.Format("15:04:05"))))
	}
	return b.String()
}

func (m model) historyView() string {
	if len(m.history) == 0 {
		return dimStyle.Render("no generations yet")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Recent generations"))
	b.WriteString("\n")
	for _, h := range m.history {
		status := okStyle.Render("ok")
		if !h.Success {
			status = errStyle.Render("fail")
		}
		b.WriteString(fmt.Sprintf("%s  %s  %s via %s (%d tok)\n",
			dimStyle.Render(h.CreatedAt.Local().Format("15:04")),
			status,
			truncate(h.Keywords, 40),
			h.Provider,
			h.Tokens))
		if h.Content != "" {
			b.WriteString(dimStyle.Render("  " + truncate(strings.ReplaceAll(h.Content, "\n", " "), 90)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func main() {
	endpoint := os.Getenv("COPYSPELL_API_URL")
	api := client.NewClient(endpoint)

	p := tea.NewProgram(newModel(api), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
