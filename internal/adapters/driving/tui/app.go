package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-kb/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-kb/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-kb/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-kb/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-kb/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

// chromeHeight is the rows taken by the title, prompt and status bar.
const chromeHeight = 5

// Options configures a chat session.
type Options struct {
	// TenantID scopes retrieval. Empty means the default tenant.
	TenantID string

	// SystemPrompt overrides the configured system prompt when non-empty.
	SystemPrompt string
}

// turn is one rendered entry of the transcript.
type turn struct {
	role    domain.Role
	content string
	sources []domain.SourceRef
	failed  bool
}

// App is a multi-turn chat over one knowledge base.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	opts   Options
	styles *styles.Styles
	keymap *keymap.KeyMap

	prompt     *input.Prompt
	statusBar  *status.Bar
	transcript viewport.Model

	// history is sent with each question; only completed turns are kept.
	history []domain.ChatMessage
	turns   []turn
	pending bool
	err     error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat application with the given ports.
func NewApp(ports *Ports, opts Options) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if opts.TenantID == "" {
		opts.TenantID = domain.DefaultTenantID
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := status.NewBar(s, km)
	bar.SetTenant(opts.TenantID)

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		opts:       opts,
		styles:     s,
		keymap:     km,
		prompt:     input.NewPrompt(s),
		statusBar:  bar,
		transcript: viewport.New(80, 20),
	}, nil
}

// WithContext sets the context used for answer requests.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("sercha-kb chat: "+a.opts.TenantID),
		a.prompt.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		a.ready = true
		return a, nil

	case messages.AnswerReceived:
		a.handleAnswer(msg)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.prompt, cmd = a.prompt.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(k, a.keymap.Clear):
		if a.pending {
			return a, nil
		}
		a.history = nil
		a.turns = nil
		a.err = nil
		a.statusBar.Clear()
		a.refresh()
		return a, nil

	case keymap.Matches(k, a.keymap.ScrollUp), keymap.Matches(k, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd

	case keymap.Matches(k, a.keymap.Send):
		query := strings.TrimSpace(a.prompt.Value())
		if query == "" || a.pending {
			return a, nil
		}
		a.prompt.Reset()
		a.pending = true
		a.err = nil
		a.turns = append(a.turns, turn{role: domain.RoleUser, content: query})
		a.statusBar.SetState(status.StateThinking)
		a.refresh()
		return a, a.ask(query, slices.Clone(a.history))
	}

	var cmd tea.Cmd
	a.prompt, cmd = a.prompt.Update(msg)
	return a, cmd
}

// ask runs the answer request off the UI goroutine.
func (a *App) ask(query string, history []domain.ChatMessage) tea.Cmd {
	ctx := a.ctx
	req := domain.AnswerRequest{
		Query:        query,
		TenantID:     a.opts.TenantID,
		History:      history,
		SystemPrompt: a.opts.SystemPrompt,
	}
	answer := a.ports.Answer
	return func() tea.Msg {
		ans, err := answer.Answer(ctx, req)
		return messages.AnswerReceived{Query: query, Answer: ans, Err: err}
	}
}

func (a *App) handleAnswer(msg messages.AnswerReceived) {
	a.pending = false

	if msg.Err != nil {
		a.err = msg.Err
		a.turns = append(a.turns, turn{role: domain.RoleAssistant, content: msg.Err.Error(), failed: true})
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(msg.Err.Error())
		a.refresh()
		return
	}

	a.history = append(a.history,
		domain.ChatMessage{Role: domain.RoleUser, Content: msg.Query},
		domain.ChatMessage{Role: domain.RoleAssistant, Content: msg.Answer.Response},
	)
	a.turns = append(a.turns, turn{
		role:    domain.RoleAssistant,
		content: msg.Answer.Response,
		sources: msg.Answer.Sources,
	})
	a.statusBar.SetState(status.StateReady)
	a.statusBar.SetTurns(len(a.history) / 2)
	a.refresh()
}

// refresh re-renders the transcript and keeps the newest turn in view.
func (a *App) refresh() {
	a.transcript.SetContent(a.renderTranscript())
	a.transcript.GotoBottom()
}

func (a *App) renderTranscript() string {
	if len(a.turns) == 0 {
		return a.styles.Muted.Render("No messages yet. Type a question and press enter.")
	}

	body := lipgloss.NewStyle().Width(max(a.width-2, 20))
	var b strings.Builder
	for i, t := range a.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch {
		case t.role == domain.RoleUser:
			b.WriteString(a.styles.User.Render("You"))
			b.WriteString("\n")
			b.WriteString(body.Render(a.styles.Normal.Render(t.content)))
		case t.failed:
			b.WriteString(a.styles.Error.Render("Error: " + t.content))
		default:
			b.WriteString(a.styles.Assistant.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(body.Render(a.styles.Normal.Render(t.content)))
			if line := formatSources(t.sources); line != "" {
				b.WriteString("\n")
				b.WriteString(a.styles.Source.Render(line))
			}
		}
	}
	return b.String()
}

// formatSources renders "Sources: a.txt (0.91), b.pdf (0.80)".
func formatSources(refs []domain.SourceRef) string {
	if len(refs) == 0 {
		return ""
	}
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = fmt.Sprintf("%s (%.2f)", r.Source, r.Score)
	}
	return "Sources: " + strings.Join(parts, ", ")
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	title := a.styles.Title.Render("sercha-kb chat") + " " + a.styles.Muted.Render(a.opts.TenantID)
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		a.transcript.View(),
		a.prompt.View(),
		a.statusBar.View(),
	)
}

// Run starts the Bubbletea program and blocks until the user quits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// SetDimensions resizes every component.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.transcript.Width = width
	a.transcript.Height = max(height-chromeHeight, 1)
	a.prompt.SetWidth(width)
	a.statusBar.SetWidth(width)
	a.refresh()
}

// History returns the completed conversation turns.
func (a *App) History() []domain.ChatMessage {
	return a.history
}

// Pending reports whether an answer is outstanding.
func (a *App) Pending() bool {
	return a.pending
}

// Err returns the last answer failure.
func (a *App) Err() error {
	return a.err
}

// Ready reports whether the first window size has been received.
func (a *App) Ready() bool {
	return a.ready
}
