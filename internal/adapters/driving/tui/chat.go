// Package tui provides the interactive chat view: a scrollback viewport,
// a text input, and streamed assistant answers. Repair discovery runs in
// the background and reports into the transcript when it finishes.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/nexus-cli/internal/core/domain"
	"github.com/custodia-labs/nexus-cli/internal/core/ports/driving"
)

// Config carries everything the chat session needs.
type Config struct {
	Doc    *domain.Document
	Chunks []domain.Chunk

	Ask       driving.AskService
	Discovery driving.DiscoveryService

	UseDocContext bool
	UseWebSearch  bool
}

// Message types delivered into the update loop.
type (
	// deltaMsg carries the assistant message accumulated so far.
	deltaMsg string

	// turnDoneMsg ends a turn.
	turnDoneMsg struct {
		answer string
		err    error
	}

	// discoveryMsg reports a finished background discovery run.
	discoveryMsg driving.DiscoveryEvent
)

// entry is one rendered transcript line group.
type entry struct {
	role string
	text string
}

// Model is the bubbletea model for the chat session.
type Model struct {
	cfg    Config
	styles *Styles

	viewport viewport.Model
	input    textarea.Model

	transcript []entry
	streaming  string
	thinking   bool
	ready      bool
	width      int
	height     int

	// send publishes messages from worker goroutines into the program.
	send func(tea.Msg)
}

// NewModel creates the chat model.
func NewModel(cfg Config) *Model {
	input := textarea.New()
	input.Placeholder = "Ask about this document..."
	input.SetHeight(1)
	input.ShowLineNumbers = false
	input.Focus()

	return &Model{
		cfg:    cfg,
		styles: DefaultStyles(),
		input:  input,
		send:   func(tea.Msg) {},
	}
}

// Init initialises the model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles incoming messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		inputHeight := 3
		headerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-inputHeight-headerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - inputHeight - headerHeight
		}
		m.input.SetWidth(msg.Width - 4)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		}

	case deltaMsg:
		m.streaming = string(msg)
		m.refresh()
		return m, nil

	case turnDoneMsg:
		m.thinking = false
		m.streaming = ""
		if msg.err != nil {
			// Guard rejections are no-ops; anything else is one generic
			// failure notice, prior history stays intact.
			if !errors.Is(msg.err, domain.ErrTurnInFlight) && !errors.Is(msg.err, domain.ErrModelNotReady) {
				m.transcript = append(m.transcript, entry{role: "error", text: "Something went wrong generating the answer. Please try again."})
			}
		} else {
			m.transcript = append(m.transcript, entry{role: domain.RoleAssistant, text: msg.answer})
		}
		m.refresh()
		return m, nil

	case discoveryMsg:
		if msg.Status == domain.DiscoveryComplete {
			m.transcript = append(m.transcript, entry{
				role: domain.RoleSystem,
				text: fmt.Sprintf("Learned %d text-repair rules for this document.", msg.RulesLearned),
			})
			m.refresh()
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit starts a turn for the typed question. A turn already in flight
// means the submission is dropped silently.
func (m *Model) submit() tea.Cmd {
	question := strings.TrimSpace(m.input.Value())
	if question == "" || m.thinking {
		return nil
	}

	m.input.Reset()
	m.thinking = true
	m.transcript = append(m.transcript, entry{role: domain.RoleUser, text: question})
	m.refresh()

	send := m.send
	cfg := m.cfg
	return func() tea.Msg {
		answer, err := cfg.Ask.Ask(context.Background(), cfg.Doc, question, driving.AskOptions{
			UseDocContext: cfg.UseDocContext,
			UseWebSearch:  cfg.UseWebSearch,
			OnDelta: func(soFar string) {
				send(deltaMsg(soFar))
			},
		})
		return turnDoneMsg{answer: answer, err: err}
	}
}

// refresh rebuilds the viewport content and scrolls to the bottom.
func (m *Model) refresh() {
	if !m.ready {
		return
	}

	var sb strings.Builder
	for _, e := range m.transcript {
		switch e.role {
		case domain.RoleUser:
			sb.WriteString(m.styles.User.Render("You: ") + e.text)
		case domain.RoleAssistant:
			sb.WriteString(m.styles.Assistant.Render(e.text))
		case domain.RoleSystem:
			sb.WriteString(m.styles.System.Render(e.text))
		default:
			sb.WriteString(m.styles.Error.Render(e.text))
		}
		sb.WriteString("\n\n")
	}
	if m.streaming != "" {
		sb.WriteString(m.styles.Assistant.Render(m.streaming))
		sb.WriteString("\n")
	}

	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(sb.String()))
	m.viewport.GotoBottom()
}

// View renders the chat screen.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.styles.Title.Render(m.cfg.Doc.Name)
	status := ""
	if m.thinking && m.streaming == "" {
		status = m.styles.Status.Render("Thinking...")
	} else {
		status = m.styles.Status.Render("Enter to send, Esc to quit")
	}

	return header + "\n" +
		m.viewport.View() + "\n" +
		m.styles.InputBox.Render(m.input.View()) + "\n" +
		status
}

// Run starts the chat session and blocks until the user quits. Repair
// discovery is launched in the background when the document is eligible.
func Run(cfg Config) error {
	m := NewModel(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.send = p.Send

	if cfg.Discovery != nil {
		if cfg.Doc.EligibleForDiscovery() && len(cfg.Chunks) > 0 {
			if err := cfg.Discovery.Start(context.Background(), cfg.Doc, cfg.Chunks); err != nil &&
				!errors.Is(err, domain.ErrDiscoveryRunning) {
				// Discovery failures never block the chat.
				m.transcript = append(m.transcript, entry{role: domain.RoleSystem, text: "Text-repair discovery could not start."})
			}
		}
		go func() {
			for ev := range cfg.Discovery.Events() {
				if ev.DocumentID == cfg.Doc.ID {
					p.Send(discoveryMsg(ev))
				}
			}
		}()
	}

	_, err := p.Run()
	return err
}
