package app

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rakesh-kumar-k/jokegen/internal/chat"
	"github.com/rakesh-kumar-k/jokegen/internal/types"
)

const (
	minViewportWidth   = 20
	minContentHeight   = 4
	chromeHeight       = 5 // header + status + input border + input + help
	defaultPlaceholder = "give me a topic…"
)

type Model struct {
	orch          submitter
	socketVariant bool
	snapshot      chat.Snapshot
	input         textinput.Model
	viewport      viewport.Model
	loader        spinner.Model
	width         int
	height        int
	notice        string
}

func NewModel(orch submitter, initial chat.Snapshot, socketVariant bool) Model {
	input := textinput.New()
	input.Placeholder = defaultPlaceholder
	input.CharLimit = 200
	input.Focus()

	vp := viewport.New(minViewportWidth, minContentHeight)

	loader := spinner.New()
	loader.Spinner = spinner.MiniDot
	loader.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))

	m := Model{
		orch:          orch,
		socketVariant: socketVariant,
		snapshot:      initial,
		input:         input,
		viewport:      vp,
		loader:        loader,
	}
	m.refreshViewport()
	m.refreshInputState()
	return m
}

// Run wires the orchestrator into a bubbletea program and blocks until the
// UI exits. The orchestrator is torn down on the way out.
func Run(orch *chat.Orchestrator, socketVariant bool) error {
	model := NewModel(orch, orch.Snapshot(), socketVariant)
	p := tea.NewProgram(&model, tea.WithAltScreen())
	orch.SetOnChange(func(snapshot chat.Snapshot) {
		p.Send(snapshotMsg{snapshot: snapshot})
	})
	defer orch.Close()
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case snapshotMsg:
		wasActive := m.snapshot.Phase.Active()
		m.snapshot = msg.snapshot
		m.refreshViewport()
		m.refreshInputState()
		if m.snapshot.Phase.Active() && !wasActive {
			return m, m.loader.Tick
		}
		return m, nil

	case submitResultMsg:
		if msg.err != nil {
			m.notice = submitNotice(msg.err)
			return m, nil
		}
		m.notice = ""
		m.input.SetValue("")
		return m, m.loader.Tick

	case spinner.TickMsg:
		if !m.snapshot.Phase.Active() {
			return m, nil
		}
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			topic := strings.TrimSpace(m.input.Value())
			if topic == "" {
				m.notice = "enter a topic first"
				return m, nil
			}
			if !m.canSubmit() {
				return m, nil
			}
			return m, submitCmd(m.orch, topic)
		case "ctrl+y":
			if joke, ok := m.snapshot.LastJoke(); ok {
				if err := copyToClipboard(joke); err != nil {
					m.notice = err.Error()
				} else {
					m.notice = "joke copied"
				}
			} else {
				m.notice = "nothing to copy yet"
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	header := headerStyle.Render("jokegen") + statusStyle.Render("  multi-agent joke generator")
	status := statusLine(m.snapshot, m.loader.View()+" ", m.width)
	if m.notice != "" {
		status = statusStyle.Render(m.notice)
	}
	help := helpStyle.Render("enter send · ctrl+y copy joke · ctrl+c quit")

	return strings.Join([]string{
		header,
		m.viewport.View(),
		status,
		inputBarStyle.Width(max(m.width, minViewportWidth)).Render(m.input.View()),
		help,
	}, "\n")
}

func (m *Model) canSubmit() bool {
	if m.snapshot.Phase.Active() {
		return false
	}
	if m.socketVariant && m.snapshot.Connection != types.ConnectionConnected {
		return false
	}
	return true
}

func (m *Model) resize() {
	width := max(m.width, minViewportWidth)
	height := max(m.height-chromeHeight, minContentHeight)
	m.viewport.Width = width
	m.viewport.Height = height
	m.input.Width = width - 4
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	width := m.viewport.Width
	if width <= 0 {
		width = minViewportWidth
	}
	m.viewport.SetContent(renderTranscript(m.snapshot, width))
	m.viewport.GotoBottom()
}

// refreshInputState disables the input while a turn is in flight or, on the
// socket variant, while disconnected.
func (m *Model) refreshInputState() {
	if m.canSubmit() {
		m.input.Placeholder = defaultPlaceholder
		if !m.input.Focused() {
			m.input.Focus()
		}
		return
	}
	if m.snapshot.Phase.Active() {
		m.input.Placeholder = "working…"
	} else {
		m.input.Placeholder = "waiting for connection…"
	}
	m.input.Blur()
}

func submitNotice(err error) string {
	switch {
	case errors.Is(err, chat.ErrEmptyTopic):
		return "enter a topic first"
	case errors.Is(err, chat.ErrTurnInFlight):
		return "still working on the previous topic"
	case errors.Is(err, chat.ErrNotConnected):
		return "disconnected — waiting for the backend"
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}
