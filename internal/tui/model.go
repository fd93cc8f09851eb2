package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vito/progrock"
)

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusCached    = "cached"
	statusFailed    = "failed"
)

// VertexState is the displayed state of one package.
type VertexState struct {
	ID     string
	Name   string
	Status string
	// Last is the most recent output line of the vertex.
	Last string
}

type styles struct {
	running   lipgloss.Style
	completed lipgloss.Style
	cached    lipgloss.Style
	failed    lipgloss.Style
	faint     lipgloss.Style
}

// Model is the Bubble Tea model showing one line per package.
type Model struct {
	tape     TapeSource
	vertices []VertexState
	index    map[string]int
	width    int
	height   int
	spinner  spinner.Model
	styles   styles
	// Interrupted is set when the user quit before the tape ended.
	Interrupted bool
}

// NewModel creates a new TUI model with the given tape source.
func NewModel(tape TapeSource) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	return &Model{
		tape:    tape,
		index:   make(map[string]int),
		spinner: s,
		styles: styles{
			running:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			completed: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),  // Green
			cached:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // Blue
			failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")), // Red
			faint:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")), // Gray
		},
	}
}

// Init initializes the model and starts reading from the tape.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForTape(m.tape),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			m.Interrupted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case MsgTapeUpdate:
		m.apply(msg.Update)
		return m, WaitForTape(m.tape)
	case MsgTapeEnded:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) apply(update *progrock.StatusUpdate) {
	if update == nil {
		return
	}
	for _, v := range update.Vertexes {
		i, ok := m.index[v.Id]
		if !ok {
			i = len(m.vertices)
			m.index[v.Id] = i
			m.vertices = append(m.vertices, VertexState{ID: v.Id, Name: v.Name, Status: statusRunning})
		}
		switch {
		case v.Cached:
			m.vertices[i].Status = statusCached
		case v.Completed != nil && v.Error != nil:
			m.vertices[i].Status = statusFailed
		case v.Completed != nil:
			m.vertices[i].Status = statusCompleted
		}
	}
	for _, l := range update.Logs {
		i, ok := m.index[l.Vertex]
		if !ok {
			continue
		}
		if line := lastLine(string(l.Data)); line != "" {
			m.vertices[i].Last = line
		}
	}
}

func lastLine(data string) string {
	lines := strings.Split(strings.TrimRight(data, "\r\n"), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// Summary counts packages per status.
func (m *Model) Summary() map[string]int {
	counts := make(map[string]int, 4)
	for _, v := range m.vertices {
		counts[v.Status]++
	}
	return counts
}

// View renders the current state of the model as a string.
func (m *Model) View() string {
	var s strings.Builder

	// Keep the summary line visible.
	start := 0
	if m.height > 1 && len(m.vertices) > m.height-1 {
		start = len(m.vertices) - (m.height - 1)
	}

	for _, v := range m.vertices[start:] {
		var icon string
		var style lipgloss.Style
		switch v.Status {
		case statusRunning:
			icon = m.spinner.View()
			style = m.styles.running
		case statusCompleted:
			icon = "✓"
			style = m.styles.completed
		case statusCached:
			icon = "≡"
			style = m.styles.cached
		default:
			icon = "✗"
			style = m.styles.failed
		}

		line := fmt.Sprintf("%s %s", style.Render(icon), v.Name)
		if v.Status == statusRunning && v.Last != "" {
			line += " " + m.styles.faint.Render(m.truncate(v.Last, len(v.Name)+3))
		}
		s.WriteString(line + "\n")
	}

	counts := m.Summary()
	s.WriteString(m.styles.faint.Render(fmt.Sprintf("%d built, %d cached, %d failed, %d running",
		counts[statusCompleted], counts[statusCached], counts[statusFailed], counts[statusRunning])))
	s.WriteString("\n")
	return s.String()
}

func (m *Model) truncate(text string, used int) string {
	if m.width <= 0 {
		return text
	}
	room := m.width - used
	if room <= 1 {
		return ""
	}
	if r := []rune(text); len(r) > room {
		return string(r[:room-1]) + "…"
	}
	return text
}
