//nolint:testpackage // Test needs access to unexported fields
package tui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/progrock"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// fakeTape replays updates, then reports io.EOF.
type fakeTape struct {
	updates []*progrock.StatusUpdate
}

func (f *fakeTape) Read() (*progrock.StatusUpdate, error) {
	if len(f.updates) == 0 {
		return nil, io.EOF
	}
	u := f.updates[0]
	f.updates = f.updates[1:]
	return u, nil
}

func errPtr(s string) *string { return &s }

func TestModel_TapeUpdate_AddsVertex(t *testing.T) {
	m := NewModel(&fakeTape{})

	_, cmd := m.Update(MsgTapeUpdate{Update: &progrock.StatusUpdate{
		Vertexes: []*progrock.Vertex{{Id: "1", Name: "libx@v1"}},
	}})

	require.Len(t, m.vertices, 1)
	assert.Equal(t, "libx@v1", m.vertices[0].Name)
	assert.Equal(t, statusRunning, m.vertices[0].Status)
	assert.NotNil(t, cmd)
}

func TestModel_TapeUpdate_Statuses(t *testing.T) {
	m := NewModel(&fakeTape{})
	now := timestamppb.New(time.Now())

	m.Update(MsgTapeUpdate{Update: &progrock.StatusUpdate{
		Vertexes: []*progrock.Vertex{
			{Id: "1", Name: "libx@v1"},
			{Id: "2", Name: "liby@v2"},
			{Id: "3", Name: "libz@v3"},
		},
	}})
	m.Update(MsgTapeUpdate{Update: &progrock.StatusUpdate{
		Vertexes: []*progrock.Vertex{
			{Id: "1", Name: "libx@v1", Completed: now},
			{Id: "2", Name: "liby@v2", Cached: true, Completed: now},
			{Id: "3", Name: "libz@v3", Completed: now, Error: errPtr("build failed")},
		},
	}})

	require.Len(t, m.vertices, 3)
	assert.Equal(t, statusCompleted, m.vertices[0].Status)
	assert.Equal(t, statusCached, m.vertices[1].Status)
	assert.Equal(t, statusFailed, m.vertices[2].Status)
	assert.Equal(t, map[string]int{statusCompleted: 1, statusCached: 1, statusFailed: 1}, m.Summary())
}

func TestModel_TapeUpdate_TracksLastLogLine(t *testing.T) {
	m := NewModel(&fakeTape{})

	m.Update(MsgTapeUpdate{Update: &progrock.StatusUpdate{
		Vertexes: []*progrock.Vertex{{Id: "1", Name: "libx@v1"}},
		Logs: []*progrock.VertexLog{
			{Vertex: "1", Data: []byte("compiling a\ncompiling b\n")},
			{Vertex: "unknown", Data: []byte("ignored\n")},
		},
	}})

	assert.Equal(t, "compiling b", m.vertices[0].Last)
	assert.Contains(t, m.View(), "compiling b")
}

func TestModel_TapeEnded_Quits(t *testing.T) {
	m := NewModel(&fakeTape{})

	_, cmd := m.Update(MsgTapeEnded{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.False(t, m.Interrupted)
}

func TestModel_CtrlC_Interrupts(t *testing.T) {
	m := NewModel(&fakeTape{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, m.Interrupted)
}

func TestModel_WaitForTape(t *testing.T) {
	update := &progrock.StatusUpdate{}
	tape := &fakeTape{updates: []*progrock.StatusUpdate{update}}

	msg := WaitForTape(tape)()
	assert.Equal(t, MsgTapeUpdate{Update: update}, msg)

	msg = WaitForTape(tape)()
	assert.Equal(t, MsgTapeEnded{}, msg)
}

func TestModel_View(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	m := NewModel(&fakeTape{})
	now := timestamppb.New(time.Now())
	m.Update(MsgTapeUpdate{Update: &progrock.StatusUpdate{
		Vertexes: []*progrock.Vertex{
			{Id: "1", Name: "libx@v1", Completed: now},
			{Id: "2", Name: "liby@v2", Cached: true},
			{Id: "3", Name: "libz@v3", Completed: now, Error: errPtr("build failed")},
			{Id: "4", Name: "app@1.0.0", Completed: now},
		},
	}})

	g := goldie.New(t)
	g.Assert(t, "model_view", []byte(m.View()))
}

func TestModel_View_ScrollsToLatest(t *testing.T) {
	m := NewModel(&fakeTape{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 3})
	m.Update(MsgTapeUpdate{Update: &progrock.StatusUpdate{
		Vertexes: []*progrock.Vertex{
			{Id: "1", Name: "first@v1"},
			{Id: "2", Name: "second@v1"},
			{Id: "3", Name: "third@v1"},
		},
	}})

	view := m.View()
	assert.NotContains(t, view, "first@v1")
	assert.Contains(t, view, "second@v1")
	assert.Contains(t, view, "third@v1")
}

func TestModel_Truncate(t *testing.T) {
	m := NewModel(&fakeTape{})
	assert.Equal(t, "abcdef", m.truncate("abcdef", 0))

	m.width = 5
	assert.Equal(t, "abc…", m.truncate("abcdefgh", 1))
	assert.Empty(t, m.truncate("abcdefgh", 5))
}
