package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"devclean/internal/core"
	"devclean/internal/scan"
)

type candidateMsg struct{ c *scan.Candidate }

type streamDoneMsg struct{}

func waitForCandidate(results <-chan *scan.Candidate) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-results
		if !ok {
			return streamDoneMsg{}
		}
		return candidateMsg{c: c}
	}
}

// StreamModel is the live scan view: one row per candidate as its size
// resolves, with a running total. Quitting early is safe; the sizing
// pipeline never blocks on the display.
type StreamModel struct {
	stream  *scan.Stream
	spinner spinner.Model

	rows    []*scan.Candidate
	total   int64
	done    bool
	aborted bool
	width   int
}

// NewStreamModel builds the live view over a sizing stream.
func NewStreamModel(stream *scan.Stream) StreamModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)
	return StreamModel{stream: stream, spinner: sp, width: 80}
}

// Candidates returns everything received, size-sorted.
func (m StreamModel) Candidates() []*scan.Candidate {
	out := append([]*scan.Candidate(nil), m.rows...)
	scan.SortBySize(out)
	return out
}

// Aborted reports whether the user quit before the stream finished.
func (m StreamModel) Aborted() bool { return m.aborted }

func (m StreamModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForCandidate(m.stream.Results))
}

func (m StreamModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.aborted = true
			return m, tea.Quit
		}
		return m, nil

	case candidateMsg:
		m.rows = append(m.rows, msg.c)
		if size, ok := msg.c.SizeBytes(); ok {
			m.total += size
		}
		return m, waitForCandidate(m.stream.Results)

	case streamDoneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m StreamModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n  %s Sizing %d of %d  %s\n\n",
		m.spinner.View(), len(m.rows), m.stream.Total, core.FormatSize(m.total)))

	// Tail of the most recent rows; the full table prints on exit.
	start := 0
	if show := 10; len(m.rows) > show {
		start = len(m.rows) - show
	}
	dim := lipgloss.NewStyle().Foreground(ColorTextDim)
	for _, c := range m.rows[start:] {
		b.WriteString(dim.Render(fmt.Sprintf("  %-10s %s", c.SizeHuman(), c.CleanablePath)))
		b.WriteString("\n")
	}

	b.WriteString("\n" + HintBarStyle().Render("  q quit") + "\n")
	return b.String()
}

// RunStream drives the live view to completion and returns the
// size-sorted candidates. The caller prints the final table; a live
// frame is transient.
func RunStream(stream *scan.Stream) ([]*scan.Candidate, bool, error) {
	p := tea.NewProgram(NewStreamModel(stream))
	final, err := p.Run()
	if err != nil {
		return nil, false, err
	}
	m := final.(StreamModel)
	return m.Candidates(), m.Aborted(), nil
}
