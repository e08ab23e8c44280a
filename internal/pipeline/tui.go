package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0077B6"))
	groupStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F56")).Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFBD2E"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// runTUI shows a live stage list until every stage has finished. ctrl+c
// cancels the remaining stages.
func runTUI(parent context.Context, title string, stages []Stage, out io.Writer) ([]*State, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	states, updates := Start(ctx, stages)
	program := tea.NewProgram(newModel(title, states, updates, cancel), tea.WithContext(ctx), tea.WithOutput(out))
	_, err := program.Run()

	// Drain so the runner goroutine can exit after an early quit.
	cancel()
	for u := range updates {
		states[u.Index].apply(u)
	}
	switch {
	case parent.Err() != nil:
		return states, nil
	case err != nil && !errors.Is(err, tea.ErrProgramKilled):
		return states, fmt.Errorf("pipeline view: %w", err)
	case !finished(states):
		return states, ErrInterrupted
	}
	return states, nil
}

func finished(states []*State) bool {
	for _, st := range states {
		if st.Status == StagePending || st.Status == StageRunning {
			return false
		}
	}
	return true
}

type model struct {
	title   string
	states  []*State
	updates <-chan Update
	cancel  context.CancelFunc
	spinner spinner.Model
	done    bool
}

type updateMsg Update
type doneMsg struct{}

func newModel(title string, states []*State, updates <-chan Update, cancel context.CancelFunc) model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(runningStyle))
	return model{title: title, states: states, updates: updates, cancel: cancel, spinner: s}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m model) listen() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(u)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.cancel()
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case updateMsg:
		u := Update(msg)
		if u.Index >= 0 && u.Index < len(m.states) {
			m.states[u.Index].apply(u)
		}
		return m, m.listen()
	case doneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var sb strings.Builder
	if m.title != "" {
		sb.WriteString(titleStyle.Render(m.title))
		sb.WriteString("\n\n")
	}
	for _, st := range m.states {
		sb.WriteString("  ")
		sb.WriteString(m.icon(st))
		sb.WriteString(" ")
		sb.WriteString(groupStyle.Render(st.Stage.Group + "/"))
		sb.WriteString(st.Stage.Name)
		if st.Status != StagePending {
			sb.WriteString(mutedStyle.Render(" " + formatDuration(st.Duration())))
		}
		if st.Status == StageFailed && st.Err != nil {
			sb.WriteString("\n    ")
			sb.WriteString(errorStyle.Render(st.Err.Error()))
		}
		sb.WriteString("\n")
	}
	if m.done {
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m model) icon(st *State) string {
	switch st.Status {
	case StageRunning:
		return m.spinner.View()
	case StageSuccess:
		return successStyle.Render("✓")
	case StageFailed:
		return errorStyle.Render("✗")
	default:
		return mutedStyle.Render("○")
	}
}
