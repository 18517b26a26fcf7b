package controller

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/quartzclay/reclaim/internal/model"
)

var (
	promptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	pathStyle = lipgloss.NewStyle().Bold(true)
	helpStyle = lipgloss.NewStyle().Faint(true)
)

// confirmKeyMap binds the keys the confirmation prompt understands.
type confirmKeyMap struct {
	Yes  key.Binding
	No   key.Binding
	Quit key.Binding
}

func defaultConfirmKeys() confirmKeyMap {
	return confirmKeyMap{
		Yes:  key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "delete")),
		No:   key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "keep")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "keep and quit")),
	}
}

// confirmModel is the Bubble Tea model for a single yes/no deletion prompt.
type confirmModel struct {
	artifact model.Artifact
	keys     confirmKeyMap
	approved bool
	done     bool
}

func newConfirmModel(a model.Artifact) confirmModel {
	return confirmModel{artifact: a, keys: defaultConfirmKeys()}
}

// Init implements tea.Model.
func (m confirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		m.approved = true
		m.done = true

		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.No), key.Matches(keyMsg, m.keys.Quit):
		m.approved = false
		m.done = true

		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	body := fmt.Sprintf(
		"%s\n%s\n\n%s",
		pathStyle.Render(string(m.artifact.Path)),
		fmt.Sprintf("%.2f MB  ·  %s", m.artifact.SizeMB(), m.artifact.Category),
		helpStyle.Render("y delete · n keep · q quit"),
	)

	return promptBoxStyle.Render(body) + "\n"
}

// TUI confirms deletions through an interactive Bubble Tea prompt and reuses
// the SimpleUI rendering for reports.
type TUI struct {
	*SimpleUI
	in  io.Reader
	out io.Writer
}

// NewTUI creates a TUI over the command's streams.
func NewTUI(cmd *cobra.Command, in io.Reader) *TUI {
	return &TUI{
		SimpleUI: NewSimpleUI(cmd, in),
		in:       in,
		out:      cmd.OutOrStdout(),
	}
}

// Confirm implements UI with an interactive prompt. If the program cannot
// run (no terminal after all), it declines: a failed prompt never approves
// a deletion.
func (t *TUI) Confirm(a model.Artifact) bool {
	program := tea.NewProgram(
		newConfirmModel(a),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)

	final, err := program.Run()
	if err != nil {
		return false
	}

	m, ok := final.(confirmModel)
	if !ok {
		return false
	}

	return m.approved
}

// NewUI picks the interactive prompt when stdout is a terminal and the plain
// line-based UI otherwise.
func NewUI(cmd *cobra.Command, in io.Reader, tty bool) UI {
	if tty {
		return NewTUI(cmd, in)
	}

	return NewSimpleUI(cmd, in)
}
