package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type actionMsg struct {
	details []string
	err     error
}

type model struct {
	title   string
	action  func(context.Context) ([]string, error)
	done    bool
	details []string
	err     error
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		details, err := m.action(context.Background())
		return actionMsg{details: details, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionMsg:
		m.done = true
		m.details = msg.details
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	if !m.done {
		fmt.Fprintf(&b, "Running %s ...\n", m.title)
		return b.String()
	}
	if m.err != nil {
		fmt.Fprintf(&b, "FAILED %s: %v\n", m.title, m.err)
		return b.String()
	}
	fmt.Fprintf(&b, "OK %s\n", m.title)
	for _, d := range m.details {
		fmt.Fprintf(&b, "  %s\n", d)
	}
	return b.String()
}

// Run executes action behind a minimal terminal UI and returns its
// outcome once the action finishes.
func Run(title string, action func(context.Context) ([]string, error)) ([]string, error) {
	final, err := tea.NewProgram(model{title: title, action: action}).Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(model)
	if !ok {
		return nil, fmt.Errorf("unexpected final model %T", final)
	}
	return m.details, m.err
}
