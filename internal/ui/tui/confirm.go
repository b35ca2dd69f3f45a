// Package tui provides interactive terminal UI components using BubbleTea.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmKeyMap defines the key bindings for the confirmation prompt.
type confirmKeyMap struct {
	Yes  key.Binding
	No   key.Binding
	Quit key.Binding
}

func defaultConfirmKeyMap() confirmKeyMap {
	return confirmKeyMap{
		Yes: key.NewBinding(
			key.WithKeys("y", "Y", "enter"),
			key.WithHelp("y/enter", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "no"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "abort"),
		),
	}
}

// Styles for the confirmation prompt.
var confirmStyles = struct {
	Title  lipgloss.Style
	Detail lipgloss.Style
	Help   lipgloss.Style
}{
	Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Detail: lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1),
	Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
}

// ConfirmModel is the BubbleTea model for a yes/no confirmation.
type ConfirmModel struct {
	prompt   string
	detail   string
	keys     confirmKeyMap
	answered bool
	answer   bool
}

// NewConfirmModel creates a confirmation model. detail is an optional second
// line shown dimmed below the prompt.
func NewConfirmModel(prompt, detail string) ConfirmModel {
	return ConfirmModel{
		prompt: prompt,
		detail: detail,
		keys:   defaultConfirmKeyMap(),
	}
}

// Init implements tea.Model.
func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Yes):
			m.answered = true
			m.answer = true
			return m, tea.Quit
		case key.Matches(keyMsg, m.keys.No), key.Matches(keyMsg, m.keys.Quit):
			m.answered = true
			m.answer = false
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m ConfirmModel) View() string {
	if m.answered {
		return ""
	}
	view := confirmStyles.Title.Render(m.prompt) + "\n"
	if m.detail != "" {
		view += confirmStyles.Detail.Render(m.detail) + "\n"
	}
	view += confirmStyles.Help.Render("y/enter: yes • n/esc: no") + "\n"
	return view
}

// Answer returns the operator's answer once the model has quit.
func (m ConfirmModel) Answer() bool {
	return m.answered && m.answer
}

// Confirmer runs confirmation prompts as interactive BubbleTea programs.
// It satisfies the ui.Confirmer interface.
type Confirmer struct {
	// Detail is an optional dimmed context line shown under every prompt.
	Detail string
}

// Confirm displays the prompt and waits for a yes/no answer.
func (c Confirmer) Confirm(prompt string) (bool, error) {
	p := tea.NewProgram(NewConfirmModel(prompt, c.Detail))
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	m, ok := final.(ConfirmModel)
	if !ok {
		return false, fmt.Errorf("unexpected model type %T", final)
	}
	return m.Answer(), nil
}
