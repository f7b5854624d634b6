package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/recall/pkg/assistant"
	"github.com/entrhq/recall/pkg/cache"
)

// model represents the state of the TUI application.
// It contains all components needed for the interactive terminal interface.
type model struct {
	// Bubble Tea components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// Assistant integration
	assistant *assistant.Assistant
	ctx       context.Context

	// Customization
	header string

	// Content buffer for the conversation transcript
	content *strings.Builder

	// Assistant state
	busy bool

	// Window dimensions
	width  int
	height int
	ready  bool

	// Application state
	shouldQuit bool
}

// answerMsg carries a completed assistant answer back into the update loop.
type answerMsg struct {
	question string
	answer   assistant.Answer
}

// policySwitchedMsg signals the outcome of a matching policy switch.
type policySwitchedMsg struct {
	policy cache.PunctuationPolicy
	err    error
}

// initialModel creates the TUI model with its components configured.
func initialModel() model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return model{
		textarea: ta,
		spinner:  sp,
		header:   defaultHeader,
		content:  &strings.Builder{},
		ctx:      context.Background(),
	}
}

// Init starts the cursor blink and spinner ticks.
func (m *model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}
