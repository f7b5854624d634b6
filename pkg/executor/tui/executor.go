// Package tui provides a terminal user interface executor for the recall
// assistant, offering an interactive chat view over the answer cache.
//
// The TUI codebase is split into multiple files for better organization:
// - executor.go: Main executor implementation and program lifecycle
// - model.go: Core model structure and state
// - update.go: Bubble Tea Update function and message handling
// - view.go: Bubble Tea View function and rendering
// - styles.go: Color schemes and styling
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/recall/pkg/assistant"
)

// Executor is a TUI-based executor that provides an interactive chat
// interface over the assistant.
type Executor struct {
	assistant *assistant.Assistant
	program   *tea.Program
	header    string // Custom header text (optional)
}

// NewExecutor creates a new TUI executor for the given assistant.
func NewExecutor(a *assistant.Assistant, headerText string) *Executor {
	return &Executor{
		assistant: a,
		header:    headerText,
	}
}

// Run starts the TUI executor and blocks until the user exits.
func (e *Executor) Run(ctx context.Context) error {
	m := initialModel()
	m.assistant = e.assistant
	m.ctx = ctx
	if e.header != "" {
		m.header = e.header
	}

	e.program = tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := e.program.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to run TUI program: %w", err)
	}

	return nil
}
