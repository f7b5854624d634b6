package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/recall/pkg/cache"
)

// Update handles all state updates for the TUI model.
// This is the main event loop handler for Bubble Tea.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.shouldQuit {
		return m, tea.Quit
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	var spinnerCmd tea.Cmd
	m.spinner, spinnerCmd = m.spinner.Update(msg)

	// The textarea is read-only while an answer is being generated.
	if !m.busy {
		m.textarea, tiCmd = m.textarea.Update(msg)
	}
	m.viewport, vpCmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.shouldQuit = true
			return m, tea.Quit
		case tea.KeyEnter:
			if !m.busy {
				return m.handleSubmit()
			}
		}

	case answerMsg:
		return m.handleAnswer(msg)

	case policySwitchedMsg:
		return m.handlePolicySwitched(msg)
	}

	return m, tea.Batch(tiCmd, vpCmd, spinnerCmd)
}

// handleWindowResize recalculates component sizes for the new terminal size.
func (m *model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	headerHeight := strings.Count(m.header, "\n") + 4 // header, tips, spacing
	footerHeight := 5                                 // input box, bottom bar
	viewportHeight := m.height - headerHeight - footerHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = viewportHeight
	}
	m.textarea.SetWidth(m.width - 6)
	m.refreshViewport()

	return m, nil
}

// handleSubmit processes the textarea content as a question or command.
func (m *model) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	m.textarea.Reset()
	if input == "" {
		return m, nil
	}

	if input == "exit" || input == "quit" {
		m.shouldQuit = true
		return m, tea.Quit
	}

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.appendLine(userStyle.Render("You: ") + input)
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, m.askCmd(input))
}

// askCmd runs the assistant in the background and delivers the answer as a
// message.
func (m *model) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{
			question: question,
			answer:   m.assistant.Answer(m.ctx, question),
		}
	}
}

// handleAnswer renders a completed answer into the transcript.
func (m *model) handleAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	label := userStyle.Render("Assistant: ")
	switch {
	case msg.answer.Cached:
		label = cachedStyle.Render("Assistant (cached): ")
	case msg.answer.Fallback:
		label = errorStyle.Render("Assistant: ")
	}
	m.appendLine(label + answerStyle.Render(msg.answer.Text))
	m.appendLine("")
	return m, nil
}

// handleCommand dispatches a slash command.
func (m *model) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/help":
		m.appendLine(tipsStyle.Render("Commands: /policy [exact|ignored], /stats, /help, exit"))
		m.appendLine("")
	case "/stats":
		c := m.assistant.Cache()
		m.appendLine(tipsStyle.Render(fmt.Sprintf("Policy: %s, answers: %d, store: %s",
			c.ActivePolicy(), c.Len(), c.StorePath())))
		m.appendLine("")
	case "/policy":
		if len(fields) == 1 {
			m.appendLine(tipsStyle.Render(fmt.Sprintf("Matching policy: %s", m.assistant.Cache().ActivePolicy())))
			m.appendLine("")
			return m, nil
		}
		policy, err := cache.ParsePolicy(fields[1])
		if err != nil {
			m.appendLine(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			m.appendLine("")
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, m.switchPolicyCmd(policy))
	default:
		m.appendLine(errorStyle.Render(fmt.Sprintf("Unknown command %s. Type /help for commands.", fields[0])))
		m.appendLine("")
	}
	return m, nil
}

// switchPolicyCmd merges and persists the variant switch off the UI loop.
// Merging can rewrite a whole store file, so it gets the same treatment as a
// model call.
func (m *model) switchPolicyCmd(policy cache.PunctuationPolicy) tea.Cmd {
	return func() tea.Msg {
		return policySwitchedMsg{
			policy: policy,
			err:    m.assistant.Cache().SwitchPolicy(policy),
		}
	}
}

func (m *model) handlePolicySwitched(msg policySwitchedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.appendLine(errorStyle.Render(fmt.Sprintf("Error: policy unchanged: %v", msg.err)))
	} else {
		m.appendLine(tipsStyle.Render(fmt.Sprintf("Matching policy: %s", msg.policy)))
	}
	m.appendLine("")
	return m, nil
}

// appendLine adds a line to the transcript and scrolls to the bottom.
func (m *model) appendLine(line string) {
	m.content.WriteString(line)
	m.content.WriteString("\n")
	m.refreshViewport()
}

func (m *model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
}
