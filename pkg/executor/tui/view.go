package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

const defaultHeader = `
	██████╗ ███████╗ ██████╗ █████╗ ██╗     ██╗
	██╔══██╗██╔════╝██╔════╝██╔══██╗██║     ██║
	██████╔╝█████╗  ██║     ███████║██║     ██║
	██╔══██╗██╔══╝  ██║     ██╔══██║██║     ██║
	██║  ██║███████╗╚██████╗██║  ██║███████╗███████╗
	╚═╝  ╚═╝╚══════╝ ╚═════╝╚═╝  ╚═╝╚══════╝╚══════╝`

// View renders the entire TUI interface.
// This is called by Bubble Tea whenever the UI needs to be redrawn.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := headerStyle.Render(m.header)
	tips := m.buildTips()
	loadingIndicator := m.buildLoadingIndicator()
	inputBox := m.buildInputBox()
	bottomBar := m.buildBottomBar()

	if m.busy {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			header,
			tips,
			m.viewport.View(),
			loadingIndicator,
			inputBox,
			bottomBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		tips,
		m.viewport.View(),
		inputBox,
		bottomBar,
	)
}

// buildTips renders usage tips under the header.
func (m *model) buildTips() string {
	return tipsStyle.Render(`  Tips: Ask questions • Enter to send • /policy to change matching • Ctrl+C to exit`)
}

// buildLoadingIndicator renders the spinner while an answer is pending.
func (m *model) buildLoadingIndicator() string {
	if !m.busy {
		return ""
	}
	loadingStyle := lipgloss.NewStyle().
		Foreground(salmonPink).
		Width(m.width - 4).
		Padding(0, 2)
	return loadingStyle.Render(fmt.Sprintf("%s Thinking...", m.spinner.View()))
}

// buildInputBox renders the text input area.
func (m *model) buildInputBox() string {
	return inputBoxStyle.Width(m.width - 4).Render(m.textarea.View())
}

// buildBottomBar renders the bottom status bar with cache statistics.
func (m *model) buildBottomBar() string {
	c := m.assistant.Cache()
	return statusBarStyle.Width(m.width).Render(
		fmt.Sprintf("◆ Policy: %s | Cached answers: %d", c.ActivePolicy(), c.Len()),
	)
}
