package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"golang.design/x/clipboard"
)

// ClipboardCopyMsg reports the outcome of a copy request
type ClipboardCopyMsg struct {
	Content string
	Success bool
	Error   string
}

// ClipboardFunc writes text to a clipboard
type ClipboardFunc func(text string) error

// SystemClipboard writes to the system clipboard
func SystemClipboard(text string) error {
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func copyToClipboard(write ClipboardFunc, content string) tea.Cmd {
	return func() tea.Msg {
		if err := write(content); err != nil {
			return ClipboardCopyMsg{Success: false, Error: err.Error()}
		}
		return ClipboardCopyMsg{Content: content, Success: true}
	}
}
