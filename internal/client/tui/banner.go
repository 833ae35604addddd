package tui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/euronode/euronode/internal/client/ui"
)

// Banner is a Notifier that keeps only the latest message for the status line.
type Banner struct {
	mu    sync.Mutex
	style lipgloss.Style
	text  string
}

func NewBanner() *Banner { return &Banner{} }

func (b *Banner) set(style lipgloss.Style, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.style, b.text = style, text
}

func (b *Banner) Success(msg string) { b.set(ui.SuccessStyle, "✓ "+msg) }
func (b *Banner) Info(msg string)    { b.set(ui.DimStyle, msg) }
func (b *Banner) Warning(msg string) { b.set(ui.WarningStyle, "! "+msg) }
func (b *Banner) Error(msg string)   { b.set(ui.ErrorStyle, "✗ "+msg) }

// Text returns the latest message without styling.
func (b *Banner) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *Banner) View() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.text == "" {
		return ""
	}
	return b.style.Render(b.text)
}
