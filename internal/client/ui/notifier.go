package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ConsoleNotifier prints one styled line per notification.
type ConsoleNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{w: w}
}

func (n *ConsoleNotifier) Success(msg string) { n.print(SuccessStyle, "✓", msg) }
func (n *ConsoleNotifier) Info(msg string)    { n.print(DimStyle, "i", msg) }
func (n *ConsoleNotifier) Warning(msg string) { n.print(WarningStyle, "!", msg) }
func (n *ConsoleNotifier) Error(msg string)   { n.print(ErrorStyle, "✗", msg) }

func (n *ConsoleNotifier) print(style lipgloss.Style, icon, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, style.Render(icon+" "+msg))
}
