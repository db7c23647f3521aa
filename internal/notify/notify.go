// Package notify is the user-facing notification sink: the console's
// equivalent of toasts. Controllers and coordinators emit exactly one
// notification per failed or completed operation.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Notifier receives user-visible outcome messages.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Terminal writes styled notifications to a terminal writer.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer

	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
}

// NewTerminal creates a terminal notifier. A nil writer defaults to stderr.
func NewTerminal(w io.Writer) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	return &Terminal{
		w: w,
		successStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		errorStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
	}
}

// Success prints a success notification.
func (t *Terminal) Success(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, t.successStyle.Render("✓ "+message))
}

// Error prints an error notification.
func (t *Terminal) Error(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, t.errorStyle.Render("✗ "+message))
}

// Discard drops all notifications. Useful in tests and quiet mode.
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Error(string)   {}
