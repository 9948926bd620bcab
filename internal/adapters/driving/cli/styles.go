package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// outputStyles styles user-facing command output.
type outputStyles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

var styles = outputStyles{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
	Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
