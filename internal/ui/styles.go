// Package ui renders catalog output for the terminal.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Accent highlights slugs, file names and other references.
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))

	// Muted is for secondary info such as notes and timestamps.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold is used for group headers.
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA")).Bold(true)
)

// Status symbols. Success and failure are told apart by symbol, not color.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolPage    = "•"
)

// Success returns msg prefixed with a check mark.
func Success(msg string) string { return SymbolSuccess + " " + msg }

// Error returns msg prefixed with a cross.
func Error(msg string) string { return SymbolError + " " + msg }

// Hint returns muted hint text.
func Hint(msg string) string { return Muted.Render(msg) }

// Count returns "(n singular)" or "(n plural)".
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("(%d %s)", n, singular)
	}
	return fmt.Sprintf("(%d %s)", n, plural)
}
