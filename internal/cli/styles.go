package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/seanhalberthal/uncomment/internal/types"
)

// Colour palette for results and UI elements.
//
//nolint:misspell // lipgloss uses American spelling (Color) for its API
var (
	// Status colours
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))             // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // Red
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))            // Yellow

	// UI elements
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // Grey
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")) // Dark grey
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))  // Cyan
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("141")) // Purple
	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Symbols for output.
const (
	checkMark = "✓"
	crossMark = "✗"
	arrow     = "→"
)

// formatSuccess returns a styled success message.
func formatSuccess(msg string) string {
	return successStyle.Render(checkMark+" ") + msg
}

// formatError returns a styled error message.
func formatError(msg string) string {
	return errorStyle.Render(crossMark+" ") + msg
}

// formatWarning returns a styled warning message.
func formatWarning(msg string) string {
	return warnStyle.Render("! ") + msg
}

// formatLabel returns a styled label (for key-value pairs).
func formatLabel(label string) string {
	return labelStyle.Render(label + ":")
}

// formatHeader returns a styled header.
func formatHeader(text string) string {
	return headerStyle.Render(text)
}

// formatPath returns a styled file path.
func formatPath(path string) string {
	return pathStyle.Render(path)
}

// formatLines returns a styled "before → after" line count.
func formatLines(before, after int) string {
	return mutedStyle.Render(fmt.Sprintf("%d %s %d lines", before, arrow, after))
}

// formatDivider returns a styled divider line.
func formatDivider(width int) string {
	return dividerStyle.Render(strings.Repeat("─", width))
}

// formatMuted returns muted/dimmed text.
func formatMuted(text string) string {
	return mutedStyle.Render(text)
}

// printStyledError prints a styled error to stderr.
func printStyledError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(os.Stderr, formatError(msg))
}

// languageTable renders the catalog as a bordered table.
func languageTable(langs []types.Language) string {
	rows := make([][]string, 0, len(langs))
	for _, l := range langs {
		rows = append(rows, []string{l.Value, l.Label})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dividerStyle).
		Headers("ID", "LABEL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return idStyle.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		}).
		String()
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// startSpinner shows progress on stderr when it is a terminal. The returned
// function stops it.
func startSpinner(msg string) func() {
	if !isTerminal(os.Stderr) {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}
