package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/LadyAlena/sql-homeworks-6/internal/report"
	"github.com/LadyAlena/sql-homeworks-6/internal/seed"
)

var (
	// Color styles for terminal output
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Success prints a success message
func Success(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprint(w, successStyle.Render("✓ "))
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

// Warning prints a warning message
func Warning(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprint(w, warningStyle.Render("⚠ "))
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

// Error prints an error message
func Error(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprint(w, errorStyle.Render("✗ "))
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

// Info prints an info message
func Info(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprint(w, infoStyle.Render("ℹ "))
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

// Muted prints a muted message
func Muted(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func Section(w io.Writer, title string) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, primaryStyle.Render(title))
	_, _ = fmt.Fprintln(w, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
	_, _ = fmt.Fprintln(w)
}

// PublisherShops prints the shop listing of one publisher: a header line and
// one " - <shop>" line per shop.
func PublisherShops(w io.Writer, res *report.PublisherShops) {
	_, _ = fmt.Fprintf(w, "Books of the publisher '%s' are sold in shops:\n", res.Publisher)
	for _, name := range res.Shops {
		_, _ = fmt.Fprintf(w, " - %s\n", name)
	}
	if len(res.Shops) == 0 {
		Muted(w, "   (no shops)")
	}
}

// SeedSummary prints the row counts of a seed run.
func SeedSummary(w io.Writer, res *seed.Result, seedValue uint64) {
	Section(w, "Seeded tables")

	rows := []struct {
		table string
		n     int
	}{
		{"publisher", len(res.Publishers)},
		{"book", len(res.Books)},
		{"shop", len(res.Shops)},
		{"stock", len(res.Stocks)},
		{"sale", len(res.Sales)},
	}
	label := lipgloss.NewStyle().Width(12)
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "  %s %s\n", label.Render(r.table), infoStyle.Render(fmt.Sprint(r.n)))
	}
	_, _ = fmt.Fprintln(w)
	Muted(w, "seed %d (replay with --seed %d)", seedValue, seedValue)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ClearScreen clears w when it is a terminal and does nothing otherwise.
func ClearScreen(w io.Writer) {
	if IsTerminal(w) {
		_, _ = fmt.Fprint(w, "\033[H\033[2J")
	}
}
