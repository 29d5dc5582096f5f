package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

// Logger wraps the charmbracelet logger to add a success level
type Logger struct {
	*log.Logger
}

// NewLogger creates a styled logger writing to w. Output that is not a
// terminal (CI logs, redirected files) switches to logfmt with timestamps.
func NewLogger(w io.Writer) *Logger {
	l := &Logger{Logger: log.New(w)}
	if !IsTerminal(w) {
		l.SetFormatter(log.LogfmtFormatter)
		l.SetReportTimestamp(true)
	}
	l.ConfigureStyles()
	return l
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetVerbosity maps the quiet and verbose flags onto a log level. Quiet wins.
func (l *Logger) SetVerbosity(quiet, verbose bool) {
	switch {
	case quiet:
		l.SetLevel(log.ErrorLevel)
	case verbose:
		l.SetLevel(log.DebugLevel)
	default:
		l.SetLevel(log.InfoLevel)
	}
}

// Success prints a success message with a green prefix
func (l *Logger) Success(msg interface{}, keyvals ...interface{}) {
	l.Helper()
	if l.GetLevel() > log.InfoLevel {
		return
	}
	label := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		SetString("SUCCESS").
		String()

	// Print avoids the default "INFO" prefix
	l.Print(fmt.Sprintf("%s %v", label, msg), keyvals...)
}

// ConfigureStyles applies the level colors
func (l *Logger) ConfigureStyles() {
	styles := log.DefaultStyles()

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Bold(true).
		Foreground(lipgloss.Color("63"))

	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO ").
		Bold(true).
		Foreground(lipgloss.Color("86"))

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN ").
		Bold(true).
		Foreground(lipgloss.Color("192"))

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Bold(true).
		Foreground(lipgloss.Color("204"))

	l.SetStyles(styles)
}
