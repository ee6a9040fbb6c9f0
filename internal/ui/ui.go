// Package ui styles the one-line verdicts printed at the end of each command.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleSuccess = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleSubtle  = lipgloss.NewStyle().Foreground(colorGray)
)

// Level selects the style of a status line
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// Printer writes status lines, styled only when the destination is a terminal
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a printer for w. Color is enabled when w is a TTY and
// NO_COLOR is unset.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: isTerminal(w) && os.Getenv("NO_COLOR") == ""}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *Printer) style(level Level) lipgloss.Style {
	switch level {
	case LevelSuccess:
		return styleSuccess
	case LevelWarning:
		return styleWarning
	case LevelError:
		return styleError
	}
	return styleSubtle
}

// Status prints one line at the given level
func (p *Printer) Status(level Level, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if p.color {
		line = p.style(level).Render(line)
	}
	fmt.Fprintln(p.w, line)
}

// Title prints a heading line
func (p *Printer) Title(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if p.color {
		line = styleTitle.Render(line)
	}
	fmt.Fprintln(p.w, line)
}

func (p *Printer) Success(format string, args ...any) { p.Status(LevelSuccess, format, args...) }
func (p *Printer) Warning(format string, args ...any) { p.Status(LevelWarning, format, args...) }
func (p *Printer) Error(format string, args ...any)   { p.Status(LevelError, format, args...) }
func (p *Printer) Info(format string, args ...any)    { p.Status(LevelInfo, format, args...) }
