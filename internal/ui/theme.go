// Package ui renders scan output: a live bubbletea view while sizes
// stream in on a terminal, and a plain table everywhere else.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	isatty "github.com/mattn/go-isatty"
)

// Color tokens shared by every view.
var (
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorText    = lipgloss.Color("#FAFAFA")
	ColorTextDim = lipgloss.Color("#A0A0B0")
	ColorMuted   = lipgloss.Color("#6B6B7B")
	ColorSuccess = lipgloss.Color("#04B575")
	ColorWarning = lipgloss.Color("#FFB454")
	ColorError   = lipgloss.Color("#FF5F87")
)

// Icons used across views.
const (
	IconBullet  = "•"
	IconFolder  = "▸"
	IconWarning = "!"
	IconError   = "✗"
	IconCheck   = "✓"
	IconPipe    = "│"
)

// HintBarStyle renders the keybinding/footer line.
func HintBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted)
}

// TitleStyle renders section headers.
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
}

// RiskStyle picks a color per risk label.
func RiskStyle(risk string) lipgloss.Style {
	switch risk {
	case "low":
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	case "medium":
		return lipgloss.NewStyle().Foreground(ColorWarning)
	default:
		return lipgloss.NewStyle().Foreground(ColorError)
	}
}

// IsInteractive reports whether stdout is a terminal the live view can
// draw on.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
