// Package notify provides terminal styling for capstan CLI output.
// Uses the One color theme with adaptive light/dark mode support.
package notify

import (
	"github.com/charmbracelet/lipgloss"
)

// One theme color palette (Atom One Light / One Dark)
var (
	// Semantic status colors (adaptive light/dark)
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#50a14f", // one light green
		Dark:  "#98c379", // one dark green
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#c18401", // one light yellow
		Dark:  "#e5c07b", // one dark yellow
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#e45649", // one light red
		Dark:  "#e06c75", // one dark red
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#a0a1a7", // one light muted
		Dark:  "#5c6370", // one dark muted
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#4078f2", // one light blue
		Dark:  "#61afef", // one dark blue
	}
)

// Status styles - consistent across all commands
var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
)

// StageStyle for pipeline stage headers - bold with accent color
var StageStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

// Status icons - consistent semantic indicators
const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconSkip = "-"
	IconInfo = "ℹ"
	IconStep = "→"
)

// Separator printed between pipeline stages
const Separator = "──────────────────────────────────────────"
