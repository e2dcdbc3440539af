package notify

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor reports whether output should be colorized.
// It honors the conventional environment variables:
//
//   - NO_COLOR disables color unconditionally (https://no-color.org)
//   - CLICOLOR_FORCE enables color even when stdout is not a terminal
//   - CLICOLOR=0 disables color
//
// Otherwise color is used only when stdout is a terminal.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force := os.Getenv("CLICOLOR_FORCE"); force != "" && force != "0" {
		return true
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	return IsTerminal()
}
