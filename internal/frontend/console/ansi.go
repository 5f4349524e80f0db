// Package console provides the terminal front end of the generator: ANSI
// styling, a Notifier for warnings and errors, and an interactive Prompter.
package console

import "fmt"

// ANSI escape code constants for terminal styling.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text wrapped with the color code and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns the formatted text wrapped with color and Reset.
func Colorf(color, format string, args ...any) string {
	return Colorize(color, fmt.Sprintf(format, args...))
}

// StripANSI removes all \033[...m sequences from s. An unterminated sequence
// is kept as is.
func StripANSI(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			end := i + 2
			for end < len(s) && s[end] != 'm' {
				end++
			}
			if end < len(s) {
				i = end
				continue
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}

// Styler applies colors only when enabled, so the same call sites serve
// terminals and plain writers.
type Styler struct {
	Enabled bool
}

// Paint colorizes text when s is enabled and returns it unchanged otherwise.
func (s Styler) Paint(color, text string) string {
	if !s.Enabled {
		return text
	}
	return Colorize(color, text)
}

// Paintf formats and paints.
func (s Styler) Paintf(color, format string, args ...any) string {
	return s.Paint(color, fmt.Sprintf(format, args...))
}
