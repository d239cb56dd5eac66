// Package telnet provides the Telnet transport for the combat tracker, with
// ANSI styling for the roster display.
package telnet

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ANSI escape code constants for terminal styling.
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Reverse = "\033[7m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightBlack = "\033[90m"

	// ClearScreen erases the display and moves the cursor home.
	ClearScreen = "\033[2J\033[H"
)

// Colorize wraps text with the given ANSI color code and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
// Postcondition: Returns text wrapped with the color code and Reset.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI color code.
func Colorf(color, format string, args ...any) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

// StripANSI removes ANSI CSI escape sequences (colors, screen clearing and
// cursor movement) from a string.
//
// Postcondition: Returns text with every complete \033[...<final> sequence
// removed; an unterminated sequence is kept as is.
func StripANSI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if end := csiEnd(s, i+2); end > 0 {
				i = end
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// csiEnd returns the index just past the final byte of a CSI sequence whose
// parameters start at i, or 0 if the sequence is unterminated.
func csiEnd(s string, i int) int {
	for ; i < len(s); i++ {
		switch c := s[i]; {
		case c >= 0x40 && c <= 0x7e:
			return i + 1
		case c < 0x20 || c > 0x3f:
			return 0
		}
	}
	return 0
}

// PadRight pads styled text with spaces to width printable characters.
// Text already at or beyond width is returned unchanged.
func PadRight(s string, width int) string {
	n := utf8.RuneCountInString(StripANSI(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
