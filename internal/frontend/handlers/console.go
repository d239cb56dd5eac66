package handlers

import (
	"bufio"
	"io"
	"strings"

	"github.com/cory-johannsen/exalted-combat/internal/frontend/telnet"
)

// Console is a Terminal over a plain reader and writer, such as stdin and
// stdout.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a Console.
//
// Precondition: in and out must be non-nil.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// ReadInput reads and decodes the next line.
//
// Postcondition: Returns io.EOF only when no further text is available; a final
// unterminated line is returned first.
func (c *Console) ReadInput() (telnet.Input, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return telnet.Input{}, err
	}
	return telnet.ParseInput(strings.TrimRight(line, "\r\n")), nil
}

func (c *Console) Write(data []byte) error {
	_, err := c.out.Write(data)
	return err
}

func (c *Console) WriteLine(text string) error {
	return c.Write([]byte(text + "\r\n"))
}

func (c *Console) WritePrompt(prompt string) error {
	return c.Write([]byte(prompt))
}

func (c *Console) Clear() error {
	return c.Write([]byte(telnet.ClearScreen))
}
