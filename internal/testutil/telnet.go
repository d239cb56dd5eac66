package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cory-johannsen/exalted-combat/internal/frontend/telnet"
)

// TelnetClient drives a tracker session over a real TCP connection.
type TelnetClient struct {
	conn net.Conn
	t    *testing.T
	// raw holds bytes read but not yet returned by ReadUntil.
	raw []byte
}

// NewTelnetClient dials the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	start := time.Now()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}
	t.Cleanup(func() { conn.Close() })

	t.Logf("telnet client connected to %s [%s]", addr, time.Since(start))
	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil reads until substr appears in the output with Telnet commands and
// ANSI styling removed. Output consumed by one call is not seen by the next.
//
// Precondition: substr must be non-empty.
// Postcondition: Returns the decoded output up to and including the read that
// completed the match, or fails the test on timeout.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	tmp := make([]byte, 1024)
	for {
		text := telnet.StripANSI(string(telnet.FilterIAC(c.raw)))
		if strings.Contains(text, substr) {
			c.raw = c.raw[:0]
			return text
		}
		n, err := c.conn.Read(tmp)
		c.raw = append(c.raw, tmp[:n]...)
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, text, err)
		}
	}
}

// Send writes a line of text to the server, appending \r\n.
//
// Precondition: text should not contain trailing newline characters.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Escape sends a bare ESC line, which cancels the current command.
func (c *TelnetClient) Escape() {
	c.t.Helper()
	c.Send(string(telnet.ESC))
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
