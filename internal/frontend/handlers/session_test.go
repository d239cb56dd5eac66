package handlers

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/exalted-combat/internal/config"
	"github.com/cory-johannsen/exalted-combat/internal/frontend/telnet"
	"github.com/cory-johannsen/exalted-combat/internal/game/combat"
	"github.com/cory-johannsen/exalted-combat/internal/game/dice"
	"github.com/cory-johannsen/exalted-combat/internal/testutil"
)

func TestConsole_ReadInput(t *testing.T) {
	c := NewConsole(strings.NewReader("j\r\n\x1b\n\x1b[A\nlast"), &bytes.Buffer{})

	want := []telnet.Input{{Text: "j"}, {Cancel: true}, {Text: "k"}, {Text: "last"}}
	for _, w := range want {
		in, err := c.ReadInput()
		require.NoError(t, err)
		assert.Equal(t, w, in)
	}
	_, err := c.ReadInput()
	assert.Error(t, err)
}

func TestRunSession_QuitsOnKey(t *testing.T) {
	tr, _ := newTestTracker(t, TrackerOptions{})
	var out bytes.Buffer
	err := RunSession(context.Background(), NewConsole(strings.NewReader("j\nq\n"), &out), tr)
	require.NoError(t, err)

	assert.Equal(t, 2, tr.Cursor())
	assert.Contains(t, out.String(), telnet.ClearScreen)
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestRunSession_EndOfInput(t *testing.T) {
	tr, _ := newTestTracker(t, TrackerOptions{})
	var out bytes.Buffer
	err := RunSession(context.Background(), NewConsole(strings.NewReader(""), &out), tr)
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "Participants")
}

func TestRunSession_ContextCancelled(t *testing.T) {
	tr, _ := newTestTracker(t, TrackerOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := RunSession(ctx, NewConsole(strings.NewReader("q\n"), &out), tr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, out.String(), "shutting down")
}

func TestRunSession_PromptsThroughTerminal(t *testing.T) {
	term := &fakeTerminal{inputs: []telnet.Input{
		{Text: KeyInitiative}, {Text: "1"}, {Text: KeyQuit},
	}}
	h := NewTrackerHandler(SessionConfig{
		Source: staticSource{},
		Dice:   &dice.FixedSource{Values: []int{4}},
		Rules:  combat.DefaultRules(),
	}, zaptest.NewLogger(t))
	tr, err := h.NewTracker(term, zaptest.NewLogger(t))
	require.NoError(t, err)
	for _, c := range tr.Encounter().Characters() {
		assert.Equal(t, combat.JoinBattleBonus, c.Initiative, "a blank pool rolls no successes")
	}

	require.NoError(t, RunSession(context.Background(), term, tr))
	enc := tr.Encounter()
	assert.Equal(t, "Orc", enc.At(1).Name)
	assert.Equal(t, 1, enc.At(2).Initiative)
}

func TestTrackerHandler_NewTrackerFails(t *testing.T) {
	h := NewTrackerHandler(SessionConfig{Source: staticSource{err: errors.New("missing file")}}, zaptest.NewLogger(t))
	_, err := h.NewTracker(&fakeTerminal{}, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "missing file")
}

func TestTrackerHandler_OverTelnet(t *testing.T) {
	h := NewTrackerHandler(SessionConfig{
		Source: staticSource{},
		Dice:   &dice.FixedSource{Values: []int{4}},
		Rules:  combat.DefaultRules(),
	}, zaptest.NewLogger(t))
	acc := telnet.NewAcceptor(config.TelnetConfig{
		Host:         "127.0.0.1",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}, h, zaptest.NewLogger(t))

	errCh := make(chan error, 1)
	go func() { errCh <- acc.ListenAndServe() }()
	require.Eventually(t, func() bool { return acc.IsRunning() && acc.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	t.Cleanup(func() {
		acc.Stop()
		assert.NoError(t, <-errCh)
	})

	client := testutil.NewTelnetClient(t, acc.Addr())
	screen := client.ReadUntil("Participants", 2*time.Second)
	assert.NotContains(t, screen, "\x1b")

	client.Send(KeyWithering)
	client.ReadUntil("select the target", 2*time.Second)
	client.Send(KeyDown)
	client.Send(KeyWithering)
	client.ReadUntil("Damage (-1: miss):", 2*time.Second)
	client.Send("2")
	client.ReadUntil("Hero hit Orc for 2 withering damage", 2*time.Second)

	client.Send(KeyDecisive)
	client.ReadUntil("select the target", 2*time.Second)
	client.Escape()
	client.ReadUntil("Attack cancelled.", 2*time.Second)

	client.Send(KeyQuit)
	client.ReadUntil("Goodbye!", 2*time.Second)
}
