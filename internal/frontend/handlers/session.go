package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/exalted-combat/internal/frontend/telnet"
	"github.com/cory-johannsen/exalted-combat/internal/game/combat"
	"github.com/cory-johannsen/exalted-combat/internal/game/dice"
	"github.com/cory-johannsen/exalted-combat/internal/game/npc"
)

// SessionConfig holds what every tracker session is built from.
type SessionConfig struct {
	// Source supplies the starting roster. Required.
	Source combat.TemplateSource
	// Dice supplies die faces. Nil selects the crypto source.
	Dice    dice.Source
	Catalog *npc.Catalog
	Store   EncounterStore
	Rules   combat.Rules
	LogTail int
}

// TrackerHandler implements telnet.SessionHandler. Every connection gets its
// own freshly rolled encounter.
type TrackerHandler struct {
	cfg    SessionConfig
	logger *zap.Logger
}

// NewTrackerHandler creates a TrackerHandler.
//
// Precondition: cfg.Source and logger must be non-nil.
func NewTrackerHandler(cfg SessionConfig, logger *zap.Logger) *TrackerHandler {
	if cfg.Dice == nil {
		cfg.Dice = dice.NewCryptoSource()
	}
	return &TrackerHandler{cfg: cfg, logger: logger}
}

// NewTracker rolls a new encounter from the roster source and wraps it in a
// Tracker that prompts on term.
//
// Postcondition: Returns an error if the roster cannot be loaded.
func (h *TrackerHandler) NewTracker(term Terminal, logger *zap.Logger) (*Tracker, error) {
	roller := dice.NewLoggedRoller(h.cfg.Dice, logger)
	enc := combat.NewEncounter(nil, h.cfg.Rules, roller)
	if err := enc.ResetAll(h.cfg.Source); err != nil {
		return nil, err
	}
	opts := TrackerOptions{
		Source:  h.cfg.Source,
		Catalog: h.cfg.Catalog,
		Store:   h.cfg.Store,
		LogTail: h.cfg.LogTail,
	}
	return NewTracker(enc, opts, NewTerminalPrompter(term), logger), nil
}

// HandleSession implements telnet.SessionHandler.
//
// Postcondition: Returns nil on clean quit, or an error if the session ended abnormally.
func (h *TrackerHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	logger := h.logger.With(zap.String("remote_addr", conn.RemoteAddr().String()))

	tracker, err := h.NewTracker(conn, logger)
	if err != nil {
		logger.Error("starting encounter", zap.Error(err))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "The encounter could not be started. Goodbye."))
		return err
	}
	logger.Info("session started", zap.Int("characters", tracker.Encounter().Len()))

	err = RunSession(ctx, conn, tracker)
	logger.Info("session ended",
		zap.Duration("session_duration", time.Since(start)),
		zap.Error(err),
	)
	return err
}

// RunSession redraws the screen and applies input until the user quits, the
// terminal fails, or ctx is cancelled.
//
// Postcondition: Returns nil on quit or end of input.
func RunSession(ctx context.Context, term Terminal, tracker *Tracker) error {
	for {
		select {
		case <-ctx.Done():
			_ = term.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := term.Clear(); err != nil {
			return fmt.Errorf("clearing screen: %w", err)
		}
		if err := term.Write([]byte(tracker.Render())); err != nil {
			return fmt.Errorf("rendering: %w", err)
		}
		if err := term.WritePrompt(telnet.Colorize(telnet.White, "> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		in, err := term.ReadInput()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		quit, err := tracker.HandleInput(ctx, in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if quit {
			_ = term.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			return nil
		}
	}
}
