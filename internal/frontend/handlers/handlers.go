// Package handlers drives a combat tracker session: it maps one line of input
// to one encounter operation and renders the result.
package handlers

import (
	"context"

	"github.com/cory-johannsen/exalted-combat/internal/frontend/telnet"
	"github.com/cory-johannsen/exalted-combat/internal/game/combat"
	"github.com/cory-johannsen/exalted-combat/internal/storage"
)

// Terminal is the line-oriented screen a session talks to. telnet.Conn and
// Console both implement it.
type Terminal interface {
	ReadInput() (telnet.Input, error)
	Write(data []byte) error
	WriteLine(text string) error
	WritePrompt(prompt string) error
	Clear() error
}

// Prompter asks the user for a value in the middle of a command. Both methods
// block until the user answers. An empty result means the user cancelled and
// the caller must not mutate anything.
type Prompter interface {
	Prompt(title string) (string, error)
	Select(title string, candidates []string) (string, error)
}

// EncounterStore saves and restores named encounters.
type EncounterStore interface {
	Save(ctx context.Context, name string, enc *combat.Encounter) error
	Load(ctx context.Context, name string) (*combat.Encounter, error)
	List(ctx context.Context) ([]storage.Summary, error)
}
