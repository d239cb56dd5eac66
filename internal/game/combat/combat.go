// Package combat implements the Exalted combat resolution engine: combatant
// state, the initiative-ordered encounter roster, and the two-phase attack
// protocol.
package combat

import "errors"

// Sentinel errors for rejected operations. They describe user-visible
// conditions; the caller reports them and leaves state unchanged.
var (
	// ErrLastCharacter is returned when removing the only remaining combatant.
	ErrLastCharacter = errors.New("cannot remove last character")
	// ErrNotPending is returned when resolving with no attack selected.
	ErrNotPending = errors.New("no attack pending")
	// ErrSourceCrashed is returned when a crashed combatant attempts a decisive attack.
	ErrSourceCrashed = errors.New("crashed characters cannot make decisive attacks")
	// ErrSourceDead is returned when a dead combatant attempts any attack.
	ErrSourceDead = errors.New("dead characters cannot attack")
)

// Roller rolls a d10 pool and returns its signed total (successes, or the
// negated botch count when there are none).
type Roller interface {
	RollPool(count int) int
}

// TemplateSource supplies the initial roster for an encounter.
type TemplateSource interface {
	// LoadRoster returns fresh, not yet reset characters.
	LoadRoster() ([]*Character, error)
}

// Rules holds the table options that vary between groups.
type Rules struct {
	// ClampJoinBattle floors rolled starting initiative at 0.
	ClampJoinBattle bool
	// CrashRecoveryTurns is the number of turns a combatant may finish while
	// crashed before initiative is forced back to 3. Zero disables recovery.
	CrashRecoveryTurns int
}

// DefaultRules returns the rules used when none are configured.
func DefaultRules() Rules {
	return Rules{ClampJoinBattle: true}
}
