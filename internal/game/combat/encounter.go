package combat

import (
	"fmt"
	"slices"
)

// Encounter owns the initiative-ordered roster and the combat log.
//
// Invariant: after every exported mutating method returns, the roster is
// sorted ascending by SortKey. Callers that mutate a Character obtained from At
// must call Resort afterwards.
//
// Positions are 1-based throughout, matching the cursor shown to the user.
// Encounter is not safe for concurrent use.
type Encounter struct {
	roster []*Character
	log    []string
	rules  Rules
	roller Roller
}

// NewEncounter creates an encounter over roster. The characters are used as
// given; call ResetAll or Reset on each to roll join battle.
//
// Precondition: roller must be non-nil.
// Postcondition: the roster is sorted.
func NewEncounter(roster []*Character, rules Rules, roller Roller) *Encounter {
	e := &Encounter{
		roster: append([]*Character(nil), roster...),
		rules:  rules,
		roller: roller,
	}
	e.Resort()
	return e
}

// Restore rebuilds an encounter from saved state without rolling anything.
//
// Postcondition: the roster is sorted and the log equals log.
func Restore(roster []*Character, log []string, rules Rules, roller Roller) *Encounter {
	e := NewEncounter(roster, rules, roller)
	e.log = append([]string(nil), log...)
	return e
}

// Rules returns the table options the encounter was created with.
func (e *Encounter) Rules() Rules { return e.rules }

// Len returns the roster size.
func (e *Encounter) Len() int { return len(e.roster) }

// At returns the character at the 1-based position pos.
//
// Precondition: 1 <= pos <= Len(). Violations are programming errors and panic.
func (e *Encounter) At(pos int) *Character {
	if pos < 1 || pos > len(e.roster) {
		panic(fmt.Sprintf("combat: position %d out of range [1, %d]", pos, len(e.roster)))
	}
	return e.roster[pos-1]
}

// Characters returns the roster in turn order. The slice is a copy; the
// characters are shared.
func (e *Encounter) Characters() []*Character {
	return append([]*Character(nil), e.roster...)
}

// ClampPosition limits pos to [1, Len()].
func (e *Encounter) ClampPosition(pos int) int {
	switch {
	case pos > len(e.roster):
		return len(e.roster)
	case pos < 1:
		return 1
	default:
		return pos
	}
}

// Add appends c to the roster as is.
//
// Postcondition: Len() grows by one; the roster is sorted.
func (e *Encounter) Add(c *Character) {
	e.roster = append(e.roster, c)
	e.Resort()
}

// Join rolls join battle for c under the encounter's rules, then adds it.
func (e *Encounter) Join(c *Character) {
	c.Reset(e.roller, e.rules.ClampJoinBattle)
	e.Add(c)
}

// Remove deletes the character at pos.
//
// Postcondition: returns ErrLastCharacter without mutating when Len() <= 1.
// The caller must clamp any cursor with ClampPosition.
func (e *Encounter) Remove(pos int) error {
	if len(e.roster) <= 1 {
		return ErrLastCharacter
	}
	e.At(pos)
	e.roster = slices.Delete(e.roster, pos-1, pos)
	e.Resort()
	return nil
}

// NewRound clears every done flag. Initiative and health are untouched.
func (e *Encounter) NewRound() {
	for _, c := range e.roster {
		c.Ready()
	}
	e.Resort()
}

// ResetAll replaces the roster with a freshly rolled one from src and clears
// the log. On error the encounter is unchanged.
func (e *Encounter) ResetAll(src TemplateSource) error {
	roster, err := src.LoadRoster()
	if err != nil {
		return fmt.Errorf("loading roster: %w", err)
	}
	for _, c := range roster {
		c.Reset(e.roller, e.rules.ClampJoinBattle)
	}
	e.roster = roster
	e.log = nil
	e.Resort()
	return nil
}

// CountByName returns how many roster entries carry name.
func (e *Encounter) CountByName(name string) int {
	n := 0
	for _, c := range e.roster {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Log appends message to the combat log.
func (e *Encounter) Log(message string) {
	e.log = append(e.log, message)
}

// Logs returns a copy of the full combat log, oldest first.
func (e *Encounter) Logs() []string {
	return append([]string(nil), e.log...)
}

// LogTail returns up to the last n log entries, oldest first.
func (e *Encounter) LogTail(n int) []string {
	if n <= 0 {
		return nil
	}
	start := max(len(e.log)-n, 0)
	return append([]string(nil), e.log[start:]...)
}

// Resort re-establishes turn order. The sort is stable so equal keys keep
// their relative order.
func (e *Encounter) Resort() {
	slices.SortStableFunc(e.roster, func(a, b *Character) int {
		return a.SortKey() - b.SortKey()
	})
}
