package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/exalted-combat/internal/frontend/telnet"
	"github.com/cory-johannsen/exalted-combat/internal/game/combat"
	"github.com/cory-johannsen/exalted-combat/internal/game/npc"
	"github.com/cory-johannsen/exalted-combat/internal/storage"
)

// Command keys.
const (
	KeyDown       = "j"
	KeyUp         = "k"
	KeyDone       = "D"
	KeyInitiative = "i"
	KeyOnslaught  = "o"
	KeyHealth     = "h"
	KeyNewRound   = "n"
	KeyAddChar    = "a"
	KeyAddMonster = "m"
	KeyDecisive   = "d"
	KeyWithering  = "w"
	KeyRemove     = "r"
	KeyReset      = "x"
	KeyCancel     = "c"
	KeySave       = "s"
	KeyLoad       = "l"
	KeyQuit       = "q"
	KeyHelp       = "?"
)

// NewCharacterHealth is the maximum health given to characters added by hand.
const NewCharacterHealth = 7

// TrackerOptions holds a Tracker's optional collaborators.
type TrackerOptions struct {
	// Source reloads the starting roster on reset.
	Source combat.TemplateSource
	// Catalog supplies monsters; nil disables the add monster command.
	Catalog *npc.Catalog
	// Store saves and loads encounters; nil disables save and load.
	Store EncounterStore
	// LogTail is the number of log lines shown.
	LogTail int
}

// Tracker is one session's controller: it owns an encounter, the cursor and
// the attack protocol, and applies one command at a time.
// A Tracker is not safe for concurrent use.
type Tracker struct {
	enc    *combat.Encounter
	proto  combat.Protocol
	cursor int
	opts   TrackerOptions
	prompt Prompter
	logger *zap.Logger

	message  string
	showHelp bool
}

// NewTracker creates a Tracker over enc with the cursor on the first character.
//
// Precondition: enc, prompt, and logger must be non-nil.
func NewTracker(enc *combat.Encounter, opts TrackerOptions, prompt Prompter, logger *zap.Logger) *Tracker {
	if opts.LogTail <= 0 {
		opts.LogTail = 10
	}
	return &Tracker{
		enc:    enc,
		cursor: 1,
		opts:   opts,
		prompt: prompt,
		logger: logger,
	}
}

// Encounter returns the encounter currently being tracked. Loading a saved
// encounter replaces it.
func (t *Tracker) Encounter() *combat.Encounter { return t.enc }

// Cursor returns the 1-based highlighted roster position.
func (t *Tracker) Cursor() int { return t.cursor }

// Pending returns the attack awaiting its target, if any.
func (t *Tracker) Pending() (combat.AttackAction, bool) { return t.proto.Pending() }

// Message returns the status line produced by the last command.
func (t *Tracker) Message() string { return t.message }

// Render draws the full screen for the current state.
func (t *Tracker) Render() string {
	if t.showHelp {
		return RenderHelp()
	}
	var pending *combat.AttackAction
	if a, ok := t.proto.Pending(); ok {
		pending = &a
	}
	return RenderScreen(Screen{
		Encounter: t.enc,
		Cursor:    t.cursor,
		Pending:   pending,
		LogTail:   t.opts.LogTail,
		Message:   t.message,
	})
}

// HandleInput applies one line of input.
//
// Postcondition: Returns quit == true when the user asked to leave. A non-nil
// error means the terminal failed and the session cannot continue; rejected
// commands are reported through Message instead.
func (t *Tracker) HandleInput(ctx context.Context, in telnet.Input) (quit bool, err error) {
	t.message = ""
	t.showHelp = false
	if in.Cancel {
		t.cancel()
		return false, nil
	}

	switch in.Text {
	case "":
	case KeyDown:
		t.cursor = t.enc.ClampPosition(t.cursor + 1)
	case KeyUp:
		t.cursor = t.enc.ClampPosition(t.cursor - 1)
	case KeyDone:
		t.toggleDone()
	case KeyInitiative:
		return false, t.setStat("Initiative:", func(c *combat.Character, v int) { c.Initiative = v })
	case KeyOnslaught:
		return false, t.setStat("Onslaught:", func(c *combat.Character, v int) { c.Onslaught = v })
	case KeyHealth:
		return false, t.setStat("Health:", func(c *combat.Character, v int) { c.Health = v })
	case KeyNewRound:
		t.reorder(t.enc.NewRound)
		t.enc.Log("New round.")
	case KeyAddChar:
		return false, t.addCharacter()
	case KeyAddMonster:
		return false, t.addMonster()
	case KeyDecisive:
		return false, t.attack(combat.AttackDecisive)
	case KeyWithering:
		return false, t.attack(combat.AttackWithering)
	case KeyRemove:
		t.remove()
	case KeyReset:
		t.reset()
	case KeyCancel:
		t.cancel()
	case KeySave:
		return false, t.save(ctx)
	case KeyLoad:
		return false, t.load(ctx)
	case KeyQuit:
		return true, nil
	case KeyHelp:
		t.showHelp = true
	default:
		t.message = fmt.Sprintf("Unknown command %q. Press ? for help.", in.Text)
	}
	return false, nil
}

func (t *Tracker) selected() *combat.Character { return t.enc.At(t.cursor) }

func (t *Tracker) cancel() {
	if _, ok := t.proto.Pending(); ok {
		t.message = "Attack cancelled."
	}
	t.proto.Cancel()
}

// reorder runs a change that re-sorts the roster. A pending attack remembers
// its source by position, so it is cancelled if a different character ends up
// in that slot.
func (t *Tracker) reorder(change func()) {
	pending, ok := t.proto.Pending()
	var source *combat.Character
	if ok {
		source = t.enc.At(pending.Source)
	}
	change()
	if ok && t.enc.At(pending.Source) != source {
		t.proto.Cancel()
		t.message = fmt.Sprintf("Attack cancelled: %s moved.", source.DisplayName())
	}
}

func (t *Tracker) toggleDone() {
	c := t.selected()
	t.reorder(func() {
		if c.Done {
			c.Ready()
		} else {
			c.Done = true
		}
		t.enc.Resort()
	})
}

// promptInt asks for an integer. ok is false when the user cancelled or the
// answer did not parse, in which case nothing may change.
func (t *Tracker) promptInt(title string) (value int, ok bool, err error) {
	answer, err := t.prompt.Prompt(title)
	if err != nil || answer == "" {
		return 0, false, err
	}
	v, convErr := strconv.Atoi(answer)
	if convErr != nil {
		t.message = fmt.Sprintf("%q is not a number.", answer)
		return 0, false, nil
	}
	return v, true, nil
}

func (t *Tracker) setStat(title string, set func(*combat.Character, int)) error {
	c := t.selected()
	v, ok, err := t.promptInt(fmt.Sprintf("%s %s", c.DisplayName(), title))
	if err != nil || !ok {
		return err
	}
	t.reorder(func() {
		set(c, v)
		t.enc.Resort()
	})
	return nil
}

func (t *Tracker) addCharacter() error {
	name, err := t.prompt.Prompt("Name:")
	if err != nil || name == "" {
		return err
	}
	answer, err := t.prompt.Prompt("Join Battle Dice:")
	if err != nil {
		return err
	}
	// An unparsable pool counts as zero dice.
	jb, _ := strconv.Atoi(answer)
	c := combat.NewCharacter(name, max(jb, 0), NewCharacterHealth)
	t.message = fmt.Sprintf("%s added. Press i to set initiative.", c.DisplayName())
	t.reorder(func() { t.enc.Add(c) })
	return nil
}

func (t *Tracker) addMonster() error {
	if t.opts.Catalog == nil || t.opts.Catalog.Len() == 0 {
		t.message = "No monsters are loaded."
		return nil
	}
	name, err := t.prompt.Select("Monster:", t.opts.Catalog.Names())
	if err != nil || name == "" {
		return err
	}
	c, err := t.opts.Catalog.Spawn(name, t.enc.CountByName(name))
	if err != nil {
		t.message = err.Error()
		return nil
	}
	t.reorder(func() { t.enc.Join(c) })
	t.enc.Log(fmt.Sprintf("%s joins the battle at initiative %d.", c.DisplayName(), c.Initiative))
	return nil
}

func (t *Tracker) attack(kind combat.AttackKind) error {
	switch t.proto.Select(kind, t.cursor) {
	case combat.TransitionBegan:
		t.message = fmt.Sprintf("%s %s attack: select the target and press %s again.",
			t.selected().DisplayName(), kind, attackKey(kind))
		return nil
	case combat.TransitionIgnored:
		pending, _ := t.proto.Pending()
		t.message = fmt.Sprintf("A %s attack is pending. Press ESC to cancel it.", pending.Kind)
		return nil
	}

	if err := t.proto.Check(t.enc); err != nil {
		t.proto.Cancel()
		t.message = capitalize(err.Error()) + "."
		return nil
	}
	outcome, ok, err := t.readOutcome(kind)
	if err != nil || !ok {
		return err
	}
	res, err := t.proto.Resolve(t.enc, t.cursor, outcome)
	if err != nil {
		t.message = capitalize(err.Error()) + "."
		return nil
	}
	t.enc.Log(res.String())
	t.logger.Debug("attack resolved",
		zap.String("kind", kind.String()),
		zap.String("source", res.Source.DisplayName()),
		zap.String("target", res.Target.DisplayName()),
		zap.Bool("hit", outcome.Hit),
		zap.Int("damage", outcome.Damage),
	)
	return nil
}

// readOutcome asks for the attack result. ok is false when the answer was
// cancelled or invalid; the attack then stays pending.
func (t *Tracker) readOutcome(kind combat.AttackKind) (combat.Outcome, bool, error) {
	if kind == combat.AttackDecisive {
		answer, err := t.prompt.Prompt("Hit (damage/N)?")
		if err != nil || answer == "" {
			return combat.Outcome{}, false, err
		}
		if strings.EqualFold(answer, "n") {
			return combat.Miss(), true, nil
		}
		damage, convErr := strconv.Atoi(answer)
		if convErr != nil || damage < 0 {
			t.message = fmt.Sprintf("%q is not a damage value.", answer)
			return combat.Outcome{}, false, nil
		}
		return combat.Hit(damage), true, nil
	}

	damage, ok, err := t.promptInt("Damage (-1: miss):")
	if err != nil || !ok {
		return combat.Outcome{}, false, err
	}
	if damage < 0 {
		return combat.Miss(), true, nil
	}
	return combat.Hit(damage), true, nil
}

func (t *Tracker) remove() {
	name := t.selected().DisplayName()
	if err := t.enc.Remove(t.cursor); err != nil {
		t.message = capitalize(err.Error()) + "."
		return
	}
	// Positions shift, so a pending source may now name someone else.
	t.proto.Cancel()
	t.cursor = t.enc.ClampPosition(t.cursor)
	t.message = fmt.Sprintf("%s removed.", name)
}

func (t *Tracker) reset() {
	if t.opts.Source == nil {
		t.message = "No roster file is configured."
		return
	}
	if err := t.enc.ResetAll(t.opts.Source); err != nil {
		t.logger.Warn("resetting encounter", zap.Error(err))
		t.message = fmt.Sprintf("Reset failed: %v", err)
		return
	}
	t.proto.Cancel()
	t.cursor = t.enc.ClampPosition(t.cursor)
	t.message = "Encounter reset."
}

func (t *Tracker) save(ctx context.Context) error {
	if t.opts.Store == nil {
		t.message = "Saving is disabled."
		return nil
	}
	name, err := t.prompt.Prompt("Save as:")
	if err != nil || name == "" {
		return err
	}
	if err := t.opts.Store.Save(ctx, name, t.enc); err != nil {
		t.logger.Warn("saving encounter", zap.String("name", name), zap.Error(err))
		t.message = fmt.Sprintf("Save failed: %v", err)
		return nil
	}
	t.logger.Info("encounter saved", zap.String("name", name), zap.Int("characters", t.enc.Len()))
	t.message = fmt.Sprintf("Saved %q.", name)
	return nil
}

func (t *Tracker) load(ctx context.Context) error {
	if t.opts.Store == nil {
		t.message = "Loading is disabled."
		return nil
	}
	saved, err := t.opts.Store.List(ctx)
	if err != nil {
		t.logger.Warn("listing encounters", zap.Error(err))
		t.message = fmt.Sprintf("Listing saved encounters failed: %v", err)
		return nil
	}
	if len(saved) == 0 {
		t.message = "No saved encounters."
		return nil
	}
	names := make([]string, len(saved))
	for i, s := range saved {
		names[i] = s.Name
	}
	name, err := t.prompt.Select("Load:", names)
	if err != nil || name == "" {
		return err
	}
	enc, err := t.opts.Store.Load(ctx, name)
	if err != nil {
		if !errors.Is(err, storage.ErrEncounterNotFound) {
			t.logger.Warn("loading encounter", zap.String("name", name), zap.Error(err))
		}
		t.message = fmt.Sprintf("Load failed: %v", err)
		return nil
	}
	t.enc = enc
	t.proto.Cancel()
	t.cursor = 1
	t.logger.Info("encounter loaded", zap.String("name", name), zap.Int("characters", enc.Len()))
	t.message = fmt.Sprintf("Loaded %q.", name)
	return nil
}

func attackKey(kind combat.AttackKind) string {
	if kind == combat.AttackDecisive {
		return KeyDecisive
	}
	return KeyWithering
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
