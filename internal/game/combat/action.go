package combat

import "fmt"

// AttackKind identifies the two attack categories.
// The zero value (AttackUnknown) is intentionally invalid.
type AttackKind int

const (
	AttackUnknown   AttackKind = iota // zero value; intentionally invalid
	AttackWithering                   // damages initiative
	AttackDecisive                    // damages health
)

// String returns the human-readable name of the AttackKind.
func (k AttackKind) String() string {
	switch k {
	case AttackWithering:
		return "withering"
	case AttackDecisive:
		return "decisive"
	default:
		return "unknown"
	}
}

// AttackAction is a selected but unresolved attack.
type AttackAction struct {
	Kind AttackKind
	// Source is the attacker's 1-based roster position at selection time.
	Source int
}

// Outcome is the result of an attack as reported by the table.
type Outcome struct {
	Hit    bool
	Damage int
}

// Miss returns a missed Outcome.
func Miss() Outcome { return Outcome{} }

// Hit returns a hit Outcome dealing damage.
func Hit(damage int) Outcome { return Outcome{Hit: true, Damage: damage} }

// witheringDamage maps an outcome onto the withering damage convention where a
// negative value marks a miss.
func (o Outcome) witheringDamage() int {
	if !o.Hit {
		return -1
	}
	return o.Damage
}

// Transition reports what a Select call did.
type Transition int

const (
	// TransitionBegan means the protocol moved from idle to pending.
	TransitionBegan Transition = iota
	// TransitionResolve means the same attack key was pressed again; the caller
	// should gather an Outcome and call Resolve.
	TransitionResolve
	// TransitionIgnored means a different attack is already pending.
	TransitionIgnored
)

// Resolution records what a resolved attack did, for presentation and logging.
type Resolution struct {
	Action  AttackAction
	Source  *Character
	Target  *Character
	Outcome Outcome
	// TargetCrashed is true when a withering hit crashed the target.
	TargetCrashed bool
	// Absorbed is true when a decisive hit was stopped by hardness.
	Absorbed bool
}

// String summarises the resolution as a log line.
func (r Resolution) String() string {
	src, tgt := r.Source.DisplayName(), r.Target.DisplayName()
	switch {
	case !r.Outcome.Hit:
		return fmt.Sprintf("%s missed %s with a %s attack", src, tgt, r.Action.Kind)
	case r.Action.Kind == AttackDecisive && r.Absorbed:
		return fmt.Sprintf("%s hit %s for %d decisive damage, absorbed by hardness", src, tgt, r.Outcome.Damage)
	case r.TargetCrashed:
		return fmt.Sprintf("%s hit %s for %d %s damage and crashed them", src, tgt, r.Outcome.Damage, r.Action.Kind)
	default:
		return fmt.Sprintf("%s hit %s for %d %s damage", src, tgt, r.Outcome.Damage, r.Action.Kind)
	}
}

// Protocol is the two-phase attack state machine: Idle, or Pending with an
// AttackAction. The zero value is Idle.
type Protocol struct {
	pending *AttackAction
}

// Pending returns the pending action, if any.
func (p *Protocol) Pending() (AttackAction, bool) {
	if p.pending == nil {
		return AttackAction{}, false
	}
	return *p.pending, true
}

// Select handles an attack key press with the cursor at position cursor.
//
// Precondition: kind is AttackWithering or AttackDecisive.
// Postcondition: Idle becomes Pending{kind, cursor} (TransitionBegan); Pending
// with the same kind is left unchanged (TransitionResolve); Pending with another
// kind is left unchanged (TransitionIgnored).
func (p *Protocol) Select(kind AttackKind, cursor int) Transition {
	if p.pending == nil {
		p.pending = &AttackAction{Kind: kind, Source: cursor}
		return TransitionBegan
	}
	if p.pending.Kind != kind {
		return TransitionIgnored
	}
	return TransitionResolve
}

// Cancel returns to Idle without side effects.
func (p *Protocol) Cancel() { p.pending = nil }

// Check reports whether the pending attack may be resolved against enc.
//
// Postcondition: returns nil, ErrNotPending, ErrSourceDead, or (decisive only)
// ErrSourceCrashed. Never mutates.
func (p *Protocol) Check(enc *Encounter) error {
	if p.pending == nil {
		return ErrNotPending
	}
	src := enc.At(p.pending.Source)
	if src.Dead() {
		return ErrSourceDead
	}
	if p.pending.Kind == AttackDecisive && src.Crashed() {
		return ErrSourceCrashed
	}
	return nil
}

// Resolve applies the pending attack from its source to the character at
// position target, re-sorts enc, and returns to Idle.
//
// Precondition: 1 <= target <= enc.Len().
// Postcondition: on a Check failure the protocol is Idle and nothing else
// changed; on success the combatants are updated in the order the rules
// require and enc is sorted.
func (p *Protocol) Resolve(enc *Encounter, target int, outcome Outcome) (Resolution, error) {
	if err := p.Check(enc); err != nil {
		p.pending = nil
		return Resolution{}, err
	}
	action := *p.pending
	src := enc.At(action.Source)
	tgt := enc.At(target)
	res := Resolution{Action: action, Source: src, Target: tgt, Outcome: outcome}

	switch action.Kind {
	case AttackDecisive:
		if !outcome.Hit {
			src.DoDecisiveMiss()
			break
		}
		before := tgt.Health
		src.DoDecisiveHit()
		tgt.TakeDecisiveHit(outcome.Damage)
		res.Absorbed = tgt.Health == before && outcome.Damage > 0
	case AttackWithering:
		damage := outcome.witheringDamage()
		res.TargetCrashed = tgt.TakeWitheringHit(damage)
		src.DoWitheringHit(damage, res.TargetCrashed)
	default:
		p.pending = nil
		return Resolution{}, fmt.Errorf("combat: unknown attack kind %d", action.Kind)
	}

	if limit := enc.rules.CrashRecoveryTurns; limit > 0 {
		src.trackCrash(limit)
	}
	enc.Resort()
	p.pending = nil
	return res, nil
}
