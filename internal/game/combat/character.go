package combat

// Initiative constants from the core rules.
const (
	// JoinBattleBonus is added to the join battle roll.
	JoinBattleBonus = 3
	// BaseInitiative is the value initiative resets to after a decisive attack.
	BaseInitiative = 3
	// CrashBonus is the extra initiative gained for crashing an opponent.
	CrashBonus = 5

	deadPenalty = 5000
	donePenalty = 1000
)

// Attack is a reference entry from a stat block.
type Attack struct {
	Name   string `yaml:"name" json:"name"`
	Dice   int    `yaml:"dice" json:"dice"`
	Damage string `yaml:"damage" json:"damage"`
}

// Special is a named rules note from a stat block.
type Special struct {
	Name string `yaml:"name" json:"name"`
	Text string `yaml:"text" json:"text"`
}

// Character is one combatant's stat block plus its live combat state.
type Character struct {
	Name string
	// Label disambiguates repeated monsters ("A", "B", ...). Empty when unused.
	Label string

	Initiative int
	JoinBattle int
	Onslaught  int
	Done       bool
	// CrashedTurns counts turns finished while crashed; only used when crash
	// recovery is enabled.
	CrashedTurns int

	MaxHealth int
	Health    int

	Evasion int
	Parry   int
	Soak    int
	// Hardness is nil when the stat block has none. Read it through
	// EffectiveHardness.
	Hardness *int

	Attacks  []Attack
	Specials []Special
}

// NewCharacter creates a combatant at full health with zero initiative.
//
// Postcondition: Health == MaxHealth == maxHealth; Initiative, Onslaught == 0; Done == false.
func NewCharacter(name string, joinBattle, maxHealth int) *Character {
	return &Character{
		Name:       name,
		JoinBattle: joinBattle,
		MaxHealth:  maxHealth,
		Health:     maxHealth,
	}
}

// Clone returns a deep copy of c.
func (c *Character) Clone() *Character {
	cp := *c
	if c.Hardness != nil {
		h := *c.Hardness
		cp.Hardness = &h
	}
	cp.Attacks = append([]Attack(nil), c.Attacks...)
	cp.Specials = append([]Special(nil), c.Specials...)
	return &cp
}

// DisplayName returns the name followed by the label, if any.
func (c *Character) DisplayName() string {
	if c.Label == "" {
		return c.Name
	}
	return c.Name + " " + c.Label
}

// Crashed reports whether initiative has dropped below zero.
func (c *Character) Crashed() bool { return c.Initiative < 0 }

// Dead reports whether health is at or below zero.
func (c *Character) Dead() bool { return c.Health <= 0 }

// EffectiveHardness returns the hardness applied against decisive damage.
// Crashed combatants have none.
func (c *Character) EffectiveHardness() int {
	if c.Crashed() || c.Hardness == nil {
		return 0
	}
	return *c.Hardness
}

// SetHardness sets the stat block hardness.
func (c *Character) SetHardness(h int) { c.Hardness = &h }

// SortKey orders the roster: highest initiative first, combatants that have
// acted below those that have not, and the dead at the bottom.
func (c *Character) SortKey() int {
	key := -c.Initiative
	if c.Dead() {
		key += deadPenalty
	}
	if c.Done {
		key += donePenalty
	}
	return key
}

// Reset rolls join battle and restores health.
//
// Precondition: r must be non-nil.
// Postcondition: Initiative == roll + JoinBattleBonus (floored at 0 when clamp
// is true); Health == MaxHealth; CrashedTurns == 0.
func (c *Character) Reset(r Roller, clamp bool) {
	c.Initiative = r.RollPool(c.JoinBattle) + JoinBattleBonus
	if clamp && c.Initiative < 0 {
		c.Initiative = 0
	}
	c.Health = c.MaxHealth
	c.CrashedTurns = 0
}

// Finish ends the combatant's action for the round.
func (c *Character) Finish() {
	c.Done = true
	c.Onslaught = 0
}

// Ready clears the done flag at the start of a round.
func (c *Character) Ready() { c.Done = false }

// TakeWitheringHit applies withering damage to initiative. A negative damage
// value marks a miss and changes nothing.
//
// Postcondition: returns true iff this hit moved the combatant from not crashed
// to crashed.
func (c *Character) TakeWitheringHit(damage int) bool {
	if damage < 0 {
		return false
	}
	before := c.Crashed()
	c.Initiative -= damage
	c.Onslaught--
	return c.Crashed() && !before
}

// DoWitheringHit credits the attacker for a withering attack and finishes its
// turn. A miss still gains one initiative.
func (c *Character) DoWitheringHit(damage int, targetJustCrashed bool) {
	if damage < 0 {
		c.Initiative++
	} else {
		c.Initiative += damage + 1
		if targetJustCrashed {
			c.Initiative += CrashBonus
		}
	}
	c.Finish()
}

// TakeDecisiveHit applies decisive damage to health unless hardness absorbs it.
//
// Postcondition: Health decreases by damage iff damage > EffectiveHardness().
func (c *Character) TakeDecisiveHit(damage int) {
	if damage > c.EffectiveHardness() {
		c.Health -= damage
	}
}

// DoDecisiveHit resets the attacker to base initiative and finishes its turn.
func (c *Character) DoDecisiveHit() {
	c.Initiative = BaseInitiative
	c.Finish()
}

// DoDecisiveMiss applies the initiative penalty for a missed decisive attack
// and finishes the turn. The penalty never takes initiative from zero or below.
func (c *Character) DoDecisiveMiss() {
	switch {
	case c.Initiative > 10:
		c.Initiative -= 3
	case c.Initiative > 0:
		c.Initiative -= 2
	}
	c.Finish()
}

// trackCrash advances crash recovery after an attack. Once the combatant has
// finished limit turns while crashed, the next crashed finish resets
// initiative to BaseInitiative.
//
// Precondition: limit > 0.
func (c *Character) trackCrash(limit int) {
	if !c.Crashed() {
		return
	}
	if c.CrashedTurns < limit {
		c.CrashedTurns++
		return
	}
	c.Initiative = BaseInitiative
	c.CrashedTurns = 0
}
