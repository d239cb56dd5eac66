package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/exalted-combat/internal/frontend/telnet"
	"github.com/cory-johannsen/exalted-combat/internal/game/combat"
)

const nameWidth = 24

// Screen is everything one redraw shows.
type Screen struct {
	Encounter *combat.Encounter
	// Cursor is the highlighted 1-based position.
	Cursor int
	// Pending is the attack awaiting a target, or nil.
	Pending *combat.AttackAction
	LogTail int
	Message string
}

// RenderScreen formats the roster, the highlighted character's details, the
// log tail and the status message.
func RenderScreen(s Screen) string {
	var b strings.Builder
	b.WriteString(RenderRoster(s.Encounter, s.Cursor, s.Pending))
	b.WriteString("\r\n")
	if s.Encounter.Len() > 0 {
		b.WriteString(RenderDetails(s.Encounter.At(s.Encounter.ClampPosition(s.Cursor))))
		b.WriteString("\r\n")
	}
	b.WriteString(RenderLog(s.Encounter.LogTail(s.LogTail)))
	if s.Message != "" {
		b.WriteString("\r\n")
		b.WriteString(telnet.Colorize(telnet.Yellow, s.Message))
		b.WriteString("\r\n")
	}
	return b.String()
}

// RenderRoster formats the participants in turn order.
func RenderRoster(enc *combat.Encounter, cursor int, pending *combat.AttackAction) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.Bold, fmt.Sprintf("  %-*s%5s%5s  %-2s%-2s%7s",
		nameWidth, "Participants", "Init", "Ons", "", "", "Health")))
	b.WriteString("\r\n")

	for i, c := range enc.Characters() {
		pos := i + 1
		row := fmt.Sprintf("%-*s%5d%5d  %-2s%-2s%7s",
			nameWidth, truncate(c.DisplayName(), nameWidth-1),
			c.Initiative, c.Onslaught,
			flag(c.Done, "D"), flag(c.Crashed(), "C"),
			fmt.Sprintf("%d/%d", c.Health, c.MaxHealth),
		)
		marker := "  "
		if pos == cursor {
			marker = "> "
			row = telnet.Reverse + row
		}
		b.WriteString(marker)
		b.WriteString(telnet.Colorize(rowColor(c, pending != nil && pending.Source == pos), row))
		b.WriteString("\r\n")
	}
	return b.String()
}

func rowColor(c *combat.Character, source bool) string {
	switch {
	case source:
		return telnet.Magenta
	case c.Dead():
		return telnet.Red
	case c.Crashed():
		return telnet.Yellow
	case c.Done:
		return telnet.BrightBlack
	default:
		return telnet.White
	}
}

// RenderDetails formats a character's stat block.
func RenderDetails(c *combat.Character) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.Bold+telnet.Cyan, c.DisplayName()))
	b.WriteString("\r\n")
	b.WriteString(fmt.Sprintf("  Evasion %d  Parry %d  Soak %d  Hardness %d\r\n",
		c.Evasion, c.Parry, c.Soak, c.EffectiveHardness()))
	if len(c.Attacks) > 0 {
		b.WriteString(telnet.Colorize(telnet.Cyan, "  Attacks"))
		b.WriteString("\r\n")
		for _, a := range c.Attacks {
			b.WriteString(fmt.Sprintf("    %s: %dd -> %s\r\n", a.Name, a.Dice, a.Damage))
		}
	}
	if len(c.Specials) > 0 {
		b.WriteString(telnet.Colorize(telnet.Cyan, "  Specials"))
		b.WriteString("\r\n")
		for _, s := range c.Specials {
			b.WriteString(fmt.Sprintf("    %s: %s\r\n", s.Name, s.Text))
		}
	}
	return b.String()
}

// RenderLog formats log lines, oldest first.
func RenderLog(lines []string) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.Bold, "Log"))
	b.WriteString("\r\n")
	for _, l := range lines {
		b.WriteString(telnet.Colorize(telnet.Dim, "  "+l))
		b.WriteString("\r\n")
	}
	return b.String()
}

var helpLines = [][2]string{
	{KeyDown + " / " + KeyUp, "move the cursor down / up (arrow keys work too)"},
	{KeyDone, "toggle done"},
	{KeyInitiative, "set initiative"},
	{KeyOnslaught, "set onslaught"},
	{KeyHealth, "set health"},
	{KeyNewRound, "new round"},
	{KeyAddChar, "add character"},
	{KeyAddMonster, "add monster"},
	{KeyDecisive, "decisive attack: press on the attacker, then on the target"},
	{KeyWithering, "withering attack: press on the attacker, then on the target"},
	{KeyRemove, "remove character"},
	{KeyReset, "reset encounter from the roster file"},
	{"ESC / " + KeyCancel, "cancel the pending attack"},
	{KeySave, "save encounter"},
	{KeyLoad, "load encounter"},
	{KeyQuit, "quit"},
}

// RenderHelp formats the command reference.
func RenderHelp() string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.Bold, "Commands"))
	b.WriteString("\r\n")
	for _, h := range helpLines {
		b.WriteString(fmt.Sprintf("  %s%-8s%s %s\r\n", telnet.Green, h[0], telnet.Reset, h[1]))
	}
	return b.String()
}

func flag(set bool, s string) string {
	if set {
		return s
	}
	return ""
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
