package npc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/exalted-combat/internal/game/combat"
)

// Catalog is the read-only monster catalog, keyed by template name.
type Catalog struct {
	byName map[string]*Template
	names  []string // load order
}

// NewCatalog indexes templates by name.
//
// Postcondition: Returns an error if two templates share a name.
func NewCatalog(templates []*Template) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if _, dup := c.byName[t.Name]; dup {
			return nil, fmt.Errorf("monster catalog: duplicate template %q", t.Name)
		}
		c.byName[t.Name] = t
		c.names = append(c.names, t.Name)
	}
	return c, nil
}

// LoadCatalog loads every template file in dir into a Catalog.
//
// Postcondition: Returns an error if dir cannot be read, a file is invalid, or
// two templates share a name.
func LoadCatalog(dir string) (*Catalog, error) {
	templates, err := LoadTemplates(dir)
	if err != nil {
		return nil, err
	}
	return NewCatalog(templates)
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.names) }

// Names returns template names in load order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Get returns the template named name.
func (c *Catalog) Get(name string) (*Template, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Find returns the first template whose name has prefix as a case-insensitive
// prefix, preferring an exact case-insensitive match.
func (c *Catalog) Find(prefix string) (*Template, bool) {
	lower := strings.ToLower(strings.TrimSpace(prefix))
	if lower == "" {
		return nil, false
	}
	var partial *Template
	for _, name := range c.names {
		l := strings.ToLower(name)
		if l == lower {
			return c.byName[name], true
		}
		if partial == nil && strings.HasPrefix(l, lower) {
			partial = c.byName[name]
		}
	}
	return partial, partial != nil
}

// Spawn builds a new monster from the template named name, labelled by how
// many monsters of that name are already in play. The caller rolls join
// battle when the monster enters the encounter.
//
// Postcondition: Returns an error if name is unknown.
func (c *Catalog) Spawn(name string, existing int) (*combat.Character, error) {
	t, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("monster %q not found", name)
	}
	ch := t.Character()
	ch.Label = Label(existing)
	return ch, nil
}

// Label returns the disambiguating label for the n-th (0-based) copy of a
// monster: "A" through "Z", then the 1-based number.
func Label(n int) string {
	if n >= 0 && n < 26 {
		return string(rune('A' + n))
	}
	return strconv.Itoa(n + 1)
}
