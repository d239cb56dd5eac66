// Package npc provides stat block templates for player characters and
// monsters, the monster catalog, and the file-backed roster source.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/exalted-combat/internal/game/combat"
)

// Template is a reusable stat block loaded from YAML or JSON.
type Template struct {
	Name       string           `yaml:"name"`
	JoinBattle int              `yaml:"joinbattle"`
	Health     int              `yaml:"health"`
	Evasion    int              `yaml:"evasion"`
	Parry      int              `yaml:"parry"`
	Soak       int              `yaml:"soak"`
	Hardness   *int             `yaml:"hardness"`
	Attacks    []combat.Attack  `yaml:"attacks"`
	Specials   []combat.Special `yaml:"specials"`
}

// Validate checks that the template satisfies basic invariants.
//
// Postcondition: Returns nil iff Name is non-empty, Health >= 1, JoinBattle >= 0,
// and Hardness (when present) >= 0.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("template: name must not be empty")
	}
	if t.Health < 1 {
		return fmt.Errorf("template %q: health must be >= 1", t.Name)
	}
	if t.JoinBattle < 0 {
		return fmt.Errorf("template %q: joinbattle must be >= 0", t.Name)
	}
	if t.Hardness != nil && *t.Hardness < 0 {
		return fmt.Errorf("template %q: hardness must be >= 0", t.Name)
	}
	return nil
}

// Character builds a fresh combatant from the template. The result has not
// rolled join battle yet.
//
// Postcondition: Health == MaxHealth == t.Health; the result shares no memory with t.
func (t *Template) Character() *combat.Character {
	c := combat.NewCharacter(t.Name, t.JoinBattle, t.Health)
	c.Evasion = t.Evasion
	c.Parry = t.Parry
	c.Soak = t.Soak
	if t.Hardness != nil {
		c.SetHardness(*t.Hardness)
	}
	c.Attacks = append([]combat.Attack(nil), t.Attacks...)
	c.Specials = append([]combat.Special(nil), t.Specials...)
	return c
}

// LoadTemplatesFromBytes parses one template or a list of templates. JSON input
// is accepted since it parses as YAML.
//
// Postcondition: Returns validated templates in document order, or an error.
func LoadTemplatesFromBytes(data []byte) ([]*Template, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]

	var templates []*Template
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&templates); err != nil {
			return nil, fmt.Errorf("decoding template list: %w", err)
		}
	case yaml.MappingNode:
		var tmpl Template
		if err := root.Decode(&tmpl); err != nil {
			return nil, fmt.Errorf("decoding template: %w", err)
		}
		templates = append(templates, &tmpl)
	default:
		return nil, fmt.Errorf("template document must be a mapping or a list")
	}

	for _, tmpl := range templates {
		if err := tmpl.Validate(); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

// LoadTemplateFile reads every template in the file at path.
func LoadTemplateFile(path string) ([]*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	templates, err := LoadTemplatesFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return templates, nil
}

// LoadTemplates reads all *.yaml, *.yml, and *.json files in dir, in name order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		loaded, err := LoadTemplateFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		templates = append(templates, loaded...)
	}
	return templates, nil
}
