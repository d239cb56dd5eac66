package npc

import (
	"fmt"

	"github.com/cory-johannsen/exalted-combat/internal/game/combat"
)

// FileSource loads the starting roster from a template file. It implements
// combat.TemplateSource and rereads the file on every call so edits are picked
// up by an encounter reset.
type FileSource struct {
	Path string
}

// LoadRoster returns one fresh character per template in the roster file.
//
// Postcondition: Returns an error when the file holds no templates, since an
// encounter roster may never be empty.
func (s FileSource) LoadRoster() ([]*combat.Character, error) {
	templates, err := LoadTemplateFile(s.Path)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("roster file %q has no characters", s.Path)
	}
	roster := make([]*combat.Character, 0, len(templates))
	for _, t := range templates {
		roster = append(roster, t.Character())
	}
	return roster, nil
}
