package npc_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/exalted-combat/internal/game/npc"
)

const golemYAML = `
name: Clay Golem
joinbattle: 4
health: 14
evasion: 2
parry: 4
soak: 12
hardness: 5
attacks:
  - name: Slam
    dice: 11
    damage: 15B
specials:
  - name: Unfeeling
    text: Ignores wound penalties.
`

func TestLoadTemplatesFromBytes_Mapping(t *testing.T) {
	templates, err := npc.LoadTemplatesFromBytes([]byte(golemYAML))
	require.NoError(t, err)
	require.Len(t, templates, 1)

	tmpl := templates[0]
	assert.Equal(t, "Clay Golem", tmpl.Name)
	assert.Equal(t, 4, tmpl.JoinBattle)
	assert.Equal(t, 14, tmpl.Health)
	assert.Equal(t, 12, tmpl.Soak)
	require.NotNil(t, tmpl.Hardness)
	assert.Equal(t, 5, *tmpl.Hardness)
	require.Len(t, tmpl.Attacks, 1)
	assert.Equal(t, "Slam", tmpl.Attacks[0].Name)
	assert.Equal(t, 11, tmpl.Attacks[0].Dice)
	assert.Equal(t, "15B", tmpl.Attacks[0].Damage)
	require.Len(t, tmpl.Specials, 1)
	assert.Equal(t, "Unfeeling", tmpl.Specials[0].Name)
}

func TestLoadTemplatesFromBytes_JSONList(t *testing.T) {
	data := []byte(`[
  {"name": "Oswald", "joinbattle": 4, "health": 12, "evasion": 3, "parry": 4, "soak": 5},
  {"name": "Embla", "joinbattle": 5, "health": 10, "evasion": 4, "parry": 3, "soak": 3}
]`)
	templates, err := npc.LoadTemplatesFromBytes(data)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "Oswald", templates[0].Name)
	assert.Equal(t, "Embla", templates[1].Name)
	assert.Nil(t, templates[1].Hardness)
}

func TestLoadTemplatesFromBytes_Empty(t *testing.T) {
	templates, err := npc.LoadTemplatesFromBytes([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestLoadTemplatesFromBytes_Scalar(t *testing.T) {
	_, err := npc.LoadTemplatesFromBytes([]byte("just a string"))
	assert.Error(t, err)
}

func TestTemplate_Validate(t *testing.T) {
	neg := -1
	cases := map[string]npc.Template{
		"empty name":        {Name: " ", Health: 3},
		"zero health":       {Name: "X", Health: 0},
		"negative jb":       {Name: "X", Health: 3, JoinBattle: -1},
		"negative hardness": {Name: "X", Health: 3, Hardness: &neg},
	}
	for name, tmpl := range cases {
		assert.Error(t, tmpl.Validate(), name)
	}
	ok := npc.Template{Name: "X", Health: 3}
	assert.NoError(t, ok.Validate())
}

func TestTemplate_Character(t *testing.T) {
	templates, err := npc.LoadTemplatesFromBytes([]byte(golemYAML))
	require.NoError(t, err)
	tmpl := templates[0]

	c := tmpl.Character()
	assert.Equal(t, "Clay Golem", c.Name)
	assert.Equal(t, 14, c.MaxHealth)
	assert.Equal(t, 14, c.Health)
	assert.Equal(t, 4, c.JoinBattle)
	assert.Equal(t, 5, c.EffectiveHardness())
	assert.Zero(t, c.Initiative)
	assert.Empty(t, c.Label)

	*c.Hardness = 0
	c.Attacks[0].Name = "changed"
	assert.Equal(t, 5, *tmpl.Hardness)
	assert.Equal(t, "Slam", tmpl.Attacks[0].Name)
}

func TestLoadTemplates_Dir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_golem.yaml"), []byte(golemYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_pack.json"),
		[]byte(`[{"name": "Wolf", "joinbattle": 5, "health": 7}, {"name": "Bandit", "joinbattle": 3, "health": 7}]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	templates, err := npc.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, templates, 3)
	assert.Equal(t, "Clay Golem", templates[0].Name)
	assert.Equal(t, "Wolf", templates[1].Name)
	assert.Equal(t, "Bandit", templates[2].Name)
}

func TestLoadTemplates_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(":::invalid"), 0644))
	_, err := npc.LoadTemplates(dir)
	assert.Error(t, err)
}

func TestLoadTemplates_MissingDir(t *testing.T) {
	_, err := npc.LoadTemplates(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestProperty_Template_RoundTripsStats(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		jb := rapid.IntRange(0, 20).Draw(rt, "jb")
		health := rapid.IntRange(1, 50).Draw(rt, "health")
		hardness := rapid.IntRange(0, 10).Draw(rt, "hardness")
		data := []byte(fmt.Sprintf("name: M\njoinbattle: %d\nhealth: %d\nhardness: %d\n", jb, health, hardness))

		templates, err := npc.LoadTemplatesFromBytes(data)
		require.NoError(rt, err)
		c := templates[0].Character()
		assert.Equal(rt, jb, c.JoinBattle)
		assert.Equal(rt, health, c.Health)
		assert.Equal(rt, hardness, c.EffectiveHardness())
	})
}

func TestShippedContentLoads(t *testing.T) {
	roster, err := npc.FileSource{Path: filepath.Join("..", "..", "..", "content", "characters.yaml")}.LoadRoster()
	require.NoError(t, err)
	assert.NotEmpty(t, roster)

	cat, err := npc.LoadCatalog(filepath.Join("..", "..", "..", "content", "monsters"))
	require.NoError(t, err)
	assert.Positive(t, cat.Len())
}
