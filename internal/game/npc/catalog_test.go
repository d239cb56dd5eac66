package npc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/exalted-combat/internal/game/npc"
)

func testCatalog(t *testing.T) *npc.Catalog {
	t.Helper()
	cat, err := npc.NewCatalog([]*npc.Template{
		{Name: "Goblin", JoinBattle: 3, Health: 7},
		{Name: "Golem", JoinBattle: 4, Health: 14},
		{Name: "Gargoyle", JoinBattle: 5, Health: 10},
	})
	require.NoError(t, err)
	return cat
}

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	_, err := npc.NewCatalog([]*npc.Template{
		{Name: "Goblin", Health: 7},
		{Name: "Goblin", Health: 9},
	})
	assert.Error(t, err)
}

func TestCatalog_Names(t *testing.T) {
	cat := testCatalog(t)
	assert.Equal(t, 3, cat.Len())
	assert.Equal(t, []string{"Goblin", "Golem", "Gargoyle"}, cat.Names())
}

func TestCatalog_Find(t *testing.T) {
	cat := testCatalog(t)
	tmpl, ok := cat.Find("gol")
	require.True(t, ok)
	assert.Equal(t, "Golem", tmpl.Name)

	tmpl, ok = cat.Find("GOBLIN")
	require.True(t, ok)
	assert.Equal(t, "Goblin", tmpl.Name)

	_, ok = cat.Find("troll")
	assert.False(t, ok)
	_, ok = cat.Find("  ")
	assert.False(t, ok)
}

func TestCatalog_SpawnLabelsAndCopies(t *testing.T) {
	cat := testCatalog(t)
	first, err := cat.Spawn("Goblin", 0)
	require.NoError(t, err)
	second, err := cat.Spawn("Goblin", 1)
	require.NoError(t, err)

	assert.Equal(t, "Goblin A", first.DisplayName())
	assert.Equal(t, "Goblin B", second.DisplayName())
	first.Health = 1
	assert.Equal(t, 7, second.Health)
	tmpl, _ := cat.Get("Goblin")
	assert.Equal(t, 7, tmpl.Health)
}

func TestCatalog_SpawnUnknown(t *testing.T) {
	_, err := testCatalog(t).Spawn("Troll", 0)
	assert.Error(t, err)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "A", npc.Label(0))
	assert.Equal(t, "Z", npc.Label(25))
	assert.Equal(t, "27", npc.Label(26))
}

func TestFileSource_LoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "characters.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: Oswald
  joinbattle: 4
  health: 12
- name: Embla
  joinbattle: 5
  health: 10
  hardness: 2
`), 0644))

	src := npc.FileSource{Path: path}
	roster, err := src.LoadRoster()
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Oswald", roster[0].Name)
	assert.Equal(t, 12, roster[0].Health)
	assert.Equal(t, 2, roster[1].EffectiveHardness())

	again, err := src.LoadRoster()
	require.NoError(t, err)
	assert.NotSame(t, roster[0], again[0])
}

func TestFileSource_EmptyRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "characters.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))
	_, err := npc.FileSource{Path: path}.LoadRoster()
	assert.Error(t, err)
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := npc.FileSource{Path: filepath.Join(t.TempDir(), "missing.yaml")}.LoadRoster()
	assert.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beasts.yaml"), []byte(`
- name: Tyrant Lizard
  joinbattle: 6
  health: 20
- name: Blood Ape
  joinbattle: 5
  health: 12
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dead.json"), []byte(`{"name": "Hungry Ghost", "joinbattle": 4, "health": 7}`), 0644))

	cat, err := npc.LoadCatalog(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tyrant Lizard", "Blood Ape", "Hungry Ghost"}, cat.Names())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "dupe.yml"), []byte("name: Blood Ape\nhealth: 3\n"), 0644))
	_, err = npc.LoadCatalog(dir)
	assert.ErrorContains(t, err, "duplicate")
}
