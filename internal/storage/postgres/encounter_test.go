package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/exalted-combat/internal/game/combat"
	"github.com/cory-johannsen/exalted-combat/internal/storage"
	"github.com/cory-johannsen/exalted-combat/internal/storage/postgres"
	"github.com/cory-johannsen/exalted-combat/internal/testutil"
)

type constRoller int

func (r constRoller) RollPool(int) int { return int(r) }

func newRepo(t *testing.T) *postgres.EncounterRepository {
	t.Helper()
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return postgres.NewEncounterRepository(pc.RawPool, combat.DefaultRules(), constRoller(2))
}

func sampleEncounter() *combat.Encounter {
	hero := combat.NewCharacter("Oswald", 4, 12)
	hero.Initiative = 9
	hero.Onslaught = 1
	hero.Done = true
	hero.Attacks = []combat.Attack{{Name: "Sword", Dice: 9, Damage: "12L"}}

	golem := combat.NewCharacter("Clay Golem", 4, 14)
	golem.Label = "A"
	golem.Initiative = -2
	golem.Health = 10
	golem.CrashedTurns = 1
	golem.SetHardness(5)
	golem.Specials = []combat.Special{{Name: "Unfeeling", Text: "Ignores wound penalties."}}

	enc := combat.NewEncounter([]*combat.Character{hero, golem}, combat.DefaultRules(), constRoller(2))
	enc.Log("Oswald withering attacks Clay Golem A for 6 damage.")
	return enc
}

func TestEncounterRepository_SaveLoad(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	enc := sampleEncounter()

	require.NoError(t, repo.Save(ctx, "ford ambush", enc))

	got, err := repo.Load(ctx, "ford ambush")
	require.NoError(t, err)
	require.Equal(t, enc.Len(), got.Len())
	for i := 1; i <= enc.Len(); i++ {
		want, have := enc.At(i), got.At(i)
		assert.Equal(t, want.DisplayName(), have.DisplayName())
		assert.Equal(t, want.Initiative, have.Initiative)
		assert.Equal(t, want.Onslaught, have.Onslaught)
		assert.Equal(t, want.Done, have.Done)
		assert.Equal(t, want.CrashedTurns, have.CrashedTurns)
		assert.Equal(t, want.Health, have.Health)
		assert.Equal(t, want.EffectiveHardness(), have.EffectiveHardness())
		assert.Equal(t, len(want.Attacks), len(have.Attacks))
		assert.Equal(t, len(want.Specials), len(have.Specials))
	}
	assert.Equal(t, enc.Logs(), got.Logs())
	assert.Nil(t, got.At(2).Hardness)
}

func TestEncounterRepository_SaveOverwrites(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	enc := sampleEncounter()
	require.NoError(t, repo.Save(ctx, "fight", enc))

	enc.Join(combat.NewCharacter("Wolf", 5, 7))
	require.NoError(t, repo.Save(ctx, "fight", enc))

	got, err := repo.Load(ctx, "fight")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "fight", list[0].Name)
	assert.Equal(t, 3, list[0].Characters)
}

func TestEncounterRepository_LoadMissing(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Load(context.Background(), "nothing here")
	assert.ErrorIs(t, err, storage.ErrEncounterNotFound)
}

func TestEncounterRepository_RejectsEmptyName(t *testing.T) {
	repo := newRepo(t)
	assert.Error(t, repo.Save(context.Background(), "  ", sampleEncounter()))
}

func TestMigrate_UpIsIdempotentAndDownDrops(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)

	state, err := postgres.Migrate(pc.Config, false, 0)
	require.NoError(t, err)
	assert.False(t, state.Changed)
	assert.Equal(t, uint(1), state.Version)
	assert.False(t, state.Dirty)

	state, err = postgres.Migrate(pc.Config, true, 1)
	require.NoError(t, err)
	assert.True(t, state.Changed)

	var exists bool
	err = pc.RawPool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'encounters')`).Scan(&exists)
	require.NoError(t, err)
	assert.False(t, exists)
}
