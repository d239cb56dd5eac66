package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/exalted-combat/internal/game/combat"
	"github.com/cory-johannsen/exalted-combat/internal/storage"
)

// EncounterRepository persists named encounter snapshots.
type EncounterRepository struct {
	db     *pgxpool.Pool
	rules  combat.Rules
	roller combat.Roller
}

// NewEncounterRepository creates an EncounterRepository backed by the given pool.
// Loaded encounters are restored with rules and roller.
//
// Precondition: db must be a valid, open connection pool; roller must be non-nil.
func NewEncounterRepository(db *pgxpool.Pool, rules combat.Rules, roller combat.Roller) *EncounterRepository {
	return &EncounterRepository{db: db, rules: rules, roller: roller}
}

// Save writes enc under name, replacing any encounter previously saved with that name.
//
// Precondition: enc must be non-nil.
// Postcondition: Returns nil once the roster and log are committed, or a non-nil error.
func (r *EncounterRepository) Save(ctx context.Context, name string, enc *combat.Encounter) error {
	name, err := storage.NormalizeName(name)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO encounters (id, name, log)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET log = EXCLUDED.log, updated_at = NOW()
		RETURNING id`,
		uuid.New().String(), name, nonNil(enc.Logs()),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("upserting encounter: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM encounter_characters WHERE encounter_id = $1`, id); err != nil {
		return fmt.Errorf("clearing encounter roster: %w", err)
	}

	batch := &pgx.Batch{}
	for i, c := range enc.Characters() {
		batch.Queue(`
			INSERT INTO encounter_characters
				(encounter_id, position, name, label, initiative, join_battle, onslaught, done,
				 crashed_turns, max_health, health, evasion, parry, soak, hardness, attacks, specials)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			id, i+1, c.Name, c.Label, c.Initiative, c.JoinBattle, c.Onslaught, c.Done,
			c.CrashedTurns, c.MaxHealth, c.Health, c.Evasion, c.Parry, c.Soak, c.Hardness,
			nonNil(c.Attacks), nonNil(c.Specials),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting encounter roster: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing encounter: %w", err)
	}
	return nil
}

// Load restores the encounter saved under name.
//
// Postcondition: Returns the restored Encounter or storage.ErrEncounterNotFound.
func (r *EncounterRepository) Load(ctx context.Context, name string) (*combat.Encounter, error) {
	name, err := storage.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	var (
		id  string
		log []string
	)
	err = r.db.QueryRow(ctx, `SELECT id, log FROM encounters WHERE name = $1`, name).Scan(&id, &log)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrEncounterNotFound
		}
		return nil, fmt.Errorf("querying encounter: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT name, label, initiative, join_battle, onslaught, done, crashed_turns,
		       max_health, health, evasion, parry, soak, hardness, attacks, specials
		FROM encounter_characters WHERE encounter_id = $1 ORDER BY position ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying encounter roster: %w", err)
	}
	defer rows.Close()

	roster := make([]*combat.Character, 0)
	for rows.Next() {
		var c combat.Character
		if err := rows.Scan(
			&c.Name, &c.Label, &c.Initiative, &c.JoinBattle, &c.Onslaught, &c.Done, &c.CrashedTurns,
			&c.MaxHealth, &c.Health, &c.Evasion, &c.Parry, &c.Soak, &c.Hardness, &c.Attacks, &c.Specials,
		); err != nil {
			return nil, fmt.Errorf("scanning encounter character row: %w", err)
		}
		roster = append(roster, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading encounter roster: %w", err)
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("encounter %q has an empty roster", name)
	}
	return combat.Restore(roster, log, r.rules, r.roller), nil
}

// List returns every saved encounter, most recently saved first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *EncounterRepository) List(ctx context.Context) ([]storage.Summary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT e.name, COUNT(c.position), e.updated_at
		FROM encounters e
		LEFT JOIN encounter_characters c ON c.encounter_id = e.id
		GROUP BY e.id, e.name, e.updated_at
		ORDER BY e.updated_at DESC, e.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing encounters: %w", err)
	}
	defer rows.Close()

	out := make([]storage.Summary, 0)
	for rows.Next() {
		var s storage.Summary
		if err := rows.Scan(&s.Name, &s.Characters, &s.SavedAt); err != nil {
			return nil, fmt.Errorf("scanning encounter summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// nonNil keeps empty slices out of NULL so the NOT NULL array and jsonb columns accept them.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
