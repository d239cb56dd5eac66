// Package sqlite provides a single-file SQLite encounter store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/exalted-combat/internal/game/combat"
	"github.com/cory-johannsen/exalted-combat/internal/storage"
	"github.com/cory-johannsen/exalted-combat/internal/storage/sqlite/migrations"
)

// Store persists named encounter snapshots in SQLite.
type Store struct {
	db     *sql.DB
	rules  combat.Rules
	roller combat.Roller
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// Open opens (creating if needed) the database at path and applies the
// embedded migrations. Loaded encounters are restored with rules and roller.
//
// Precondition: roller must be non-nil.
// Postcondition: Returns a ready Store or a non-nil error.
func Open(ctx context.Context, path string, rules combat.Rules, roller combat.Roller) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One writer keeps WAL transactions from tripping over each other.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if err := migrateUp(dsn); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db, rules: rules, roller: roller}, nil
}

// migrateUp applies the embedded migrations. The migrator owns its own handle
// and closes it on return.
//
// Postcondition: the schema is at the latest version; an already current
// schema is not an error.
func migrateUp(dsn string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %w", err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening migration handle: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating: %w", err)
	}
	return nil
}

// Ping checks that the database file is still usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes enc under name, replacing any encounter previously saved with that name.
//
// Precondition: enc must be non-nil.
// Postcondition: Returns nil once the roster and log are committed, or a non-nil error.
func (s *Store) Save(ctx context.Context, name string, enc *combat.Encounter) error {
	name, err := storage.NormalizeName(name)
	if err != nil {
		return err
	}
	logJSON, err := marshalJSON(enc.Logs())
	if err != nil {
		return fmt.Errorf("encoding log: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := toMillis(time.Now())
	var id string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO encounters (id, name, log, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET log = excluded.log, updated_at = excluded.updated_at
		RETURNING id`,
		uuid.New().String(), name, logJSON, now, now,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("upserting encounter: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM encounter_characters WHERE encounter_id = ?`, id); err != nil {
		return fmt.Errorf("clearing encounter roster: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO encounter_characters
			(encounter_id, position, name, label, initiative, join_battle, onslaught, done,
			 crashed_turns, max_health, health, evasion, parry, soak, hardness, attacks, specials)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing roster insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range enc.Characters() {
		attacks, err := marshalJSON(c.Attacks)
		if err != nil {
			return fmt.Errorf("encoding attacks for %s: %w", c.DisplayName(), err)
		}
		specials, err := marshalJSON(c.Specials)
		if err != nil {
			return fmt.Errorf("encoding specials for %s: %w", c.DisplayName(), err)
		}
		var hardness sql.NullInt64
		if c.Hardness != nil {
			hardness = sql.NullInt64{Int64: int64(*c.Hardness), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			id, i+1, c.Name, c.Label, c.Initiative, c.JoinBattle, c.Onslaught, c.Done,
			c.CrashedTurns, c.MaxHealth, c.Health, c.Evasion, c.Parry, c.Soak, hardness,
			attacks, specials,
		); err != nil {
			return fmt.Errorf("inserting %s: %w", c.DisplayName(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing encounter: %w", err)
	}
	return nil
}

// Load restores the encounter saved under name.
//
// Postcondition: Returns the restored Encounter or storage.ErrEncounterNotFound.
func (s *Store) Load(ctx context.Context, name string) (*combat.Encounter, error) {
	name, err := storage.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	var id, logJSON string
	err = s.db.QueryRowContext(ctx, `SELECT id, log FROM encounters WHERE name = ?`, name).Scan(&id, &logJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrEncounterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying encounter: %w", err)
	}
	var log []string
	if err := json.Unmarshal([]byte(logJSON), &log); err != nil {
		return nil, fmt.Errorf("decoding log: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, label, initiative, join_battle, onslaught, done, crashed_turns,
		       max_health, health, evasion, parry, soak, hardness, attacks, specials
		FROM encounter_characters WHERE encounter_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying encounter roster: %w", err)
	}
	defer rows.Close()

	roster := make([]*combat.Character, 0)
	for rows.Next() {
		var (
			c                 combat.Character
			hardness          sql.NullInt64
			attacks, specials string
		)
		if err := rows.Scan(
			&c.Name, &c.Label, &c.Initiative, &c.JoinBattle, &c.Onslaught, &c.Done, &c.CrashedTurns,
			&c.MaxHealth, &c.Health, &c.Evasion, &c.Parry, &c.Soak, &hardness, &attacks, &specials,
		); err != nil {
			return nil, fmt.Errorf("scanning encounter character row: %w", err)
		}
		if hardness.Valid {
			c.SetHardness(int(hardness.Int64))
		}
		if err := json.Unmarshal([]byte(attacks), &c.Attacks); err != nil {
			return nil, fmt.Errorf("decoding attacks for %s: %w", c.DisplayName(), err)
		}
		if err := json.Unmarshal([]byte(specials), &c.Specials); err != nil {
			return nil, fmt.Errorf("decoding specials for %s: %w", c.DisplayName(), err)
		}
		c.Attacks, c.Specials = nilIfEmpty(c.Attacks), nilIfEmpty(c.Specials)
		roster = append(roster, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading encounter roster: %w", err)
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("encounter %q has an empty roster", name)
	}
	return combat.Restore(roster, log, s.rules, s.roller), nil
}

// List returns every saved encounter, most recently saved first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (s *Store) List(ctx context.Context) ([]storage.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.name, COUNT(c.position), e.updated_at
		FROM encounters e
		LEFT JOIN encounter_characters c ON c.encounter_id = e.id
		GROUP BY e.id
		ORDER BY e.updated_at DESC, e.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing encounters: %w", err)
	}
	defer rows.Close()

	out := make([]storage.Summary, 0)
	for rows.Next() {
		var (
			sum     storage.Summary
			savedAt int64
		)
		if err := rows.Scan(&sum.Name, &sum.Characters, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning encounter summary: %w", err)
		}
		sum.SavedAt = fromMillis(savedAt)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// marshalJSON encodes v, writing nil slices as an empty array.
func marshalJSON[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nilIfEmpty[T any](v []T) []T {
	if len(v) == 0 {
		return nil
	}
	return v
}
