// Package driver opens the encounter store selected by configuration.
package driver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/exalted-combat/internal/config"
	"github.com/cory-johannsen/exalted-combat/internal/game/combat"
	"github.com/cory-johannsen/exalted-combat/internal/storage"
	"github.com/cory-johannsen/exalted-combat/internal/storage/postgres"
	"github.com/cory-johannsen/exalted-combat/internal/storage/sqlite"
)

// Store saves and restores named encounters and owns its connections.
type Store interface {
	Save(ctx context.Context, name string, enc *combat.Encounter) error
	Load(ctx context.Context, name string) (*combat.Encounter, error)
	List(ctx context.Context) ([]storage.Summary, error)
	// Health reports whether the backing database is reachable.
	Health(ctx context.Context) error
	Close() error
}

// Open connects the store named by cfg.Driver. The postgres driver migrates
// the schema first. Loaded encounters use rules and roller.
//
// Postcondition: Returns (nil, nil) for the none driver.
func Open(ctx context.Context, cfg config.StorageConfig, rules combat.Rules, roller combat.Roller, logger *zap.Logger) (Store, error) {
	start := time.Now()
	switch cfg.Driver {
	case config.DriverNone:
		logger.Info("encounter storage disabled")
		return nil, nil

	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath, rules, roller)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite store opened",
			zap.String("path", cfg.SQLitePath),
			zap.Duration("elapsed", time.Since(start)),
		)
		return sqliteStore{s}, nil

	case config.DriverPostgres:
		state, err := postgres.Migrate(cfg.Database, false, 0)
		if err != nil {
			return nil, err
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Uint("schema_version", state.Version),
			zap.Duration("elapsed", time.Since(start)),
		)
		return &postgresStore{
			EncounterRepository: postgres.NewEncounterRepository(pool.DB(), rules, roller),
			pool:                pool,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

type sqliteStore struct {
	*sqlite.Store
}

func (s sqliteStore) Health(ctx context.Context) error {
	return s.Ping(ctx)
}

type postgresStore struct {
	*postgres.EncounterRepository
	pool *postgres.Pool
}

func (s *postgresStore) Health(ctx context.Context) error {
	return s.pool.Health(ctx, 5*time.Second)
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}
