// Package main provides the combat tracker daemon. Every Telnet connection
// runs its own tracker session with its own encounter.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/exalted-combat/internal/config"
	"github.com/cory-johannsen/exalted-combat/internal/frontend/handlers"
	"github.com/cory-johannsen/exalted-combat/internal/frontend/telnet"
	"github.com/cory-johannsen/exalted-combat/internal/game/dice"
	"github.com/cory-johannsen/exalted-combat/internal/game/npc"
	"github.com/cory-johannsen/exalted-combat/internal/observability"
	"github.com/cory-johannsen/exalted-combat/internal/server"
	"github.com/cory-johannsen/exalted-combat/internal/storage/driver"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	healthInterval := flag.Duration("health-interval", 30*time.Second, "encounter store health check interval")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting combat tracker",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx := context.Background()
	rules := cfg.Combat.Rules()
	diceSrc := dice.NewCryptoSource()

	source := npc.FileSource{Path: cfg.Content.RosterFile}
	roster, err := source.LoadRoster()
	if err != nil {
		logger.Fatal("loading roster", zap.Error(err))
	}
	catalog, err := npc.LoadCatalog(cfg.Content.MonstersDir)
	if err != nil {
		logger.Warn("monster catalog unavailable", zap.String("dir", cfg.Content.MonstersDir), zap.Error(err))
		catalog = nil
	}
	logger.Info("content loaded",
		zap.Int("roster", len(roster)),
		zap.Int("monsters", catalogLen(catalog)),
	)

	store, err := driver.Open(ctx, cfg.Storage, rules, dice.NewLoggedRoller(diceSrc, logger), logger)
	if err != nil {
		logger.Fatal("opening encounter store", zap.Error(err))
	}

	sessionCfg := handlers.SessionConfig{
		Source:  source,
		Dice:    diceSrc,
		Catalog: catalog,
		Rules:   rules,
		LogTail: cfg.Combat.LogTail,
	}
	if store != nil {
		sessionCfg.Store = store
	}
	acceptor := telnet.NewAcceptor(cfg.Telnet, handlers.NewTrackerHandler(sessionCfg, logger), logger)

	lifecycle := server.NewLifecycle(logger)
	if store != nil {
		stop := make(chan struct{})
		lifecycle.Add("store", &server.FuncService{
			StartFn: func() error {
				ticker := time.NewTicker(*healthInterval)
				defer ticker.Stop()
				for {
					select {
					case <-stop:
						return nil
					case <-ticker.C:
						if err := store.Health(ctx); err != nil {
							logger.Warn("encounter store health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: func() {
				close(stop)
				if err := store.Close(); err != nil {
					logger.Warn("closing encounter store", zap.Error(err))
				}
			},
		})
	}
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("tracker initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func catalogLen(c *npc.Catalog) int {
	if c == nil {
		return 0
	}
	return c.Len()
}
