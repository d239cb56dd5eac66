// Package main runs one combat tracker session on the local terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cory-johannsen/exalted-combat/internal/config"
	"github.com/cory-johannsen/exalted-combat/internal/frontend/handlers"
	"github.com/cory-johannsen/exalted-combat/internal/game/dice"
	"github.com/cory-johannsen/exalted-combat/internal/game/npc"
	"github.com/cory-johannsen/exalted-combat/internal/observability"
	"github.com/cory-johannsen/exalted-combat/internal/storage/driver"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	logFile := flag.String("log-file", "tracker.log", "log destination; the terminal is reserved for the tracker")
	roster := flag.String("roster", "", "roster file; overrides content.roster_file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *roster != "" {
		cfg.Content.RosterFile = *roster
	}
	cfg.Logging.OutputPaths = []string{*logFile}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("session failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	rules := cfg.Combat.Rules()
	diceSrc := dice.NewCryptoSource()

	catalog, err := npc.LoadCatalog(cfg.Content.MonstersDir)
	if err != nil {
		logger.Warn("monster catalog unavailable", zap.String("dir", cfg.Content.MonstersDir), zap.Error(err))
		catalog = nil
	}

	sessionCfg := handlers.SessionConfig{
		Source:  npc.FileSource{Path: cfg.Content.RosterFile},
		Dice:    diceSrc,
		Catalog: catalog,
		Rules:   rules,
		LogTail: cfg.Combat.LogTail,
	}
	store, err := driver.Open(ctx, cfg.Storage, rules, dice.NewLoggedRoller(diceSrc, logger), logger)
	if err != nil {
		return fmt.Errorf("opening encounter store: %w", err)
	}
	if store != nil {
		defer store.Close()
		sessionCfg.Store = store
	}

	console := handlers.NewConsole(os.Stdin, os.Stdout)
	tracker, err := handlers.NewTrackerHandler(sessionCfg, logger).NewTracker(console, logger)
	if err != nil {
		return fmt.Errorf("starting encounter: %w", err)
	}
	return handlers.RunSession(ctx, console, tracker)
}
