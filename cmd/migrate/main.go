// Package main applies the encounter schema migrations to PostgreSQL.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cory-johannsen/exalted-combat/internal/config"
	"github.com/cory-johannsen/exalted-combat/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	var down bool
	switch *direction {
	case "up":
	case "down":
		down = true
	default:
		log.Fatalf("invalid direction %q: must be 'up' or 'down'", *direction)
	}
	if *steps < 0 {
		log.Fatalf("invalid steps %d: must be >= 0", *steps)
	}

	state, err := postgres.Migrate(cfg.Storage.Database, down, *steps)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	elapsed := time.Since(start)
	if !state.Changed {
		fmt.Fprintf(os.Stdout, "no changes (version=%d dirty=%v) [%s]\n", state.Version, state.Dirty, elapsed)
	} else {
		fmt.Fprintf(os.Stdout, "migrated %s to version=%d dirty=%v [%s]\n", *direction, state.Version, state.Dirty, elapsed)
	}
}
