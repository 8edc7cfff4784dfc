package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pageza/vegan-dog-recipes/backend/config"
	"github.com/pageza/vegan-dog-recipes/backend/internal/database"
	"github.com/pageza/vegan-dog-recipes/backend/internal/logger"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync(log)

	if cfg.DBDriver != config.DriverPostgres {
		log.Fatal("migrate only supports the postgres driver; sqlite schemas are created on API startup",
			zap.String("driver", cfg.DBDriver))
	}

	// DATABASE_URL overrides the discrete DB_* settings.
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.PostgresDSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()

	if *rollback {
		name, err := database.Rollback(ctx, db, log)
		if err != nil {
			log.Fatal("rollback failed", zap.Error(err))
		}
		if name == "" {
			fmt.Println("No migrations to rollback")
			return
		}
		fmt.Printf("Successfully rolled back migration: %s\n", name)
		return
	}

	applied, err := database.Up(ctx, db, log)
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	for _, name := range applied {
		fmt.Printf("Successfully applied migration: %s\n", name)
	}
	fmt.Println("All migrations applied successfully.")
}
