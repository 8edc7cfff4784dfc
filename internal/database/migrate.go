package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/vegan-dog-recipes/backend/internal/model"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one versioned schema change with its rollback
type Migration struct {
	Name string
	Up   string
	Down string
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	name VARCHAR(255) PRIMARY KEY,
	applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// RunMigrations brings the schema up to date. SQLite databases, used for
// local development and tests, are migrated from the gorm model instead of
// the Postgres SQL files.
func RunMigrations(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		logger.Debug("Using GORM auto-migration for SQLite")
		return db.WithContext(ctx).AutoMigrate(&model.Recipe{})
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get connection pool: %w", err)
	}
	_, err = Up(ctx, sqlDB, logger)
	return err
}

// LoadMigrations reads the embedded migration files, pairing NAME.up.sql with
// NAME.down.sql, sorted by name.
func LoadMigrations() ([]Migration, error) {
	return loadMigrations(migrationFiles, "migrations")
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byName := map[string]*Migration{}
	for _, entry := range entries {
		file := entry.Name()
		var name string
		var up bool
		switch {
		case strings.HasSuffix(file, ".up.sql"):
			name, up = strings.TrimSuffix(file, ".up.sql"), true
		case strings.HasSuffix(file, ".down.sql"):
			name = strings.TrimSuffix(file, ".down.sql")
		default:
			continue
		}

		content, err := fs.ReadFile(fsys, dir+"/"+file)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		m, ok := byName[name]
		if !ok {
			m = &Migration{Name: name}
			byName[name] = m
		}
		if up {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byName))
	for _, m := range byName {
		if m.Up == "" {
			return nil, fmt.Errorf("migration %s has no up script", m.Name)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Name < migrations[j].Name
	})
	return migrations, nil
}

// Up applies every embedded migration not yet recorded in schema_migrations,
// each in its own transaction, and returns the names it applied.
func Up(ctx context.Context, db *sql.DB, logger *zap.Logger) ([]string, error) {
	migrations, err := LoadMigrations()
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied []string
	for _, m := range migrations {
		// Check if migration has already been applied
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE name = $1", m.Name).Scan(&count); err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			logger.Debug("Skipping migration (already applied)", zap.String("migration", m.Name))
			continue
		}

		err := inTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.Up); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", m.Name, err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", m.Name); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", m.Name, err)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}

		logger.Info("Applied migration", zap.String("migration", m.Name))
		applied = append(applied, m.Name)
	}

	return applied, nil
}

// Rollback reverts the most recently applied migration. It returns an empty
// name when nothing has been applied.
func Rollback(ctx context.Context, db *sql.DB, logger *zap.Logger) (string, error) {
	migrations, err := LoadMigrations()
	if err != nil {
		return "", err
	}

	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return "", fmt.Errorf("failed to create migrations table: %w", err)
	}

	var latest string
	err = db.QueryRowContext(ctx, "SELECT name FROM schema_migrations ORDER BY name DESC LIMIT 1").Scan(&latest)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Info("No migrations to roll back")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find latest migration: %w", err)
	}

	var target *Migration
	for i := range migrations {
		if migrations[i].Name == latest {
			target = &migrations[i]
			break
		}
	}
	if target == nil {
		return "", fmt.Errorf("applied migration %s is not embedded in this binary", latest)
	}
	if target.Down == "" {
		return "", fmt.Errorf("migration %s has no down script", latest)
	}

	err = inTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, target.Down); err != nil {
			return fmt.Errorf("failed to roll back migration %s: %w", latest, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE name = $1", latest); err != nil {
			return fmt.Errorf("failed to unrecord migration %s: %w", latest, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.Info("Rolled back migration", zap.String("migration", latest))
	return latest, nil
}

func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
