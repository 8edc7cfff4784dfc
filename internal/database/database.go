package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pageza/vegan-dog-recipes/backend/config"
)

// DB bundles the gorm handle with its underlying connection pool
type DB struct {
	Gorm *gorm.DB
	SQL  *sql.DB
}

// GormConfig is the gorm configuration shared by every connection. Timestamps
// are stamped in UTC so created_at does not depend on the host time zone.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// New opens the database selected by cfg.DBDriver. Postgres connections go
// through lib/pq and are handed to gorm; SQLite is opened by the gorm driver.
func New(cfg *config.Config, logger *zap.Logger) (*DB, error) {
	gormCfg := GormConfig()

	switch cfg.DBDriver {
	case config.DriverSQLite:
		logger.Info("Opening SQLite database", zap.String("path", cfg.DBPath))
		gdb, err := gorm.Open(sqlite.Open(cfg.DBPath), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("error opening sqlite database: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("error getting sqlite connection pool: %w", err)
		}
		// SQLite serialises writers
		sqlDB.SetMaxOpenConns(1)
		return &DB{Gorm: gdb, SQL: sqlDB}, nil

	case config.DriverPostgres:
		// Log connection target (without password)
		logger.Info("Connecting to database",
			zap.String("host", cfg.DBHost),
			zap.String("port", cfg.DBPort),
			zap.String("user", cfg.DBUser),
			zap.String("name", cfg.DBName),
		)

		sqlDB, err := sql.Open("postgres", cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}

		// Set connection pool settings
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("error connecting to the database: %w", err)
		}

		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("error initialising gorm: %w", err)
		}

		logger.Info("Successfully connected to database")
		return &DB{Gorm: gdb, SQL: sqlDB}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// HealthCheck checks if the database is accessible
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.SQL.PingContext(ctx)
}

// Close releases the connection pool
func (db *DB) Close() error {
	return db.SQL.Close()
}
