package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/vegan-dog-recipes/backend/config"
	"github.com/pageza/vegan-dog-recipes/backend/internal/database"
	"github.com/pageza/vegan-dog-recipes/backend/internal/logger"
	"github.com/pageza/vegan-dog-recipes/backend/internal/metrics"
	"github.com/pageza/vegan-dog-recipes/backend/internal/middleware"
	"github.com/pageza/vegan-dog-recipes/backend/internal/router"
	"github.com/pageza/vegan-dog-recipes/backend/internal/server"
	"github.com/pageza/vegan-dog-recipes/backend/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync(log)

	log.Info("Starting vegan dog recipe API",
		zap.String("environment", string(cfg.Environment)),
		zap.String("db_driver", cfg.DBDriver),
	)

	ctx := context.Background()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Gorm, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	m := metrics.New()
	recipes := service.NewRecipeService(db.Gorm, log)

	deps := router.Dependencies{
		Recipes:        recipes,
		Generator:      service.NewRecipeGenerator(nil),
		DB:             db,
		Metrics:        m,
		Logger:         log,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	// Redis only backs rate limiting, so the API still serves without it.
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(cfg, log)
		if err != nil {
			log.Warn("Redis unavailable, generate rate limiting disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}
	deps.RateLimiter = middleware.NewGenerateRateLimiter(redisClient, cfg.GenerateRateLimit, cfg.GenerateRateWindow, log, m)

	if cfg.ExportEnabled() {
		store, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			log.Warn("S3 unavailable, recipe export disabled", zap.Error(err))
		} else {
			deps.Archive = service.NewRecipeArchive(store, log)
			log.Info("Recipe export enabled", zap.String("bucket", cfg.S3Bucket))
		}
	}

	srv := server.New(cfg, router.SetupRouter(deps), log)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("Received signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
