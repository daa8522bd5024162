package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gigworks/gigtax/internal/adapters/cache"
	"github.com/gigworks/gigtax/internal/adapters/database/pgsql"
	genaiscorer "github.com/gigworks/gigtax/internal/adapters/genai"
	"github.com/gigworks/gigtax/internal/adapters/lock"
	"github.com/gigworks/gigtax/internal/core/services"
	"github.com/gigworks/gigtax/internal/handlers"
	"github.com/gigworks/gigtax/internal/middleware"
	"github.com/gigworks/gigtax/internal/validator"
	"github.com/gigworks/gigtax/pkg/config"
	"github.com/gigworks/gigtax/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title GigTax Backend API
// @version 1.0
// @description Expense classification and tax estimation engine for gig workers.

// @host localhost:8080
// @BasePath /
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	// Defer closing the connection pool
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)

	// Optional infrastructure: redis-backed lock + cache, Gemini scorer.
	containerOpts := []services.ContainerOption{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		containerOpts = append(containerOpts,
			services.WithContainerSummaryLock(lock.NewRedisSummaryLock(redisClient)),
			services.WithContainerReportCache(cache.NewRedisReportCache(redisClient)),
		)
		logger.Info("Redis summary lock and report cache enabled", slog.String("addr", cfg.RedisAddr))
	}
	if cfg.GeminiAPIKey != "" {
		scorer, err := genaiscorer.NewGeminiScorer(context.Background(), cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini scorer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		containerOpts = append(containerOpts, services.WithContainerModelScorer(scorer))
		logger.Info("Gemini statistical stage enabled", slog.String("model", cfg.GeminiModel))
	}

	serviceContainer, err := services.NewServiceContainer(cfg, repos, containerOpts...)
	if err != nil {
		logger.Error("Failed to build service container", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	validator.Register()

	// Global middleware (logging, recovery, cors)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rate, err := limiter.NewRateFromFormatted(cfg.IngestRateLimit)
	if err != nil {
		logger.Error("Invalid INGEST_RATE_LIMIT", slog.String("value", cfg.IngestRateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	ingestLimiter := limiter.New(memory.NewStore(), rate)

	handlers.RegisterRoutes(r, cfg, serviceContainer, ingestLimiter)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations using a temporary
// database/sql connection via the pgx stdlib driver.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
