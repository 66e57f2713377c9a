package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/classtrack/classtrack/internal/app/controllers"
	appMigrations "github.com/classtrack/classtrack/internal/app/migrations"
	appRepos "github.com/classtrack/classtrack/internal/app/repositories"
	appRoutes "github.com/classtrack/classtrack/internal/app/routes"
	appServices "github.com/classtrack/classtrack/internal/app/services"
	"github.com/classtrack/classtrack/internal/config"
	"github.com/classtrack/classtrack/internal/db"
	appMiddleware "github.com/classtrack/classtrack/internal/middleware"
	pkgAuth "github.com/classtrack/classtrack/internal/pkg/auth"
	"github.com/classtrack/classtrack/internal/pkg/cache"
	"github.com/classtrack/classtrack/internal/pkg/helpers"
	"github.com/classtrack/classtrack/internal/pkg/logger"
	"github.com/classtrack/classtrack/internal/pkg/metrics"
	"github.com/classtrack/classtrack/internal/pkg/sessioncode"
	"github.com/classtrack/classtrack/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services          *appServices.Services
	SubjectController *appControllers.SubjectController
	SessionController *appControllers.SessionController
	CheckInController *appControllers.CheckInController
	AuthMiddleware    *appMiddleware.AuthMiddleware
	CheckInLimiter    *appMiddleware.TokenBucket
	Repos             *appRepos.Repositories
	JWTService        *pkgAuth.JWTService
	Metrics           *metrics.Metrics
	Cache             *cache.Redis
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)
	deps.Metrics = metrics.New()

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	// Optional redis fast path in front of the attendance ledger. A nil
	// cache degrades every duplicate check to the database.
	if cfg.Redis.Enabled {
		deps.Cache = cache.NewRedis(cfg.Redis.Addr)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		healthy := deps.Cache.Healthy(ctx)
		cancel()
		if !healthy {
			lgr.Warn().Str("addr", cfg.Redis.Addr).Msg("Redis unreachable at startup, duplicate checks fall back to database")
		} else {
			lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis duplicate guard enabled")
		}
	}

	codes := sessioncode.NewGenerator(cfg.Attendance.CodeLength)
	guardTTL := helpers.ParseDuration(cfg.Redis.GuardTTL, 1*time.Hour)

	deps.Services = &appServices.Services{
		SubjectService: appServices.NewSubjectService(deps.Repos.SubjectRepository),
		SessionService: appServices.NewSessionService(
			deps.Repos.SessionRepository,
			deps.Repos.SubjectRepository,
			codes,
			cfg.SessionTTL(),
			cfg.Attendance.CodeAttempts,
			deps.Metrics,
		),
		CheckInService: appServices.NewCheckInService(
			deps.Repos.SessionRepository,
			deps.Repos.AttendanceRepository,
			deps.Cache,
			guardTTL,
			deps.Metrics,
		),
		ExportService: appServices.NewExportService(
			deps.Repos.SessionRepository,
			deps.Repos.AttendanceRepository,
		),
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.CheckInLimiter = appMiddleware.NewTokenBucket(
		cfg.Attendance.CheckInRatePerMinute,
		cfg.Attendance.CheckInRatePerMinute,
	)

	deps.SubjectController = appControllers.NewSubjectController(deps.Services.SubjectService)
	deps.SessionController = appControllers.NewSessionController(deps.Services.SessionService, deps.Services.ExportService)
	deps.CheckInController = appControllers.NewCheckInController(deps.Services.CheckInService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestID())
	router.Use(appMiddleware.AccessLog())
	router.Use(deps.Metrics.GinMiddleware())

	appRoutes.SetupRouter(router,
		deps.SubjectController,
		deps.SessionController,
		deps.CheckInController,
		deps.AuthMiddleware,
		deps.CheckInLimiter,
	)

	return router
}
