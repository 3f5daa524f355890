package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/costequity/internal/app/controllers"
	"github.com/yigit/costequity/internal/app/metrics"
	appMigrations "github.com/yigit/costequity/internal/app/migrations"
	"github.com/yigit/costequity/internal/app/models/dto"
	appRepos "github.com/yigit/costequity/internal/app/repositories"
	appRoutes "github.com/yigit/costequity/internal/app/routes"
	appServices "github.com/yigit/costequity/internal/app/services"
	"github.com/yigit/costequity/internal/app/store"
	"github.com/yigit/costequity/internal/config"
	"github.com/yigit/costequity/internal/db"
	appMiddleware "github.com/yigit/costequity/internal/middleware"
	pkgAuth "github.com/yigit/costequity/internal/pkg/auth"
	"github.com/yigit/costequity/internal/pkg/helpers"
	"github.com/yigit/costequity/internal/pkg/logger"
	"github.com/yigit/costequity/internal/pkg/validation"
	"github.com/yigit/costequity/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store            store.Store
	DB               *db.PostgresDB // nil for the memory driver
	IngestionService appServices.IngestionService
	QueryService     appServices.QueryService
	Engine           *metrics.Engine
	JWTService       *pkgAuth.JWTService
	AuthMiddleware   *appMiddleware.AuthMiddleware
	Controllers      appRoutes.Controllers
	Logger           zerolog.Logger
}

// ConfigPath returns the config file location, overridable with CONFIG_PATH
func ConfigPath() string {
	return config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(ConfigPath())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format))

	lgr := logger.Get()
	lgr.Info().Str("logLevel", strings.ToLower(cfg.Logging.Level)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore opens the configured store. For the postgres driver it also
// connects and applies migrations.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (store.Store, *db.PostgresDB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Info().Msg("Using in-memory store")
		return store.NewMemoryStore(), nil, nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(pingCtx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return appRepos.NewPostgresStore(database), database, nil
}

// DemographicRules builds the validation rules for diversity payloads from config
func DemographicRules(cfg *config.Config) validation.DemographicRules {
	return validation.DemographicRules{
		Recognized: cfg.Metrics.DemographicFields,
		Tolerance:  cfg.Metrics.PartitionTolerance,
	}
}

// BuildDependencies initializes services, the metrics engine and controllers.
func BuildDependencies(cfg *config.Config, st store.Store, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Store: st, Logger: lgr}

	deps.IngestionService = appServices.NewIngestionService(st, DemographicRules(cfg), lgr)
	deps.QueryService = appServices.NewQueryService(st, lgr)
	deps.Engine = metrics.NewEngine(st, lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	metricsController := appControllers.NewMetricsController(deps.Engine, deps.QueryService, cfg.Metrics.BracketOrder)
	deps.Controllers = appRoutes.Controllers{
		Institutions: appControllers.NewInstitutionController(deps.IngestionService, deps.QueryService),
		Ingestion:    appControllers.NewIngestionController(deps.IngestionService),
		Metrics:      metricsController,
		Queries:      appControllers.NewQueryController(deps.QueryService, metricsController, cfg.Metrics.SummaryTopN),
	}

	return deps
}

// SeedIfEnabled loads the sample data set when seeding is configured
func SeedIfEnabled(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	if !cfg.Seed.Enabled {
		return
	}
	if err := seed.CreateDefaultData(ctx, deps.IngestionService, deps.QueryService, deps.Logger); err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		deps.Logger.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		deps.Logger.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestID(), appMiddleware.RequestLogger(deps.Logger))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok", "driver": cfg.Database.Driver}
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.DB.Pool.Ping(ctx); err != nil {
				detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Database unavailable").WithDetails(err.Error())
				c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(detail))
				return
			}
		}
		c.JSON(http.StatusOK, dto.NewAPIResponse(status))
	})

	return router
}
