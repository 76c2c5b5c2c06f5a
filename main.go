package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/farmcare-io/farmcare-engine/pkg/auth"
	"github.com/farmcare-io/farmcare-engine/pkg/config"
	"github.com/farmcare-io/farmcare-engine/pkg/database"
	"github.com/farmcare-io/farmcare-engine/pkg/handlers"
	"github.com/farmcare-io/farmcare-engine/pkg/inference"
	"github.com/farmcare-io/farmcare-engine/pkg/logging"
	"github.com/farmcare-io/farmcare-engine/pkg/mailer"
	"github.com/farmcare-io/farmcare-engine/pkg/middleware"
	"github.com/farmcare-io/farmcare-engine/pkg/repositories"
	"github.com/farmcare-io/farmcare-engine/pkg/retry"
	"github.com/farmcare-io/farmcare-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := connectDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Like the pool connect, migrations can race the database coming up;
	// retry transient failures, fail fast on broken SQL.
	if err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		return runMigrations(cfg, logger)
	}); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	defer jwksClient.Close()

	authService := auth.NewAuthService(jwksClient, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)

	farmerRepo := repositories.NewFarmerRepository(db)
	landRepo := repositories.NewLandRepository(db)
	plantRepo := repositories.NewPlantRepository(db)
	diagnosisRepo := repositories.NewDiagnosisRepository(db)
	scheduleRepo := repositories.NewScheduleRepository(db)

	classifier := inference.NewClassifierClient(cfg.Classifier.BaseURL, logger)
	recommender := inference.NewRecommenderClient(cfg.Recommender.BaseURL, logger)
	emailClient := mailer.NewClient(cfg.Mailer.BaseURL, logger)

	diagnosisService := services.NewDiagnosisService(classifier, diagnosisRepo, cfg.Upload.MaxImageBytes, logger)
	wizardService := services.NewWizardService(diagnosisService, farmerRepo, landRepo, plantRepo, scheduleRepo, recommender, emailClient, logger)
	scheduleService := services.NewScheduleService(scheduleRepo, plantRepo, logger)
	cropService := services.NewCropService(plantRepo, landRepo, diagnosisRepo, scheduleRepo, logger)
	dashboardService := services.NewDashboardService(landRepo, plantRepo, scheduleRepo, diagnosisRepo)
	farmerService := services.NewFarmerService(farmerRepo, logger)
	pesticideService := services.NewPesticideService()

	mux := http.NewServeMux()
	requireAuth := authMiddleware.RequireAuth

	handlers.NewHealthHandler(db, cfg.Version).RegisterRoutes(mux)
	handlers.NewWizardHandler(wizardService, cropService, farmerService, cfg.Upload.MaxImageBytes, logger).RegisterRoutes(mux, requireAuth)
	handlers.NewScheduleHandler(scheduleService, logger).RegisterRoutes(mux, requireAuth)
	handlers.NewCropHandler(cropService, logger).RegisterRoutes(mux, requireAuth)
	handlers.NewDashboardHandler(dashboardService, logger).RegisterRoutes(mux, requireAuth)
	handlers.NewFarmerHandler(farmerService, logger).RegisterRoutes(mux, requireAuth)
	handlers.NewPesticideHandler(pesticideService, logger).RegisterRoutes(mux, requireAuth)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting farmcare-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// newLogger builds the zap logger for the given environment.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// connectDatabase opens the pgx pool, retrying transient startup failures
// (the database container may come up after the service).
func connectDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	return retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:             cfg.Database.ConnectionString(),
			MaxConnections:  cfg.Database.MaxConnections,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
	})
}

// runMigrations applies pending migrations through a short-lived database/sql
// connection, which the migration tooling requires.
func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	return database.RunMigrations(sqlDB, "migrations", logger)
}
