package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/PIO-VIA/blood-bank/internal/analytics"
	"github.com/PIO-VIA/blood-bank/internal/config"
	"github.com/PIO-VIA/blood-bank/internal/domain/donation"
	"github.com/PIO-VIA/blood-bank/internal/domain/donor"
	"github.com/PIO-VIA/blood-bank/internal/domain/product"
	"github.com/PIO-VIA/blood-bank/internal/domain/screening"
	"github.com/PIO-VIA/blood-bank/internal/domain/synclog"
	"github.com/PIO-VIA/blood-bank/internal/health"
	"github.com/PIO-VIA/blood-bank/internal/importer"
	"github.com/PIO-VIA/blood-bank/internal/platform/db"
	"github.com/PIO-VIA/blood-bank/internal/platform/dhis2"
	"github.com/PIO-VIA/blood-bank/internal/platform/metrics"
	"github.com/PIO-VIA/blood-bank/internal/platform/middleware"
	"github.com/PIO-VIA/blood-bank/internal/sync"
)

const serviceName = "blood-bank-dhis2-service"

func main() {
	rootCmd := &cobra.Command{
		Use:   "bloodbank-server",
		Short: "Blood bank DHIS2 integration service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	m := metrics.New()

	dhis2Client := dhis2.NewClient(dhis2.Config{
		BaseURL:    cfg.DHIS2BaseURL,
		Username:   cfg.DHIS2Username,
		Password:   cfg.DHIS2Password,
		APIVersion: cfg.DHIS2APIVersion,
		OrgUnit:    cfg.DHIS2OrgUnit,
		Timeout:    cfg.DHIS2Timeout,
	}, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(m.Middleware())
	e.Use(middleware.BodyLimit("10M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Repositories
	donorRepo := donor.NewRepoPG(pool)
	donationRepo := donation.NewRepoPG(pool)
	productRepo := product.NewRepoPG(pool)
	screeningRepo := screening.NewRepoPG(pool)
	syncLogRepo := synclog.NewRepoPG(pool)

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.RequestTimeout(60 * time.Second))

	// Import endpoints
	validator := importer.NewValidator(donorRepo, donationRepo)
	importSvc := importer.NewService(
		db.NewTransactor(pool),
		donorRepo, donationRepo, productRepo, screeningRepo,
		validator, m, logger)
	importer.NewHandler(importSvc).RegisterRoutes(apiV1)

	// Sync endpoints
	syncSvc := sync.NewService(syncLogRepo, donationRepo, productRepo, dhis2Client, m, logger)
	sync.NewHandler(syncSvc).RegisterRoutes(apiV1)

	// Analytics endpoints
	analyticsSvc := analytics.NewService(analytics.NewRepoPG(pool), donationRepo, logger)
	analytics.NewHandler(analyticsSvc).RegisterRoutes(apiV1)

	// Health endpoints
	ping := func(ctx context.Context) error { return db.Ping(ctx, pool) }
	healthHandler := health.NewHandler(
		ping, dhis2Client, health.NewRepoPG(pool), m,
		serviceName, cfg.AppVersion, logger)
	healthHandler.RegisterRoutes(e.Group("/health"))

	// Prometheus exposition
	e.GET("/metrics", m.Handler())

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
