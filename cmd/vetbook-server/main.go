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

	"github.com/vetbook/vetbook/internal/config"
	"github.com/vetbook/vetbook/internal/domain/booking"
	"github.com/vetbook/vetbook/internal/domain/directory"
	"github.com/vetbook/vetbook/internal/domain/identity"
	"github.com/vetbook/vetbook/internal/domain/review"
	"github.com/vetbook/vetbook/internal/domain/verification"
	"github.com/vetbook/vetbook/internal/platform/auth"
	"github.com/vetbook/vetbook/internal/platform/blobstore"
	"github.com/vetbook/vetbook/internal/platform/cache"
	"github.com/vetbook/vetbook/internal/platform/db"
	"github.com/vetbook/vetbook/internal/platform/middleware"
	"github.com/vetbook/vetbook/internal/platform/notification"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vetbook-server",
		Short: "Vet clinic discovery and booking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(codesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
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
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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

func codesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "Manage verification codes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete verification codes past their retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			repo := verification.NewRepoPG(pool)
			deleted, err := repo.DeleteOlderThan(ctx, time.Now().Add(-verification.PurgeAge))
			if err != nil {
				return fmt.Errorf("purge failed: %w", err)
			}

			fmt.Printf("Deleted %d expired verification code(s).\n", deleted)
			return nil
		},
	})

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "" || os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Cache: Redis when configured, in-process memory otherwise.
	var scheduleCache cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisCache.Close()
		scheduleCache = redisCache
		logger.Info().Msg("connected to redis")
	} else {
		scheduleCache = cache.NewMemoryCache()
		logger.Warn().Msg("REDIS_URL not set; using in-memory schedule cache")
	}

	// Outbound messaging: real providers when credentials are present,
	// console logging otherwise.
	console := notification.NewConsoleSender(logger)
	var smsSender notification.SMSSender = console
	if cfg.TwilioAccountSID != "" {
		smsSender = notification.NewTwilioSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		logger.Info().Msg("SMS delivery via Twilio")
	}
	var emailSender notification.EmailSender = console
	if cfg.SMTPHost != "" {
		emailSender = notification.NewSMTPEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
		logger.Info().Msg("email delivery via SMTP")
	}
	templates := notification.NewTemplateEngine()

	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), "vetbook", time.Duration(cfg.JWTTTLHours)*time.Hour)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	authed := apiV1.Group("", auth.Middleware(tokens))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// -- Repositories and services --

	userRepo := identity.NewRepoPG(pool)
	verifRepo := verification.NewRepoPG(pool)
	clinicRepo := directory.NewClinicRepoPG(pool)
	doctorRepo := directory.NewDoctorRepoPG(pool)
	reviewRepo := review.NewRepoPG(pool)
	apptRepo := booking.NewRepoPG(pool)

	verifSvc := verification.NewService(verifRepo, userRepo, smsSender, templates, logger)
	identitySvc := identity.NewService(userRepo, verifSvc, tokens, func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	})
	directorySvc := directory.NewService(clinicRepo, doctorRepo)
	reviewSvc := review.NewService(reviewRepo, directorySvc, logger)
	bookingSvc := booking.NewService(apptRepo, identitySvc, directorySvc, scheduleCache, emailSender, templates, logger)

	verification.NewHandler(verifSvc).RegisterRoutes(apiV1)
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1, authed)
	directory.NewHandler(directorySvc).RegisterRoutes(apiV1, authed)
	review.NewHandler(reviewSvc).RegisterRoutes(apiV1, authed)
	booking.NewHandler(bookingSvc).RegisterRoutes(apiV1, authed, auth.Optional(tokens))

	blobstore.NewBlobHandler(blobstore.NewInMemoryBlobStore()).RegisterRoutes(authed)

	// Background purge of stale verification codes.
	purgeCtx, purgeCancel := context.WithCancel(ctx)
	defer purgeCancel()
	go verifSvc.RunPeriodicPurge(purgeCtx, 15*time.Minute)

	// Start server with graceful shutdown.
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}
