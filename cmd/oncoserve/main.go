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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/oncoserve/oncoserve/internal/config"
	"github.com/oncoserve/oncoserve/internal/domain/appointment"
	"github.com/oncoserve/oncoserve/internal/domain/patient"
	"github.com/oncoserve/oncoserve/internal/domain/profile"
	"github.com/oncoserve/oncoserve/internal/domain/session"
	"github.com/oncoserve/oncoserve/internal/platform/audit"
	"github.com/oncoserve/oncoserve/internal/platform/auth"
	"github.com/oncoserve/oncoserve/internal/platform/db"
	"github.com/oncoserve/oncoserve/internal/platform/health"
	"github.com/oncoserve/oncoserve/internal/platform/middleware"
	"github.com/oncoserve/oncoserve/internal/platform/ratelimit"
	"github.com/oncoserve/oncoserve/internal/platform/respond"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "oncoserve",
		Short: "Oncology care API server",
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
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
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
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
					if s.AppliedAt != nil {
						state = "applied " + s.AppliedAt.Format(time.RFC3339)
					}
				}
				fmt.Printf("%04d  %-40s  %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Redis backs rate-limit counters and session revocation when
	// configured; without it both fall back to in-process stores, which is
	// fine for a single instance.
	var counters ratelimit.CounterStore = ratelimit.NewMemoryCounterStore()
	var revocations auth.RevocationStore = auth.NewMemoryRevocationStore()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		counters = ratelimit.NewRedisCounterStore(client)
		revocations = auth.NewRedisRevocationStore(client)
		logger.Info().Msg("connected to redis")
	}

	var provider auth.Provider
	switch cfg.AuthMode {
	case config.AuthModeStatic:
		provider = auth.NewStaticProvider(devIdentities())
		logger.Warn().Msg("static auth provider enabled; do not use in production")
	default:
		provider = auth.NewJWTProvider(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
		})
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = respond.ErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	checker := health.NewChecker(pool, provider, cfg.RequiredEnv())
	e.GET("/health", checker.Handler)
	e.HEAD("/health", checker.HeadHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	trail := audit.NewTrail(audit.Tee{
		audit.NewPGRecorder(pool),
		audit.NewLogRecorder(logger),
	}, logger)
	limiter := ratelimit.NewLimiter(counters, ratelimit.DefaultBuckets(), logger)

	api := e.Group("/api/v1")
	api.Use(auth.Authenticate(provider, revocations))

	patient.NewHandler(patient.NewService(patient.NewRepoPG(pool))).RegisterRoutes(api, trail, limiter)
	appointment.NewHandler(appointment.NewService(appointment.NewRepoPG(pool))).RegisterRoutes(api, trail, limiter)
	profile.NewHandler(profile.NewService(profile.NewRepoPG(pool))).RegisterRoutes(api, trail, limiter)
	session.NewHandler(revocations, cfg.SessionTTL).RegisterRoutes(api, trail, limiter)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}

// devIdentities is the fixture table behind the static auth provider.
func devIdentities() map[string]*auth.Identity {
	return map[string]*auth.Identity{
		"dev-admin-token": {
			ID:          "11111111-1111-1111-1111-111111111111",
			Email:       "admin@oncoserve.local",
			Role:        "ADMIN",
			Department:  "administration",
			Permissions: []string{"patient_read", "patient_write", "appointment_read", "appointment_write"},
			SessionID:   "dev-admin-session",
		},
		"dev-clinician-token": {
			ID:          "22222222-2222-2222-2222-222222222222",
			Email:       "clinician@oncoserve.local",
			Role:        "ONCOLOGIST",
			Department:  "oncology",
			Permissions: []string{"patient_read", "appointment_read", "appointment_write"},
			SessionID:   "dev-clinician-session",
		},
	}
}
