// Package main is the entrypoint for the AstroMusic API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/astromusic/astromusic/internal/auth"
	"github.com/astromusic/astromusic/internal/cache"
	"github.com/astromusic/astromusic/internal/chart"
	"github.com/astromusic/astromusic/internal/config"
	"github.com/astromusic/astromusic/internal/ephemeris"
	"github.com/astromusic/astromusic/internal/graph"
	"github.com/astromusic/astromusic/internal/handler"
	"github.com/astromusic/astromusic/internal/metrics"
	"github.com/astromusic/astromusic/internal/middleware"
	"github.com/astromusic/astromusic/internal/repository"
	"github.com/astromusic/astromusic/internal/server"
	"github.com/astromusic/astromusic/internal/service"
	"github.com/astromusic/astromusic/internal/zodiac"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	mode, err := chart.ParseMode(cfg.DerivationMode)
	if err != nil {
		return err
	}
	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	if cfg.AutoMigrate {
		if err := migrate(ctx, cfg, logger); err != nil {
			return err
		}
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", config.SanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", config.RedactURL(cfg.DatabaseURL)),
		)
		return fmt.Errorf("connect to database: %s", config.SanitizeError(err, cfg.DatabaseURL))
	}
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", config.SanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", config.RedactURL(cfg.RedisURL)),
		)
		return fmt.Errorf("connect to redis: %s", config.SanitizeError(err, cfg.RedisURL))
	}
	logger.Info("connected to Redis")

	// Graph projection is optional
	var (
		projector   service.GraphProjector
		graphHealth handler.HealthChecker
	)
	proj, err := graph.New(ctx, graph.Config{
		URI:      cfg.Neo4jURI,
		User:     cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
		Database: cfg.Neo4jDatabase,
	}, logger)
	switch {
	case err != nil:
		logger.Warn("graph projection disabled",
			slog.String("error", config.SanitizeError(err, cfg.Neo4jURI)),
			slog.String("neo4j_uri", config.RedactURL(cfg.Neo4jURI)),
		)
	case proj != nil:
		projector, graphHealth = proj, proj
		logger.Info("connected to Neo4j")
	}

	// Initialize services
	recorder := metrics.NewInMemory()
	calc := ephemeris.NewClient(ephemeris.Config{
		BaseURL: cfg.EphemerisURL,
		APIKey:  cfg.EphemerisAPIKey,
		Timeout: cfg.EphemerisTimeout,
	}, logger)
	if cfg.EphemerisURL == "" {
		logger.Warn("EPHEMERIS_URL not set, charts will use the fallback placeholder", slog.String("mode", string(mode)))
	}

	deriver := chart.NewDeriver(calc, zodiac.Default(), logger, chart.Options{
		Mode:     mode,
		Recorder: recorder,
		Reference: chart.Location{
			Latitude:  cfg.TransitLatitude,
			Longitude: cfg.TransitLongitude,
			Timezone:  cfg.TransitTimezone,
		},
	})
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	accounts := service.NewAccountService(service.AccountDeps{
		Users:   repo,
		Charts:  repo,
		Cache:   cacheClient,
		Revoker: cacheClient,
		Graph:   projector,
		Hasher:  auth.NewPasswordHasher(auth.DefaultParams),
		Tokens:  tokens,
		Metrics: recorder,
		Logger:  logger,
	})
	charts := service.NewChartService(repo, cacheClient, deriver, projector, recorder, logger)
	astrology := service.NewAstrologyService(deriver, charts)

	// Setup router
	router := handler.NewRouter(handler.RouterConfig{
		Logger:        logger,
		Authenticator: accounts,
		Limiter:       cacheClient,
		Root:          handler.New(),
		Health:        handler.NewHealthHandler(repo, cacheClient, graphHealth),
		Metrics:       handler.NewMetricsHandler(recorder),
		Auth:          handler.NewAuthHandler(accounts, int64(cfg.AccessTokenTTL.Seconds()), logger),
		Users:         handler.NewUserHandler(accounts, logger),
		Charts:        handler.NewChartHandler(charts, logger),
		Astrology:     handler.NewAstrologyHandler(astrology, logger),
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.GetCORSAllowedOrigins(),
			AllowCredentials: true,
			MaxAge:           middleware.DefaultCORSConfig().MaxAge,
		},
		Security:             middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		MaxRequestBodySize:   cfg.MaxRequestBodySize,
		AuthRateLimitEnabled: cfg.RateLimitAuthEnabled,
		AuthRateLimitRPS:     cfg.RateLimitAuthRPS,
		AuthRateLimitBurst:   cfg.RateLimitAuthBurst,
		TrustedProxies:       trustedProxies,
	})

	// Create and run server
	srv := server.New(router, server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.AppPort),
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Closed in reverse order: graph, redis, postgres.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})
	if proj != nil {
		srv.OnShutdown("neo4j", proj.Close)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"derivation_mode", string(mode),
		"graph_enabled", proj != nil,
	)

	return srv.Run(ctx)
}

func migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := repository.OpenSQL(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database for migrations: %s", config.SanitizeError(err, cfg.DatabaseURL))
	}
	defer db.Close()

	applied, err := repository.Migrate(ctx, db, logger)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("migrations applied", slog.Int("count", applied))
	return nil
}
