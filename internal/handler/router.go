package handler

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"

	"github.com/astromusic/astromusic/internal/middleware"
)

// RouterConfig wires handlers and middleware into the HTTP surface.
type RouterConfig struct {
	Logger        *slog.Logger
	Authenticator middleware.Authenticator
	Limiter       middleware.Limiter

	Root      *Handler
	Health    *HealthHandler
	Metrics   *MetricsHandler
	Auth      *AuthHandler
	Users     *UserHandler
	Charts    *ChartHandler
	Astrology *AstrologyHandler

	CORS               middleware.CORSConfig
	Security           middleware.SecurityConfig
	MaxRequestBodySize int64
	// TrustedProxies may set X-Forwarded-For and X-Real-IP.
	TrustedProxies []netip.Prefix

	AuthRateLimitEnabled bool
	AuthRateLimitRPS     float64
	AuthRateLimitBurst   int
}

// NewRouter builds the API router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.ClientIP(cfg.TrustedProxies))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/", cfg.Root.Hello)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	r.Get("/metrics", cfg.Metrics.Metrics)

	authenticated := middleware.Auth(middleware.AuthConfig{
		Logger:        cfg.Logger,
		Authenticator: cfg.Authenticator,
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimitIP(middleware.RateLimitConfig{
				Logger:  cfg.Logger,
				Limiter: cfg.Limiter,
				Enabled: cfg.AuthRateLimitEnabled,
				Scope:   "auth",
				RPS:     cfg.AuthRateLimitRPS,
				Burst:   cfg.AuthRateLimitBurst,
			}))
			r.Post("/register", cfg.Auth.Register)
			r.Post("/login", cfg.Auth.Login)
			r.Post("/refresh", cfg.Auth.Refresh)
			r.Post("/logout", cfg.Auth.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", cfg.Users.Me)
				r.Put("/", cfg.Users.Update)
				r.Delete("/", cfg.Users.Delete)
			})

			r.Route("/birth-charts", func(r chi.Router) {
				r.Post("/", cfg.Charts.Upsert)
				r.Get("/me", cfg.Charts.Get)
				r.Get("/me/data", cfg.Charts.Data)
				r.Delete("/me", cfg.Charts.Delete)
			})

			r.Route("/astrology", func(r chi.Router) {
				r.Post("/birth-chart", cfg.Astrology.BirthChart)
				r.Get("/transits", cfg.Astrology.Transits)
				r.Post("/cosmic-influence", cfg.Astrology.CosmicInfluence)
				r.Get("/zodiac/{sign}", cfg.Astrology.Zodiac)
			})

			r.With(middleware.RequireSuperuser()).Patch("/admin/users/{id}", cfg.Users.SetActive)
		})
	})

	r.NotFound(cfg.Root.NotFound)
	r.MethodNotAllowed(cfg.Root.MethodNotAllowed)

	return r
}
