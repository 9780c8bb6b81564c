package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lensa-net/lensa-be/internal/config"
)

// SetupRouter creates the main Chi router for the application.
// Handlers and the rate-limit middleware are injected so tests can wire fresh
// instances per case.
func SetupRouter(analyze *AnalyzeHandler, health *HealthHandler, rateLimit *RateLimitMiddleware, corsOptions cors.Options) *chi.Mux {
	r := chi.NewRouter()

	// --- Standard Middleware ---
	// Logger: Logs request details (method, path, latency, status).
	r.Use(middleware.Logger)
	// Recoverer: Recovers from panics and returns a 500 error instead of crashing.
	r.Use(middleware.Recoverer)

	// --- CORS Middleware ---
	// Preflight requests are answered for all routes; requests without an
	// Origin header (non-browser clients) always pass through.
	r.Use(cors.Handler(corsOptions))

	// --- Route Definitions ---
	r.Get("/health", health.Check)
	r.Get("/test", health.Test)
	// Only the forwarding route is rate limited.
	r.With(rateLimit.Limit).Method(http.MethodPost, "/analyze", analyze)

	return r
}

// CORSOptions builds the CORS policy from configuration. Outside production
// the policy is permissive so local frontends can hit the gateway directly;
// in production only the exact allow-list is granted.
func CORSOptions(cfg *config.Config) cors.Options {
	allowedOrigins := cfg.CORS.AllowedOrigins
	if !cfg.IsProduction() {
		allowedOrigins = []string{"*"}
	}

	return cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Origin"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any major browser
	}
}
