package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Yzairi/CDA/internal/handler"
	"github.com/Yzairi/CDA/internal/middleware"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Users     *handler.UserHandler
	Listings  *handler.ListingHandler
	Images    *handler.ImageHandler
	Stats     *handler.StatsHandler
	Assistant *handler.AssistantHandler
	Health    *handler.HealthHandler
}

type Options struct {
	Tokens middleware.TokenParser
	// Metrics may be nil.
	Metrics            middleware.HTTPObserver
	RateLimitPerMinute int
	Logger             *logger.Logger
}

func NewRouter(h Handlers, opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Tracing)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(chimw.Recoverer)
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}

	r.Get("/healthz", h.Health.Live)
	r.Get("/readyz", h.Health.Ready)

	auth := middleware.JWTAuth(opts.Tokens, opts.Logger)
	limit := rateLimit(opts.RateLimitPerMinute)

	SetupUserRoutes(r, h.Users, auth, limit)
	SetupListingRoutes(r, h.Listings, h.Images, auth)
	SetupStatsRoutes(r, h.Stats, auth)
	SetupAssistantRoutes(r, h.Assistant, auth, limit)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

// rateLimit allows perMinute requests per client IP and endpoint.
func rateLimit(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(
		perMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, "rate_limited", "too many requests, retry later")
		}),
	)
}

func writeJSON(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": kind, "message": message})
}
