package handler

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hszk-dev/aora/internal/api/middleware"
	"github.com/hszk-dev/aora/internal/usecase"
)

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Service         usecase.Service
	Logger          *slog.Logger
	MaxUploadSize   int64
	SignInPerMinute int
	HealthChecks    map[string]Pinger
	// TrustedProxies may set the client address through forwarded headers.
	TrustedProxies []netip.Prefix
}

// NewRouter mounts every /v1 route plus /health and /metrics.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP(cfg.TrustedProxies))
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", Health(cfg.HealthChecks))
	r.Handle("/metrics", promhttp.Handler())

	users := NewUserHandler(cfg.Service)
	posts := NewPostHandler(cfg.Service, cfg.MaxUploadSize)
	files := NewFileHandler(cfg.Service, cfg.MaxUploadSize)
	signInLimiter := middleware.NewRateLimiter(cfg.SignInPerMinute, time.Minute, cfg.SignInPerMinute, 10*time.Minute)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Session)

		r.Post("/users", users.Create)
		r.Get("/users/me", users.Me)
		r.Get("/users/{id}/posts", users.Posts)
		r.Get("/users/{id}/saved", users.Saved)

		r.With(middleware.RateLimit(signInLimiter)).Post("/sessions", users.SignIn)
		r.Delete("/sessions/current", users.SignOut)

		r.Get("/posts", posts.List)
		r.Get("/posts/latest", posts.Latest)
		r.Get("/posts/search", posts.Search)
		r.Get("/files/{id}/preview", files.Preview)
		r.Get("/avatars/initials", Avatar)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser(cfg.Service))

			r.Post("/users/{id}/saved/{videoID}", users.ToggleSaved)
			r.Post("/posts", posts.Create)
			r.Post("/files", files.Upload)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		Error(w, http.StatusNotFound, "not_found", "Route not found")
	})

	return r
}
