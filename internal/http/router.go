package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultRequestTimeout bounds every request handled by the router.
const DefaultRequestTimeout = 60 * time.Second

type RouterConfig struct {
	Interviews *InterviewHandler
	Sessions   *SessionHandler
	Verifier   TokenVerifier
	// MetricsMiddleware wraps routed requests; it must run inside chi so the
	// route pattern is known.
	MetricsMiddleware func(http.Handler) http.Handler
	MetricsHandler    http.Handler
	AllowedOrigins    []string
	RequestTimeout    time.Duration
	Logger            *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", AccessTokenHeader},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.MetricsMiddleware != nil {
		r.Use(cfg.MetricsMiddleware)
	}

	r.Get("/readiness/ping", ReadinessPing)
	r.Head("/readiness/ping", ReadinessPing)
	r.Get("/healthz", Healthz)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	if h := cfg.Interviews; h != nil {
		r.Route("/interviews", func(r chi.Router) {
			r.Use(RequireSession(cfg.Verifier, logger))
			r.Post("/", h.Create)
			r.Get("/", h.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Get)
				r.Get("/history", h.History)
				r.Put("/config", h.UpdateConfig)
				r.Post("/questions", h.GenerateQuestions)
				r.Post("/ready", h.MarkReady)
				r.Post("/schedule", h.Schedule)
				r.Put("/schedule", h.Reschedule)
				r.Post("/invite", h.SendInvite)
				r.Post("/cancel", h.Cancel)
				r.Post("/complete", h.Complete)
				r.Put("/decision", h.SetDecision)
			})
		})
	}

	if h := cfg.Sessions; h != nil {
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.View)
			r.Put("/precheck", h.Precheck)
			r.Post("/admit", h.Admit)
			r.Post("/monitoring", h.Monitoring)
		})
	}

	return r
}
