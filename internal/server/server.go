package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hongminglow/valuation-be/internal/auth"
	"github.com/hongminglow/valuation-be/internal/config"
	"github.com/hongminglow/valuation-be/internal/http/handlers"
	"github.com/hongminglow/valuation-be/internal/middleware"
	"github.com/hongminglow/valuation-be/internal/prediction"
	"github.com/hongminglow/valuation-be/internal/ratelimit"
	"github.com/hongminglow/valuation-be/internal/report"
	"github.com/hongminglow/valuation-be/internal/storage"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Store     storage.CredentialStore
	Hasher    *auth.PasswordHasher
	Tokens    *auth.TokenManager
	Estimator prediction.Estimator
	Renderer  *report.Renderer
	Logger    zerolog.Logger
	// Denylist and Limiter are optional.
	Denylist auth.Denylist
	Limiter  ratelimit.Limiter
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewRouter(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewRouter builds the full route tree.
func NewRouter(cfg config.Config, deps Deps) http.Handler {
	if deps.Denylist == nil {
		deps.Denylist = auth.NoopDenylist{}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.PeerAddr)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Handle("/metrics", promhttp.Handler())

	handlers.NewHealthHandler(deps.Estimator, deps.Store, time.Now()).Register(r)

	authHandler := handlers.NewAuthHandler(deps.Store, deps.Hasher, deps.Tokens, deps.Denylist)
	authHandler.Register(r, deps.Limiter)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(deps.Tokens, deps.Denylist))
		r.Use(middleware.RequireUser(deps.Store))

		r.Get("/auth/me", authHandler.Me)
		handlers.NewAPIKeyHandler(deps.Store).Register(r)
	})

	predict := handlers.NewPredictHandler(deps.Estimator)
	r.With(middleware.RequireAPIKey(deps.Store)).Post("/predict", predict.Predict)
	r.Post("/predict_local", predict.PredictLocal)

	r.Post("/report", handlers.NewReportHandler(deps.Renderer).Generate)

	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
