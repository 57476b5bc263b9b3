package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hongminglow/valuation-be/internal/http/respond"
	"github.com/hongminglow/valuation-be/internal/models/dto"
	"github.com/hongminglow/valuation-be/internal/prediction"
)

const dummyColumnsPlaceholder = "(test mode) send any raw fields"

// Pinger reports dependency reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness, readiness and model status.
type HealthHandler struct {
	estimator prediction.Estimator
	db        Pinger
	startedAt time.Time
}

// NewHealthHandler creates the status endpoints handler.
func NewHealthHandler(estimator prediction.Estimator, db Pinger, startedAt time.Time) *HealthHandler {
	return &HealthHandler{estimator: estimator, db: db, startedAt: startedAt}
}

// Register wires the handler into a router.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/readyz", h.Readyz)
	r.Get("/columns", h.Columns)
}

type rootResponse struct {
	Message  string `json:"message"`
	TestMode bool   `json:"test_mode"`
}

type healthResponse struct {
	OK           bool   `json:"ok"`
	TestMode     bool   `json:"test_mode"`
	ModelLoaded  bool   `json:"model_loaded"`
	ColumnsCount *int   `json:"columns_count"`
	ModelPath    string `json:"model_path"`
	Uptime       string `json:"uptime"`
}

func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, rootResponse{
		Message:  "API running",
		TestMode: h.estimator.Status().DummyMode,
	})
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	status := h.estimator.Status()

	var count *int
	if len(status.Columns) > 0 {
		n := len(status.Columns)
		count = &n
	}

	respond.JSON(w, http.StatusOK, healthResponse{
		OK:           true,
		TestMode:     status.DummyMode,
		ModelLoaded:  status.ModelLoaded,
		ColumnsCount: count,
		ModelPath:    status.ModelPath,
		Uptime:       time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{"db": "ok"}
	if err := h.db.Ping(ctx); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
		checks["db"] = err.Error()
		respond.JSON(w, http.StatusServiceUnavailable, checks)
		return
	}
	respond.JSON(w, http.StatusOK, checks)
}

func (h *HealthHandler) Columns(w http.ResponseWriter, _ *http.Request) {
	status := h.estimator.Status()
	if status.DummyMode {
		respond.JSON(w, http.StatusOK, dto.ColumnsResponse{Columns: []string{dummyColumnsPlaceholder}})
		return
	}
	if len(status.Columns) == 0 {
		respond.Error(w, http.StatusInternalServerError, "Training columns not found")
		return
	}
	respond.JSON(w, http.StatusOK, dto.ColumnsResponse{Columns: status.Columns})
}
