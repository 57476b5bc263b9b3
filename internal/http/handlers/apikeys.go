package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hongminglow/valuation-be/internal/auth"
	"github.com/hongminglow/valuation-be/internal/http/request"
	"github.com/hongminglow/valuation-be/internal/http/respond"
	"github.com/hongminglow/valuation-be/internal/middleware"
	"github.com/hongminglow/valuation-be/internal/models/dto"
	"github.com/hongminglow/valuation-be/internal/storage"
)

const apiKeyCreatedMessage = "API key created successfully. Store this key securely - it won't be shown again."

// APIKeyHandler manages the caller's service keys. Every route expects
// RequireSession and RequireUser in front of it.
type APIKeyHandler struct {
	store    storage.APIKeyStore
	generate func() (string, error)
}

// NewAPIKeyHandler creates the handler.
func NewAPIKeyHandler(store storage.APIKeyStore) *APIKeyHandler {
	return &APIKeyHandler{store: store, generate: auth.GenerateAPIKey}
}

// Register attaches the key routes to r.
func (h *APIKeyHandler) Register(r chi.Router) {
	r.Post("/api-keys", h.Create)
	r.Get("/api-keys", h.List)
	r.Delete("/api-keys/{id}", h.Revoke)
}

func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req dto.CreateAPIKeyRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	secret, err := h.generate()
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("generate api key failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to create API key")
		return
	}

	key, err := h.store.CreateAPIKey(r.Context(), secret, req.Name, user.ID)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int64("user_id", user.ID).Msg("create api key failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to create API key")
		return
	}

	respond.JSON(w, http.StatusOK, dto.CreateAPIKeyResponse{
		ID:        key.ID,
		Key:       secret,
		Name:      key.Name,
		CreatedAt: key.CreatedAt.UTC().Format(time.RFC3339),
		Message:   apiKeyCreatedMessage,
	})
}

func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	keys, err := h.store.ListAPIKeys(r.Context(), user.ID)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int64("user_id", user.ID).Msg("list api keys failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to list API keys")
		return
	}
	respond.JSON(w, http.StatusOK, dto.ListAPIKeysResponse{APIKeys: keys})
}

func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, http.StatusBadRequest, "Invalid API key id")
		return
	}

	revoked, err := h.store.RevokeAPIKey(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "API key not found")
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Int64("api_key_id", id).Msg("revoke api key failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to revoke API key")
		return
	}

	zerolog.Ctx(r.Context()).Info().Int64("api_key_id", id).Bool("changed", revoked).Msg("api key revoked")
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "API key revoked successfully"})
}
