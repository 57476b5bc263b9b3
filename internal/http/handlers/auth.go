package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hongminglow/valuation-be/internal/auth"
	"github.com/hongminglow/valuation-be/internal/http/request"
	"github.com/hongminglow/valuation-be/internal/http/respond"
	"github.com/hongminglow/valuation-be/internal/middleware"
	"github.com/hongminglow/valuation-be/internal/models"
	"github.com/hongminglow/valuation-be/internal/models/dto"
	"github.com/hongminglow/valuation-be/internal/ratelimit"
	"github.com/hongminglow/valuation-be/internal/storage"
)

const tokenType = "bearer"

// AuthHandler owns signup, login and session endpoints.
type AuthHandler struct {
	store    storage.UserStore
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenManager
	denylist auth.Denylist
}

// NewAuthHandler constructs the handler. A nil denylist keeps logout stateless.
func NewAuthHandler(store storage.UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenManager, denylist auth.Denylist) *AuthHandler {
	if denylist == nil {
		denylist = auth.NoopDenylist{}
	}
	return &AuthHandler{store: store, hasher: hasher, tokens: tokens, denylist: denylist}
}

// Register attaches the public auth routes. A non-nil limiter throttles
// signup and login per client address.
func (h *AuthHandler) Register(r chi.Router, limiter ratelimit.Limiter) {
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(middleware.RateLimit(limiter, "auth"))
		}
		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/login", h.Login)
	})
	r.Post("/auth/logout", h.Logout)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	passwordHash, err := h.hasher.Hash(req.Password)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("hash password failed")
		respond.Error(w, http.StatusInternalServerError, "Signup failed")
		return
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		Avatar:       req.Avatar,
	}
	created, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusBadRequest, "Email already registered")
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("create user failed")
		respond.Error(w, http.StatusInternalServerError, "Signup failed")
		return
	}

	h.issue(w, r, created.Email)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := request.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.store.FindUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "Incorrect email or password")
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("find user failed")
		respond.Error(w, http.StatusInternalServerError, "Login failed")
		return
	}

	ok, err := h.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Int64("user_id", user.ID).Msg("stored password hash unreadable")
	}
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	h.issue(w, r, user.Email)
}

// Me returns the profile of the session user. Mounted behind RequireUser.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respond.JSON(w, http.StatusOK, dto.ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt,
	})
}

// Logout always succeeds. When a denylist is configured and the request
// carries a valid token, that token stops working.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.BearerToken(r); token != "" {
		if claims, err := h.tokens.Verify(token); err == nil && claims.ExpiresAt != nil {
			if err := h.denylist.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("denylist token failed")
			}
		}
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, subject string) {
	token, _, err := h.tokens.Issue(subject)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("issue token failed")
		respond.Error(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: tokenType})
}
