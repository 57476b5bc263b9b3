package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hongminglow/valuation-be/internal/auth"
	"github.com/hongminglow/valuation-be/internal/http/respond"
	"github.com/hongminglow/valuation-be/internal/models"
	"github.com/hongminglow/valuation-be/internal/storage"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	userKey   contextKey = "user"
	apiKeyKey contextKey = "api_key"
)

// BearerToken extracts the credential from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireSession validates the bearer JWT and rejects denylisted tokens.
func RequireSession(tokens *auth.TokenManager, denylist auth.Denylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				respond.Error(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "Invalid authentication credentials")
				return
			}

			revoked, err := denylist.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("session denylist lookup failed")
				respond.Error(w, http.StatusInternalServerError, "Failed to verify session")
				return
			}
			if revoked {
				respond.Error(w, http.StatusUnauthorized, "Invalid authentication credentials")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser loads the account named by the session subject. It must run
// after RequireSession.
func RequireUser(users storage.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			user, err := users.FindUserByEmail(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					respond.Error(w, http.StatusUnauthorized, "User not found")
					return
				}
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("session user lookup failed")
				respond.Error(w, http.StatusInternalServerError, "Failed to load user")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAPIKey accepts an active key from X-API-Key or the bearer header.
func RequireAPIKey(keys storage.APIKeyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := strings.TrimSpace(r.Header.Get("X-API-Key"))
			if secret == "" {
				secret = BearerToken(r)
			}
			if secret == "" {
				respond.Error(w, http.StatusUnauthorized, "API key required")
				return
			}

			key, err := keys.FindActiveAPIKey(r.Context(), secret)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					respond.Error(w, http.StatusUnauthorized, "Invalid or revoked API key")
					return
				}
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("api key lookup failed")
				respond.Error(w, http.StatusInternalServerError, "Failed to verify API key")
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom returns the session claims set by RequireSession.
func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(auth.Claims)
	return claims, ok
}

// WithClaims stores claims the way RequireSession does.
func WithClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// UserFrom returns the account set by RequireUser.
func UserFrom(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

// WithUser stores user the way RequireUser does.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// APIKeyFrom returns the key set by RequireAPIKey.
func APIKeyFrom(ctx context.Context) (models.APIKey, bool) {
	key, ok := ctx.Value(apiKeyKey).(models.APIKey)
	return key, ok
}
