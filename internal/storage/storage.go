package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/valuation-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures user persistence operations needed by handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
}

// APIKeyStore captures API key persistence. Secrets are passed in plaintext and
// hashed by the implementation.
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, secret, name string, userID int64) (models.APIKey, error)
	FindActiveAPIKey(ctx context.Context, secret string) (models.APIKey, error)
	ListAPIKeys(ctx context.Context, userID int64) ([]models.APIKey, error)
	// RevokeAPIKey reports whether this call performed the revocation. Revoking
	// an already revoked key succeeds and returns false.
	RevokeAPIKey(ctx context.Context, id, userID int64) (bool, error)
}

// CredentialStore is the full persistence surface of the service.
type CredentialStore interface {
	UserStore
	APIKeyStore
	Ping(ctx context.Context) error
}
