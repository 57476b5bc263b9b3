package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/valuation-be/internal/models"
	"github.com/hongminglow/valuation-be/internal/storage"
)

const apiKeyColumns = `id, key_prefix, name, user_id, created_at, revoked_at`

// CreateAPIKey stores the digest of secret for userID.
func (s *Store) CreateAPIKey(ctx context.Context, secret, name string, userID int64) (models.APIKey, error) {
	hash := storage.HashSecret(secret)

	var created models.APIKey
	err := withTx(ctx, s.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`INSERT INTO api_keys (key_hash, key_prefix, name, user_id)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+apiKeyColumns,
			hash, storage.SecretPrefix(secret), name, userID,
		)
		k, err := scanAPIKey(row)
		if err != nil {
			return fmt.Errorf("insert api key: %w", err)
		}
		created = k
		return nil
	})
	if err != nil {
		return models.APIKey{}, err
	}
	created.KeyHash = hash
	return created, nil
}

// FindActiveAPIKey looks up a non-revoked key by its plaintext secret.
func (s *Store) FindActiveAPIKey(ctx context.Context, secret string) (models.APIKey, error) {
	hash := storage.HashSecret(secret)
	row := s.db.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys
		 WHERE key_hash = $1 AND revoked_at IS NULL`, hash,
	)
	k, err := scanAPIKey(row)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.APIKey{}, err
		}
		return models.APIKey{}, fmt.Errorf("find api key: %w", err)
	}
	k.KeyHash = hash
	return k, nil
}

// ListAPIKeys returns every key owned by userID, newest first.
func (s *Store) ListAPIKeys(ctx context.Context, userID int64) ([]models.APIKey, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	keys := []models.APIKey{}
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api keys: %w", err)
	}
	return keys, nil
}

// RevokeAPIKey soft-deletes a key owned by userID.
func (s *Store) RevokeAPIKey(ctx context.Context, id, userID int64) (bool, error) {
	var revoked bool
	err := withTx(ctx, s.db, func(tx pgx.Tx) error {
		var revokedAt *time.Time
		err := tx.QueryRow(ctx,
			`SELECT revoked_at FROM api_keys WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID,
		).Scan(&revokedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("lock api key: %w", err)
		}
		if revokedAt != nil {
			return nil
		}

		tag, err := tx.Exec(ctx,
			`UPDATE api_keys SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id,
		)
		if err != nil {
			return fmt.Errorf("revoke api key: %w", err)
		}
		revoked = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return revoked, nil
}

func scanAPIKey(row pgx.Row) (models.APIKey, error) {
	var k models.APIKey
	if err := row.Scan(&k.ID, &k.KeyPrefix, &k.Name, &k.UserID, &k.CreatedAt, &k.RevokedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.APIKey{}, storage.ErrNotFound
		}
		return models.APIKey{}, err
	}
	return k, nil
}
