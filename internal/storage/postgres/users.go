package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hongminglow/valuation-be/internal/models"
	"github.com/hongminglow/valuation-be/internal/storage"
)

const uniqueViolation = "23505"

// CreateUser inserts a new user row. Emails already present yield
// storage.ErrAlreadyExists and nothing is written.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	var created models.User
	err := withTx(ctx, s.db, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, user.Email,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check existing user: %w", err)
		}
		if exists {
			return storage.ErrAlreadyExists
		}

		row := tx.QueryRow(ctx,
			`INSERT INTO users (email, name, password_hash, avatar)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, email, name, password_hash, avatar, created_at`,
			user.Email, user.Name, user.PasswordHash, user.Avatar,
		)
		u, err := scanUser(row)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return storage.ErrAlreadyExists
			}
			return fmt.Errorf("insert user: %w", err)
		}
		created = u
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return created, nil
}

// FindUserByEmail fetches a user by exact email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, email, name, password_hash, avatar, created_at
		 FROM users WHERE email = $1`, email,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, err
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.Avatar, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
