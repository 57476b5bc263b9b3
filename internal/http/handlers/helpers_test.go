package handlers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/valuation-be/internal/auth"
	"github.com/hongminglow/valuation-be/internal/models"
	"github.com/hongminglow/valuation-be/internal/storage"
)

var testHasherParams = auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type memStore struct {
	mu      sync.Mutex
	users   []models.User
	keys    []models.APIKey
	secrets map[string]int64
	now     time.Time
	err     error
	pingErr error
}

func newMemStore() *memStore {
	return &memStore{
		secrets: map[string]int64{},
		now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.User{}, s.err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user.ID = int64(len(s.users) + 1)
	user.CreatedAt = s.now
	s.users = append(s.users, user)
	return user, nil
}

func (s *memStore) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.User{}, s.err
	}
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *memStore) CreateAPIKey(_ context.Context, secret, name string, userID int64) (models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.APIKey{}, s.err
	}
	sum := sha256.Sum256([]byte(secret))
	owner := userID
	key := models.APIKey{
		ID:        int64(len(s.keys) + 1),
		KeyHash:   hex.EncodeToString(sum[:]),
		KeyPrefix: secret[:8],
		Name:      name,
		UserID:    &owner,
		CreatedAt: s.now,
	}
	s.keys = append(s.keys, key)
	s.secrets[secret] = key.ID
	return key, nil
}

func (s *memStore) FindActiveAPIKey(_ context.Context, secret string) (models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.secrets[secret]
	if !ok {
		return models.APIKey{}, storage.ErrNotFound
	}
	key := s.keys[id-1]
	if !key.Active() {
		return models.APIKey{}, storage.ErrNotFound
	}
	return key, nil
}

func (s *memStore) ListAPIKeys(_ context.Context, userID int64) ([]models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []models.APIKey{}
	for _, k := range s.keys {
		if k.UserID != nil && *k.UserID == userID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *memStore) RevokeAPIKey(_ context.Context, id, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if id < 1 || id > int64(len(s.keys)) {
		return false, storage.ErrNotFound
	}
	key := &s.keys[id-1]
	if key.UserID == nil || *key.UserID != userID {
		return false, storage.ErrNotFound
	}
	if key.RevokedAt != nil {
		return false, nil
	}
	at := s.now
	key.RevokedAt = &at
	return true, nil
}

func (s *memStore) Ping(context.Context) error { return s.pingErr }

var _ storage.CredentialStore = (*memStore)(nil)

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemDenylist() *memDenylist {
	return &memDenylist{revoked: map[string]time.Time{}}
}

func (d *memDenylist) Revoke(_ context.Context, id string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[id] = until
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[id]
	return ok, nil
}

var errBoom = errors.New("boom")

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, rec)["detail"]
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
