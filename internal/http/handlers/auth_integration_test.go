package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/hongminglow/valuation-be/internal/auth"
	"github.com/hongminglow/valuation-be/internal/middleware"
	"github.com/hongminglow/valuation-be/internal/models/dto"
	"github.com/hongminglow/valuation-be/internal/prediction"
	"github.com/hongminglow/valuation-be/internal/storage/postgres"
)

// TestAuthIntegration walks signup, login, key issuance and a keyed prediction
// against a live database.
func TestAuthIntegration(t *testing.T) {
	if os.Getenv("RUN_AUTH_INTEGRATION") != "true" {
		t.Skip("set RUN_AUTH_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	secret := mustGetEnv(t, "JWT_SECRET")
	issuer := mustGetEnv(t, "JWT_ISSUER")
	ttl := mustGetTTL(t)
	tokens := auth.NewTokenManager(secret, issuer, ttl)

	r := chi.NewRouter()
	authHandler := NewAuthHandler(store, auth.NewPasswordHasher(), tokens, nil)
	authHandler.Register(r, nil)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(tokens, auth.NoopDenylist{}))
		r.Use(middleware.RequireUser(store))
		r.Get("/auth/me", authHandler.Me)
		NewAPIKeyHandler(store).Register(r)
	})
	predict := NewPredictHandler(prediction.NewDummy("integration", nil))
	r.With(middleware.RequireAPIKey(store)).Post("/predict", predict.Predict)

	ts := httptest.NewServer(r)
	defer ts.Close()

	email := fmt.Sprintf("apitest_%d@example.com", time.Now().UnixNano())
	password := fmt.Sprintf("Pass!%d", time.Now().UnixNano())

	var signup dto.TokenResponse
	post(t, ts.URL+"/auth/signup", "", map[string]string{
		"email":    email,
		"name":     "API Test",
		"password": password,
	}, http.StatusOK, &signup)
	if signup.TokenType != "bearer" {
		t.Fatalf("unexpected token type %q", signup.TokenType)
	}

	var login dto.TokenResponse
	post(t, ts.URL+"/auth/login", "", map[string]string{"email": email, "password": password}, http.StatusOK, &login)
	if strings.TrimSpace(login.AccessToken) == "" {
		t.Fatal("login response missing token")
	}

	var created dto.CreateAPIKeyResponse
	post(t, ts.URL+"/api-keys", login.AccessToken, map[string]string{"name": "integration"}, http.StatusOK, &created)

	var price prediction.Result
	post(t, ts.URL+"/predict", created.Key, map[string]any{"features_by_name": map[string]any{}}, http.StatusOK, &price)
	if price.Source != prediction.DummySource {
		t.Fatalf("unexpected prediction source %q", price.Source)
	}

	t.Logf("created %s with api key %d and served a keyed prediction", email, created.ID)
}

func post(t *testing.T, url, token string, payload any, wantStatus int, out any) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s response: %v", url, err)
	}
}

func mustGetEnv(t *testing.T, key string) string {
	t.Helper()
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		t.Fatalf("%s is required", key)
	}
	return val
}

func mustGetTTL(t *testing.T) time.Duration {
	t.Helper()
	minutesStr := mustGetEnv(t, "JWT_TTL_MINUTES")
	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes <= 0 {
		t.Fatalf("invalid JWT_TTL_MINUTES value: %q", minutesStr)
	}
	return time.Duration(minutes) * time.Minute
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
