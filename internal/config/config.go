package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const minSecretLength = 16

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port            string
	DatabaseURL     string
	JWTSecret       string
	JWTIssuer       string
	JWTTTL          time.Duration
	CORSOrigins     []string
	TestMode        bool
	ModelPath       string
	ModelSchemaPath string
	LogLevel        string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ReportCompress  bool
	AuthRateLimit   int
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:            fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:       fallback(os.Getenv("JWT_ISSUER"), "valuation-backend"),
		CORSOrigins:     parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		TestMode:        strings.TrimSpace(os.Getenv("TEST_MODE")) == "1",
		ModelPath:       fallback(os.Getenv("MODEL_PATH"), "app/xgboost_best.model"),
		ModelSchemaPath: fallback(os.Getenv("MODEL_SCHEMA_PATH"), "app/feature_schema.json"),
		LogLevel:        fallback(os.Getenv("LOG_LEVEL"), "info"),
		RedisAddr:       strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		ReportCompress:  fallback(os.Getenv("REPORT_COMPRESS"), "true") != "false",
	}

	minutes := fallback(os.Getenv("JWT_TTL_MINUTES"), "30")
	if ttlMinutes, err := strconv.Atoi(minutes); err == nil && ttlMinutes > 0 {
		cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 30 * time.Minute
	}

	if db, err := strconv.Atoi(fallback(os.Getenv("REDIS_DB"), "0")); err == nil && db >= 0 {
		cfg.RedisDB = db
	}

	cfg.AuthRateLimit = 20
	if limit, err := strconv.Atoi(fallback(os.Getenv("AUTH_RATE_LIMIT_PER_MINUTE"), "20")); err == nil && limit > 0 {
		cfg.AuthRateLimit = limit
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < minSecretLength {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength)
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// RevocationEnabled reports whether logout should denylist tokens in Redis.
// Auth rate limiting shares the same switch.
func (c Config) RevocationEnabled() bool {
	return c.RedisAddr != ""
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
