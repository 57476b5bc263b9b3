package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hongminglow/valuation-be/internal/auth"
	"github.com/hongminglow/valuation-be/internal/config"
	"github.com/hongminglow/valuation-be/internal/features"
	"github.com/hongminglow/valuation-be/internal/logging"
	"github.com/hongminglow/valuation-be/internal/metrics"
	"github.com/hongminglow/valuation-be/internal/prediction"
	"github.com/hongminglow/valuation-be/internal/ratelimit"
	"github.com/hongminglow/valuation-be/internal/report"
	"github.com/hongminglow/valuation-be/internal/server"
	postgres "github.com/hongminglow/valuation-be/internal/storage/postgres"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(cfg)
	log.Logger = logger
	if envErr != nil {
		logger.Debug().Msg("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("init database")
	}
	defer store.Close()

	metrics.RegisterPgxPoolMetrics(prometheus.DefaultRegisterer, store.Pool())
	recorder := metrics.NewPrediction(prometheus.DefaultRegisterer)

	estimator, err := loadEstimator(cfg, recorder, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("model_path", cfg.ModelPath).Msg("load model")
	}

	deps := server.Deps{
		Store:     store,
		Hasher:    auth.NewPasswordHasher(),
		Tokens:    auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		Estimator: estimator,
		Renderer:  report.NewRenderer(report.WithCompression(cfg.ReportCompress)),
		Logger:    logger,
	}

	if cfg.RevocationEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("connect to redis")
		}

		deps.Denylist = auth.NewRedisDenylist(rdb, "")
		deps.Limiter = ratelimit.NewRedisLimiter(rdb, cfg.AuthRateLimit, time.Minute, "")
		logger.Info().Str("addr", cfg.RedisAddr).Int("auth_rate_limit", cfg.AuthRateLimit).Msg("token revocation and auth rate limiting enabled")
	}

	srv := server.New(cfg, deps)

	go func() {
		logger.Info().
			Str("addr", cfg.HTTPAddress()).
			Bool("test_mode", cfg.TestMode).
			Msg("valuation backend listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}

// loadEstimator returns the canned estimator in test mode. Otherwise the model
// must load; a missing schema sidecar only degrades /columns and encoding.
func loadEstimator(cfg config.Config, recorder prediction.Recorder, logger zerolog.Logger) (prediction.Estimator, error) {
	if cfg.TestMode {
		logger.Warn().Msg("TEST_MODE=1: serving dummy predictions")
		return prediction.NewDummy(cfg.ModelPath, recorder), nil
	}

	schema, err := features.LoadSchema(cfg.ModelSchemaPath)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		logger.Warn().Str("schema_path", cfg.ModelSchemaPath).Msg("feature schema not found; columns unknown")
	}

	model, err := prediction.LoadXGBoost(cfg.ModelPath, schema)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("model_path", cfg.ModelPath).Int("columns", len(schema)).Msg("model loaded")
	return prediction.NewEngine(model, schema, cfg.ModelPath, recorder), nil
}
