package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"headergen/internal/history"
	"headergen/internal/imagegen"
	"headergen/internal/infra"
	"headergen/internal/providers/jimeng"
)

// The sweeper re-polls generation tasks whose originating request timed out
// or died before the remote task finished, so history ends up with the final
// image URL instead of a dangling pending row.
const (
	sweepInterval = 30 * time.Second
	sweepBatch    = 20
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("worker: DATABASE_URL is required")
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	store := history.NewStore(infra.NewSQLRunner(pool, logger))
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to prepare history schema")
	}

	client, err := jimeng.NewClient(jimeng.Options{
		Credentials: jimeng.Credentials{
			AccessKey: cfg.VolcAccessKey,
			SecretKey: cfg.VolcSecretKey,
		},
		BaseURL:      cfg.JimengBaseURL,
		Logger:       &logger,
		PollInterval: cfg.PollInterval,
		MaxWait:      cfg.PollMaxWait,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to build jimeng client")
	}
	if !client.HasCredentials() {
		logger.Fatal().Msg("worker: VOLC_ACCESSKEY and VOLC_SECRETKEY are required")
	}

	service, err := imagegen.NewService(imagegen.Options{
		Client:  client,
		History: store,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to build image service")
	}

	logger.Info().Msg("worker: started")
	for {
		if n, err := service.ResolveStale(ctx, sweepBatch); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error().Err(err).Msg("worker: sweep failed")
		} else if n > 0 {
			logger.Info().Int("resolved", n).Msg("worker: resolved stale tasks")
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("worker: stopped")
			return
		case <-time.After(sweepInterval):
		}
	}
	logger.Info().Msg("worker: stopped")
}
