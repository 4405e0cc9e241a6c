package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"headergen/internal/crop"
	"headergen/internal/history"
	"headergen/internal/http/handlers"
	"headergen/internal/http/httpapi"
	"headergen/internal/imagegen"
	"headergen/internal/infra"
	"headergen/internal/providers/jimeng"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// The history store only comes up when DATABASE_URL is set; generation
	// works without it.
	var store *history.Store
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()

		store = history.NewStore(infra.NewSQLRunner(dbpool, logger))
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare history schema")
		}
	} else {
		logger.Info().Msg("DATABASE_URL not set, task history disabled")
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
		logger.Fatal().Err(err).Msg("failed to build jimeng client")
	}
	if !client.HasCredentials() {
		logger.Warn().Msg("VOLC_ACCESSKEY/VOLC_SECRETKEY not set, generation requests will fail")
	}

	cropper := crop.NewCropper(crop.Options{
		Logger:       &logger,
		FetchTimeout: cfg.FetchTimeout,
	})

	service, err := imagegen.NewService(imagegen.Options{
		Client:  client,
		Cropper: cropper,
		History: store,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build image service")
	}

	app := handlers.NewApp(service, store, &logger)
	router := httpapi.NewRouter(app, logger, cfg.CORSAllowedOrigins)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
