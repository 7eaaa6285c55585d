package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"videoprompt/internal/adapter/repo"
	"videoprompt/internal/domain"
	"videoprompt/internal/http/handlers"
	httpapi "videoprompt/internal/http/httpapi"
	"videoprompt/internal/infra"
	"videoprompt/internal/media"
	"videoprompt/internal/providers/genai"
	"videoprompt/internal/session"
	"videoprompt/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY is not set; generation requests will fail")
	}

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("failed to prepare storage")
	}
	registry := storage.NewRegistry(store, logger)
	prober := media.NewFFprobe(cfg.FFprobeTimeout)
	validator := media.NewValidator(store, registry, prober, cfg.MaxVideoSeconds, logger)
	sampler := media.NewSampler(registry, prober, media.NewFFmpegGrabber(cfg.FFmpegPath), media.SamplerOptions{
		Quality: cfg.JPEGQuality,
		Strict:  cfg.SamplerStrict,
		Logger:  logger,
	})
	requester := genai.NewClient(genai.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
		Logger:  &logger,
	})

	ctx := context.Background()
	var history domain.GenerationRepository
	dbpool, err := infra.NewDBPool(ctx, cfg)
	switch {
	case errors.Is(err, infra.ErrNoDatabase):
		logger.Info().Msg("DATABASE_URL not set; generation history disabled")
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to connect database")
	default:
		defer dbpool.Close()
		generations := repo.NewGenerationRepository(infra.NewSQLRunner(dbpool, logger))
		if err := generations.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare generations table")
		}
		history = generations
	}

	opts := session.Options{FrameCount: cfg.FrameCount, Logger: logger}
	if history != nil {
		opts.History = history
	}
	controller := session.NewController(validator, sampler, requester, registry, store, opts)
	controller.Observe(func(from, to session.Kind) {
		logger.Debug().Str("from", string(from)).Str("to", string(to)).Msg("session transition")
	})

	app := &handlers.App{
		Session:         controller,
		Sources:         registry,
		History:         history,
		Model:           requester.Model(),
		MaxUploadBytes:  cfg.MaxUploadBytes,
		GenerateTimeout: cfg.GenerateTimeout,
		Logger:          logger,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("model", requester.Model()).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGraceDuration)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	controller.Close(shutdownCtx)
	logger.Info().Msg("server stopped")
}
