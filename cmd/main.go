package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realtime-translation-relay/internal/app"
	"realtime-translation-relay/internal/auth"
	"realtime-translation-relay/internal/config"
	"realtime-translation-relay/internal/events"
	relayhttp "realtime-translation-relay/internal/http"
	"realtime-translation-relay/internal/observability"
	"realtime-translation-relay/internal/service/translator"
	"realtime-translation-relay/internal/store"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg := config.Load()
	application := app.New(cfg)
	if err := application.Start(); err != nil {
		application.Logger.Fatal().Err(err).Msg("Startup failed")
	}

	if cfg.OpenAI.APIKey == "" {
		application.Logger.Fatal().Msg("OPENAI_API_KEY is required")
	}

	publisher := events.New(&events.Config{
		Enabled:   cfg.Kafka.Enabled,
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.Topic,
		Principal: cfg.Kafka.Principal,
	})
	defer publisher.Close()

	router := relayhttp.NewRouter(relayhttp.Deps{
		Cfg:        cfg,
		Verifier:   auth.NewVerifier(cfg.Supabase.JWTSecret),
		Translator: translator.New(cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel),
		Store:      store.New(cfg.Supabase.URL, cfg.Supabase.AnonKey),
		Publisher:  publisher,
	})

	metricsServer := observability.NewServer(":" + cfg.MetricsPort)
	metricsServer.Start()

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		application.Logger.Info().Str("port", cfg.HTTPPort).Msg("Translation relay listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			application.Logger.Fatal().Err(err).Msg("HTTP serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	application.Logger.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		application.Logger.Error().Err(err).Msg("HTTP shutdown failed")
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		application.Logger.Error().Err(err).Msg("Metrics shutdown failed")
	}
	application.Shutdown()
}
