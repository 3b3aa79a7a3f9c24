package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"greeter/app/config"
	"greeter/app/usecase"
	"greeter/internal/domain/entity"
	"greeter/internal/domain/repository"
	"greeter/internal/infrastructure/llm"
	"greeter/internal/infrastructure/metrics"
	"greeter/internal/infrastructure/transport"
)

func main() {
	// load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.Level,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// LLM client. Missing or broken credentials keep the server up; the
	// endpoint then answers "not configured".
	var generator repository.TextGenerator
	var geminiClient *genai.Client
	switch client, err := llm.NewGeminiClient(ctx, cfg.LLM.APIKey); {
	case errors.Is(err, llm.ErrMissingAPIKey):
		logger.Warn("GEMINI_API_KEY is not set; message generation is disabled")
	case err != nil:
		logger.Error("failed to initialize gemini client", "err", err)
	default:
		geminiClient = client
		generator = llm.NewGeminiGenerator(client, cfg.LLM.Model, cfg.LLM.Timeout, logger)
		logger.Info("gemini client initialized", "model", cfg.LLM.Model)
	}

	// Usecases / services
	messageSvc := usecase.NewMessageService(entity.DefaultPromptStore, generator, nil, logger)

	// Transport (HTTP handlers)
	handler := transport.NewMessageHandler(messageSvc, logger, prometheus.DefaultRegisterer)

	// Router and server
	r := mux.NewRouter()
	handler.RegisterRoutes(r, prometheus.DefaultGatherer)

	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           transport.NewHTTPHandler(r, cfg.CORS.AllowedOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		metricsSrv = metrics.NewMetricsServer(cfg.Metrics.Addr)
		go func() {
			logger.Info("starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metrics.StartMetricsServer(metricsSrv); err != nil {
				logger.Error("metrics server failed", "err", err)
			}
		}()
	}

	// Start HTTP server
	go func() {
		logger.Info("starting HTTP server", "addr", addr, "allowed_origins", cfg.CORS.AllowedOrigins)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "err", err)
			cancel()
		}
	}()

	// OS signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	// Shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}

	if metricsSrv != nil {
		if err := metrics.ShutdownMetricsServer(shutdownCtx, metricsSrv); err != nil {
			logger.Error("metrics server shutdown error", "err", err)
		}
	}

	if geminiClient != nil {
		logger.Info("closing gemini client")
		if err := geminiClient.Close(); err != nil {
			logger.Error("gemini client close error", "err", err)
		}
	}

	logger.Info("service stopped")
}
