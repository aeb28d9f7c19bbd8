package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/lumenai/lumen/pkg/ai"
	"github.com/lumenai/lumen/pkg/api"
	"github.com/lumenai/lumen/pkg/auth"
	"github.com/lumenai/lumen/pkg/chat"
	"github.com/lumenai/lumen/pkg/config"
	"github.com/lumenai/lumen/pkg/speech"
	"github.com/lumenai/lumen/pkg/storage"
)

func main() {
	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Level:           log.DebugLevel,
		TimeFormat:      time.Kitchen,
	})

	envs, err := config.LoadConfig(true)
	if err != nil {
		panic(errors.Wrap(err, "Unable to load config"))
	}

	store, err := newStorage(envs, logger)
	if err != nil {
		logger.Error("Unable to create or initialize storage", "error", err)
		panic(errors.Wrap(err, "Unable to create or initialize storage"))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Error closing storage", "error", err)
		}
	}()
	logger.Info("Storage initialized", "backend", envs.StorageBackend)

	aiService := ai.NewOpenAIService(logger, envs.CompletionsAPIKey, envs.CompletionsAPIURL)
	chatService := chat.NewService(logger, store, aiService, envs.CompletionsModel)
	sessions := auth.NewSessions(envs.SessionSecret, envs.SessionTTL)
	synthesizer := speech.NewSynthesizer(logger, envs.TTSEndpoint, envs.CompletionsAPIKey, envs.TTSModel, envs.TTSVoice)

	server := api.NewServer(logger, store, chatService, sessions, synthesizer)

	httpServer := &http.Server{
		Addr:    ":" + envs.Port,
		Handler: server.Router(envs.AllowedOrigins),
	}

	go func() {
		logger.Info("HTTP server listening", "port", envs.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", "error", err)
	}
}

func newStorage(envs *config.Config, logger *log.Logger) (storage.Storage, error) {
	if envs.StorageBackend == "memory" {
		return storage.NewMemStorage(), nil
	}

	if dir := filepath.Dir(envs.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return storage.NewSQLiteStorage(envs.DBPath, logger)
}
