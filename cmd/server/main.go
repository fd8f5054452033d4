package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/taskboard/realtime/internal/auth"
	"github.com/taskboard/realtime/internal/config"
	"github.com/taskboard/realtime/internal/logging"
	"github.com/taskboard/realtime/internal/realtime"
)

func main() {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.FromEnv()

	logger, err := logging.New(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		logger, _ = logging.New("info", cfg.LogPretty)
		logger.Warn().Err(err).Msg("falling back to info log level")
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	directory := auth.NewStaticDirectory()
	if cfg.UsersFile != "" {
		users, err := auth.LoadUsersFile(cfg.UsersFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load users file")
		}
		directory = auth.NewStaticDirectory(users...)
		logger.Info().Int("users", len(users)).Str("file", cfg.UsersFile).Msg("loaded user directory")
	}
	verifier := auth.NewVerifier([]byte(cfg.JWTSecret), directory)

	hub := realtime.NewHub(logger)
	go hub.Run()
	logger.Info().Msg("hub started")

	mux := realtime.SetupRoutes(hub, verifier, cfg, logger)
	server := realtime.CreateServer(cfg.Port, mux)

	go func() {
		logger.Info().Str("addr", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")

	if err := realtime.ShutdownServer(server, cfg.ShutdownTimeout, logger); err != nil {
		logger.Error().Err(err).Msg("http shutdown incomplete")
	}
	if err := hub.Shutdown(cfg.ShutdownTimeout); err != nil {
		logger.Error().Err(err).Msg("hub shutdown incomplete")
	}
}
