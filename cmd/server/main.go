package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campushq/onboard/internal/auth"
	"github.com/campushq/onboard/internal/config"
	"github.com/campushq/onboard/internal/db"
	"github.com/campushq/onboard/internal/middleware"
	"github.com/campushq/onboard/internal/notify"
	"github.com/campushq/onboard/internal/provision"
	"github.com/campushq/onboard/internal/repository"
	"github.com/campushq/onboard/internal/upload"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load("./")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	if err := db.RunMigrations(cfg.Database, cfg.MigrationsPath); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	jobRepo := repository.NewUploadJobRepository(conn.Pool)
	outcomeRepo := repository.NewRowOutcomeRepository(conn.Pool)
	accountRepo := repository.NewAccountRepository(conn.Pool)
	studentRepo := repository.NewStudentRepository(conn.Pool)
	trainerRepo := repository.NewTrainerRepository(conn.Pool)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.AMQP.URL != "" {
		publisher, err := notify.NewAMQPPublisher(cfg.AMQP)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to message broker")
		}
		defer publisher.Close()
		notifier = publisher
	}

	provisioner := provision.NewService(conn, accountRepo, studentRepo, trainerRepo, notifier, logger)
	dupes := upload.NewDuplicateChecker(accountRepo, studentRepo, trainerRepo)
	uploadService := upload.NewService(jobRepo, outcomeRepo, dupes, provisioner, logger)

	mux := http.NewServeMux()
	upload.NewHTTPHandler(uploadService).Register(mux)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := corsHandler.Handler(
		middleware.Logging(logger)(
			auth.Middleware([]byte(cfg.Auth.JWTSecret))(mux),
		),
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("starting onboarding server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}
