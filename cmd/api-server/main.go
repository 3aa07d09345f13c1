package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/priyanshsolanki/medilink-assignment3/internal/api"
	"github.com/priyanshsolanki/medilink-assignment3/internal/appointment"
	"github.com/priyanshsolanki/medilink-assignment3/internal/availability"
	"github.com/priyanshsolanki/medilink-assignment3/internal/calllink"
	"github.com/priyanshsolanki/medilink-assignment3/internal/config"
	"github.com/priyanshsolanki/medilink-assignment3/internal/db"
	"github.com/priyanshsolanki/medilink-assignment3/internal/message"
	"github.com/priyanshsolanki/medilink-assignment3/internal/notification"
	redisclient "github.com/priyanshsolanki/medilink-assignment3/internal/redis"
	"github.com/priyanshsolanki/medilink-assignment3/internal/user"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("config load error")
	}

	log := newLogger(cfg.Env).With().Str("service", "api-server").Logger()
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	schemaCtx, cancelSchema := context.WithTimeout(rootCtx, 10*time.Second)
	err = db.EnsureSchema(schemaCtx, pgPool)
	cancelSchema()
	if err != nil {
		log.Fatal().Err(err).Msg("schema apply error")
	}

	rdb, err := redisclient.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	userRepo := user.NewPgRepository(pgPool)
	availRepo := availability.NewPgRepository(pgPool)
	apptRepo := appointment.NewPgRepository(pgPool)
	notifRepo := notification.NewPgRepository(pgPool)
	msgRepo := message.NewPgRepository(pgPool)

	locker := redisclient.NewLocker(rdb, cfg.LockTTL)
	scheduler := notification.NewScheduler(notifRepo, log)
	links := calllink.NewIssuer(cfg.JWTSecret, cfg.CallLinkBaseURL, cfg.CallLinkGrace)

	availSvc := availability.NewService(availRepo, userRepo, cfg.SlotGranularity, cfg.ScheduleDays, log)
	apptSvc := appointment.NewService(apptRepo, userRepo, availSvc, scheduler, links, locker, cfg.ReminderLead, log)
	msgSvc := message.NewService(msgRepo, userRepo, scheduler, log)

	router := api.NewRouter(api.RouterConfig{
		Appointments: apptSvc,
		Availability: availSvc,
		Messages:     msgSvc,
		Users:        userRepo,
		PgPool:       pgPool,
		Redis:        rdb,
		JWTSecret:    cfg.JWTSecret,
		Env:          cfg.Env,
		Version:      version,
		Log:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("http server error")
	case <-rootCtx.Done():
	}

	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "dev" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
