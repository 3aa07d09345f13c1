package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/priyanshsolanki/medilink-assignment3/internal/config"
	"github.com/priyanshsolanki/medilink-assignment3/internal/db"
	"github.com/priyanshsolanki/medilink-assignment3/internal/notification"
	redisclient "github.com/priyanshsolanki/medilink-assignment3/internal/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("config load error")
	}

	log := newLogger(cfg.Env).With().Str("service", "notify-worker").Logger()
	log.Info().Str("env", cfg.Env).Dur("interval", cfg.PollInterval).Msg("notify-worker starting up")

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

	repo := notification.NewPgRepository(pgPool)
	senders := notification.SenderRegistry{
		notification.MethodEmail: notification.NewLogEmailSender(log),
		notification.MethodSMS:   notification.NewLogSMSSender(log),
	}

	policy := notification.SingleAttempt()
	if cfg.MaxAttempts > 1 {
		policy = notification.Policy{
			MaxAttempts: cfg.MaxAttempts,
			Backoff: func(attempt int) time.Duration {
				return time.Duration(attempt) * time.Minute
			},
		}
	}

	// Tick lock lets multiple workers run without double delivery.
	locker := redisclient.NewLocker(rdb, cfg.LockTTL)

	dispatcher := notification.NewDispatcher(repo, senders, policy, cfg.PollInterval, locker, log)
	dispatcher.Start()

	<-rootCtx.Done()

	log.Info().Msg("shutdown signal received, stopping notify-worker")
	dispatcher.Stop()
}

func newLogger(env string) zerolog.Logger {
	if env == "dev" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
