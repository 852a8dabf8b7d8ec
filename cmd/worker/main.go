package main

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/BruksfildServices01/salon-scheduler/internal/app"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	"github.com/BruksfildServices01/salon-scheduler/internal/logging"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
	"github.com/BruksfildServices01/salon-scheduler/internal/tasks"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

func main() {

	cfg := config.Load()

	logger, closer, err := logging.New(cfg.Log, cfg.AppName+"-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	if closer != nil {
		defer closer.Close()
	}
	log := *logger

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("REDIS_ADDR is required by the worker")
	}
	if cfg.StoreDriver != "postgres" {
		log.Fatal().Str("store", cfg.StoreDriver).Msg("the worker needs the shared postgres store")
	}
	timezone.SetDefault(cfg.Timezone)

	stores, err := app.Open(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer stores.Close()

	notifier := notify.NewDispatcher(notify.LogSender{Log: log}, log, 256)
	defer notifier.Close()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).Msg("task failed")
			}),
		},
	)

	mux := asynq.NewServeMux()
	tasks.Register(mux, stores.Appointments, notifier, log)

	log.Info().Int("concurrency", cfg.Worker.Concurrency).Msg("worker running")
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}
