package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/salon-scheduler/internal/app"
	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/payment"
	infraPayment "github.com/BruksfildServices01/salon-scheduler/internal/infra/payment"
	"github.com/BruksfildServices01/salon-scheduler/internal/infra/redislock"
	"github.com/BruksfildServices01/salon-scheduler/internal/logging"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/notify"
	"github.com/BruksfildServices01/salon-scheduler/internal/routes"
	"github.com/BruksfildServices01/salon-scheduler/internal/tasks"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

func main() {

	cfg := config.Load()

	logger, closer, err := logging.New(cfg.Log, cfg.AppName, cfg.Env)
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

	metrics.Register()
	timezone.SetDefault(cfg.Timezone)

	// ======================================================
	// 🔧 INFRA
	// ======================================================
	stores, err := app.Open(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer stores.Close()

	verifier, err := paymentVerifier(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up payment verification")
	}

	notifier := notify.NewDispatcher(notify.LogSender{Log: log}, log, 256)
	defer notifier.Close()

	auditDispatcher := audit.NewDispatcher(stores.Audit, log)
	defer auditDispatcher.Close()

	infra := routes.Infra{
		Appointments: stores.Appointments,
		Requests:     stores.Requests,
		Queue:        stores.Queue,
		AuditStore:   stores.Audit,
		Ledger:       stores.Ledger,
		Sales:        stores.Sales,
		Payments:     verifier,
		Notifier:     notifier,
		Audit:        auditDispatcher,
		Log:          log,
	}

	// Redis is optional: without it bookings rely on the database row lock
	// and no reminders are sent.
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable")
		}
		infra.Locker = redislock.New(rdb, cfg.Redis.LockTTL, log)

		client := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		infra.Reminders = tasks.NewScheduler(client, cfg.Scheduling.ReminderLead, log)
	} else {
		log.Warn().Msg("REDIS_ADDR not set: distributed booking lock and reminders disabled")
	}

	// ======================================================
	// 🌐 HTTP
	// ======================================================
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, infra, cfg)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("store", cfg.StoreDriver).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(srv, log)
}

func paymentVerifier(cfg *config.Config) (payment.Verifier, error) {
	if cfg.Payment.Provider == "mercadopago" {
		return infraPayment.NewMercadoPagoVerifier(cfg.Payment.MercadoPagoToken)
	}
	return infraPayment.NewHMACVerifier(cfg.Payment.Secret), nil
}

func waitForShutdown(srv *http.Server, log zerolog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
