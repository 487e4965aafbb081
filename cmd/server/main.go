package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kantman01/ai-stock-management-sub000/internal/config"
	"github.com/kantman01/ai-stock-management-sub000/internal/infra"
	"github.com/kantman01/ai-stock-management-sub000/internal/repository"
	"github.com/kantman01/ai-stock-management-sub000/internal/router"
	"github.com/kantman01/ai-stock-management-sub000/internal/service"
	"github.com/kantman01/ai-stock-management-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One breaker guards every recommender call: workers, sweep, and API.
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	recommender := infra.NewRecommenderClient(cfg.RecommenderURL, cb)
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	// Worker handlers are wired here (composition root) so the pool has full
	// access to all infrastructure dependencies.
	productRepo := repository.NewProductRepository(db)
	supplierOrderRepo := repository.NewSupplierOrderRepository(db)
	actionRepo := repository.NewAIActionRepository(db)
	replenishmentSvc := service.NewReplenishmentService(supplierOrderRepo, productRepo, actionRepo, recommender, dispatcher)

	handlers := map[string]worker.JobHandler{
		worker.QueueNotifications: worker.NewNotificationWorker(mailer, supplierOrderRepo, rdb, cfg.PDFStoragePath),
		worker.QueueReplenishment: worker.NewReplenishmentWorker(replenishmentSvc),
	}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)

	// Periodic safety-net replenishment pass
	worker.StartSweepCron(ctx, worker.SweepCronConfig{
		Service:  replenishmentSvc,
		CB:       cb,
		Interval: time.Duration(cfg.SweepIntervalMinutes) * time.Minute,
	})

	r := router.New(cfg, db, rdb, cb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("stock management backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
