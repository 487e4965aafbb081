package worker

// sweep_cron.go
// Background goroutine that periodically runs the replenishment pipeline over
// the current low-stock snapshot. It is the safety net for event-driven runs
// lost to a downed generator or dropped queue jobs. Uses the circuit breaker
// state to avoid hammering a downed sidecar.

import (
	"context"
	"time"

	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/infra"
	"github.com/kantman01/ai-stock-management-sub000/internal/service"

	"github.com/rs/zerolog/log"
)

// SweepCronConfig holds all dependencies for the sweep goroutine.
type SweepCronConfig struct {
	Service  service.ReplenishmentService
	CB       *infra.CircuitBreaker
	Interval time.Duration
}

// StartSweepCron launches a goroutine that ticks every cfg.Interval and runs
// a generator-backed replenishment pass. It respects the context for graceful
// shutdown.
func StartSweepCron(ctx context.Context, cfg SweepCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("sweep_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sweep_cron: shutting down")
				return
			case <-ticker.C:
				runSweep(ctx, cfg)
			}
		}
	}()
}

func runSweep(ctx context.Context, cfg SweepCronConfig) {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("sweep_cron: circuit breaker is open, skipping tick")
		return
	}

	resp, err := cfg.Service.RunFromGenerator(ctx, "sweep", dto.RunContext{})
	if err != nil {
		log.Warn().Err(err).Msg("sweep_cron: run failed")
		return
	}
	if len(resp.Orders) > 0 || len(resp.Errors) > 0 {
		log.Info().
			Int("orders_created", len(resp.Orders)).
			Int("group_errors", len(resp.Errors)).
			Msg("sweep_cron: run finished")
	}
}
