package worker

// replenishment_worker.go
// Processes replenishment jobs enqueued when an order enters approved. Each
// job triggers one generator-backed pipeline run. A run that fails because
// the generator is down is logged and dropped — the periodic sweep retries
// the same analysis later, so no per-job retry is attempted here.

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kantman01/ai-stock-management-sub000/internal/dto"
	"github.com/kantman01/ai-stock-management-sub000/internal/service"

	"github.com/rs/zerolog/log"
)

type ReplenishmentWorker struct {
	svc service.ReplenishmentService
}

func NewReplenishmentWorker(svc service.ReplenishmentService) *ReplenishmentWorker {
	return &ReplenishmentWorker{svc: svc}
}

func (w *ReplenishmentWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReplenishmentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("replenishment_worker: invalid payload")
		return
	}

	resp, err := w.svc.RunFromGenerator(ctx, payload.Trigger, dto.RunContext{})
	if err != nil {
		if errors.Is(err, service.ErrRecommendationUnavailable) {
			log.Warn().Err(err).Str("order_id", payload.OrderID).
				Msg("replenishment_worker: generator unavailable, sweep will retry")
			return
		}
		log.Error().Err(err).Str("order_id", payload.OrderID).Msg("replenishment_worker: run failed")
		return
	}

	log.Info().
		Str("order_id", payload.OrderID).
		Int("orders_created", len(resp.Orders)).
		Int("group_errors", len(resp.Errors)).
		Msg("replenishment_worker: run finished")
}
