package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueNotifications = "jobs:notifications"
	QueueReplenishment = "jobs:replenishment"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JobHandler processes one dequeued job payload.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage)
}

// Dispatcher enqueues async jobs into Redis lists; the worker pool dequeues
// them via BRPOP. It is the post-commit side-effect sink for the service
// layer: services call Notify / TriggerReplenishment after their transaction
// commits, and failures here never fail the originating request.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// NotificationPayload is the job envelope sent to QueueNotifications.
type NotificationPayload struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ReplenishmentPayload is the job envelope sent to QueueReplenishment.
type ReplenishmentPayload struct {
	OrderID string `json:"order_id"`
	Trigger string `json:"trigger"`
}

// Notify enqueues a notification job. Best-effort: enqueue failures are
// logged, not propagated.
func (d *Dispatcher) Notify(ctx context.Context, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("dispatcher: marshal notification payload")
		return
	}
	if err := d.enqueue(ctx, QueueNotifications, "notification", NotificationPayload{Event: event, Data: data}); err != nil {
		log.Error().Err(err).Str("event", event).Msg("dispatcher: enqueue notification")
	}
}

// TriggerReplenishment enqueues a replenishment analysis job for an approved
// order. Best-effort like Notify; the periodic sweep covers dropped jobs.
func (d *Dispatcher) TriggerReplenishment(ctx context.Context, orderID uuid.UUID) {
	payload := ReplenishmentPayload{OrderID: orderID.String(), Trigger: "order_approved"}
	if err := d.enqueue(ctx, QueueReplenishment, "replenishment", payload); err != nil {
		log.Error().Err(err).Str("order_id", orderID.String()).Msg("dispatcher: enqueue replenishment")
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle. handlers maps a queue
// name to the worker that processes its jobs.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]JobHandler) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers map[string]JobHandler) {
	queues := []string{QueueNotifications, QueueReplenishment}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers map[string]JobHandler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	handler, ok := handlers[queue]
	if !ok {
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("no handler registered for queue")
		return
	}
	handler.Process(ctx, job.Payload)
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
