package worker

// Jobs that exhaust their retries are parked on a per-queue dead-letter list
// (e.g. "jobs:notifications:dead") so an operator can inspect the payload and
// requeue or discard it.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const deadLetterSuffix = ":dead"

// DeadLetterKey returns the Redis list holding a queue's dead jobs.
func DeadLetterKey(queue string) string { return queue + deadLetterSuffix }

// DeadJob is the envelope stored on the dead-letter list.
type DeadJob struct {
	Queue    string          `json:"queue"`
	JobType  string          `json:"job_type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	FailedAt time.Time       `json:"failed_at"`
	Attempts int             `json:"attempts"`
}

// SendToDLQ parks a job that exhausted its retries. Errors are logged, not
// returned: at this point the job is already lost to its queue either way.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, jobType string, payload json.RawMessage, reason string, attempts int) {
	job := DeadJob{
		Queue:    queue,
		JobType:  jobType,
		Payload:  payload,
		Reason:   reason,
		FailedAt: time.Now().UTC(),
		Attempts: attempts,
	}

	data, err := json.Marshal(job)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal failed")
		return
	}

	key := DeadLetterKey(queue)
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("dlq: push failed")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job parked")
}

// DLQLength reports how many dead jobs a queue has accumulated.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DeadLetterKey(queue)).Result()
}
