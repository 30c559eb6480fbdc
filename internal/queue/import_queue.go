package queue

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hsi-patrimonio/inventory-api/internal/config"
	"github.com/hsi-patrimonio/inventory-api/internal/models"
)

const progressChannelPrefix = "import:progress:"

// ImportJobData is the payload carried by one queued import job
type ImportJobData struct {
	ImportLogID   string              `json:"importLogId"`
	FilePath      string              `json:"filePath"`
	FileType      string              `json:"fileType"`
	ColumnMapping map[string]string   `json:"columnMapping,omitempty"`
	Config        *models.ReadOptions `json:"config,omitempty"`
	UserID        string              `json:"userId,omitempty"`
}

// Job is the queue envelope around an import payload
type Job struct {
	ID          string        `json:"id"`
	Data        ImportJobData `json:"data"`
	Attempt     int           `json:"attempt"`
	MaxAttempts int           `json:"maxAttempts"`
	EnqueuedAt  time.Time     `json:"enqueuedAt"`
}

// ProgressEvent is published on the per-job progress channel
type ProgressEvent struct {
	ImportLogID   string `json:"importLogId"`
	Status        string `json:"status"`
	Progress      int    `json:"progress"`
	ProcessedRows int    `json:"processedRows"`
	TotalRows     int    `json:"totalRows"`
}

// Handler processes one dequeued job. A non-nil return requeues the job with
// exponential backoff until its attempts are exhausted.
type Handler func(ctx context.Context, job *Job) error

// ImportQueue is a Redis-backed job queue: a list for ready jobs, a sorted
// set for delayed retries, a bounded completed list and an unbounded failed
// list. Progress fan-out rides Redis pub/sub.
type ImportQueue struct {
	client    *redis.Client
	redisCfg  *config.RedisConfig
	importCfg *config.ImportConfig
	log       zerolog.Logger
}

// NewImportQueue creates the queue around an established Redis client
func NewImportQueue(client *redis.Client, redisCfg *config.RedisConfig, importCfg *config.ImportConfig, log zerolog.Logger) *ImportQueue {
	return &ImportQueue{
		client:    client,
		redisCfg:  redisCfg,
		importCfg: importCfg,
		log:       log.With().Str("component", "import_queue").Logger(),
	}
}

// Enqueue pushes a new job onto the ready list and returns its id
func (q *ImportQueue) Enqueue(ctx context.Context, data ImportJobData) (string, error) {
	job := &Job{
		ID:          uuid.New().String(),
		Data:        data,
		Attempt:     1,
		MaxAttempts: q.importCfg.MaxAttempts,
		EnqueuedAt:  time.Now(),
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	if err := q.client.LPush(ctx, q.redisCfg.ImportQueue, payload).Err(); err != nil {
		return "", err
	}
	q.log.Info().
		Str("job_id", job.ID).
		Str("import_log_id", data.ImportLogID).
		Str("file_type", data.FileType).
		Msg("Import job enqueued")
	return job.ID, nil
}

// Consume blocks on the ready list and dispatches jobs to the handler until
// the context is cancelled. It also runs the delayed-job promoter.
func (q *ImportQueue) Consume(ctx context.Context, handler Handler) {
	go q.promoteDelayed(ctx)

	for {
		if ctx.Err() != nil {
			return
		}

		res, err := q.client.BRPop(ctx, 5*time.Second, q.redisCfg.ImportQueue).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			q.log.Error().Err(err).Msg("Queue pop failed")
			time.Sleep(time.Second)
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			q.log.Warn().Err(err).Msg("Dropping undecodable job payload")
			continue
		}
		q.dispatch(ctx, &job, handler)
	}
}

// dispatch runs the handler and routes the job to the completed, delayed or
// failed structure based on the outcome.
func (q *ImportQueue) dispatch(ctx context.Context, job *Job, handler Handler) {
	q.log.Info().
		Str("job_id", job.ID).
		Int("attempt", job.Attempt).
		Msg("Processing import job")

	err := handler(ctx, job)
	if err == nil {
		payload, merr := json.Marshal(job)
		if merr != nil {
			return
		}
		pipe := q.client.Pipeline()
		pipe.LPush(ctx, q.redisCfg.CompletedQueue, payload)
		pipe.LTrim(ctx, q.redisCfg.CompletedQueue, 0, q.importCfg.CompletedRetention-1)
		if _, perr := pipe.Exec(ctx); perr != nil {
			q.log.Warn().Err(perr).Str("job_id", job.ID).Msg("Failed to record completed job")
		}
		return
	}

	if job.Attempt >= job.MaxAttempts {
		q.log.Error().Err(err).
			Str("job_id", job.ID).
			Int("attempts", job.Attempt).
			Msg("Import job exhausted retries")
		payload, merr := json.Marshal(job)
		if merr != nil {
			return
		}
		if perr := q.client.LPush(ctx, q.redisCfg.FailedQueue, payload).Err(); perr != nil {
			q.log.Error().Err(perr).Str("job_id", job.ID).Msg("Failed to record failed job")
		}
		return
	}

	job.Attempt++
	// Exponential backoff: base, 2x base, 4x base, ...
	delay := q.importCfg.RetryBackoff << (job.Attempt - 2)
	payload, merr := json.Marshal(job)
	if merr != nil {
		return
	}
	score := float64(time.Now().Add(delay).UnixMilli())
	if zerr := q.client.ZAdd(ctx, q.redisCfg.DelayedSet, &redis.Z{Score: score, Member: payload}).Err(); zerr != nil {
		q.log.Error().Err(zerr).Str("job_id", job.ID).Msg("Failed to schedule retry")
		return
	}
	q.log.Warn().Err(err).
		Str("job_id", job.ID).
		Int("next_attempt", job.Attempt).
		Dur("delay", delay).
		Msg("Import job scheduled for retry")
}

// promoteDelayed moves due jobs from the delayed set back to the ready list
func (q *ImportQueue) promoteDelayed(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := strconv.FormatInt(time.Now().UnixMilli(), 10)
		due, err := q.client.ZRangeByScore(ctx, q.redisCfg.DelayedSet, &redis.ZRangeBy{
			Min: "-inf",
			Max: now,
		}).Result()
		if err != nil {
			if ctx.Err() == nil {
				q.log.Error().Err(err).Msg("Delayed set scan failed")
			}
			continue
		}

		for _, payload := range due {
			// ZRem first so two promoters never double-deliver
			removed, err := q.client.ZRem(ctx, q.redisCfg.DelayedSet, payload).Result()
			if err != nil || removed == 0 {
				continue
			}
			if err := q.client.LPush(ctx, q.redisCfg.ImportQueue, payload).Err(); err != nil {
				q.log.Error().Err(err).Msg("Failed to promote delayed job")
			}
		}
	}
}

// PublishProgress fans a progress event out to subscribers of the job channel
func (q *ImportQueue) PublishProgress(ctx context.Context, event ProgressEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return q.client.Publish(ctx, progressChannelPrefix+event.ImportLogID, payload).Err()
}

// SubscribeProgress subscribes to one job's progress channel. The caller owns
// the returned subscription and must close it.
func (q *ImportQueue) SubscribeProgress(ctx context.Context, importLogID string) *redis.PubSub {
	return q.client.Subscribe(ctx, progressChannelPrefix+importLogID)
}

// PendingCount reports the ready-list depth, used by the health endpoint
func (q *ImportQueue) PendingCount(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.redisCfg.ImportQueue).Result()
}
