package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/BigPoppaG/CourseMe/internal/config"
	"github.com/BigPoppaG/CourseMe/internal/model"
)

// EngagementWorker consumes module view events and UPSERTs the viewer's
// last_viewed stamp, so page loads never wait on the engagement write.
type EngagementWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewEngagementWorker creates a new EngagementWorker.
func NewEngagementWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *EngagementWorker {
	return &EngagementWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "engagement_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *EngagementWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *EngagementWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.ModuleViewsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var event model.ModuleViewEvent
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persistView(ctx, &event); err != nil {
		w.log.Error().Err(err).
			Int("user_id", event.UserID).
			Int("module_id", event.ModuleID).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.ModuleViewsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *EngagementWorker) persistView(ctx context.Context, e *model.ModuleViewEvent) error {
	_, err := w.pool.Exec(ctx,
		`INSERT INTO user_modules (user_id, module_id, starred, vote, last_viewed)
		 VALUES ($1, $2, false, 0, $3)
		 ON CONFLICT (user_id, module_id) DO UPDATE
		 SET last_viewed = EXCLUDED.last_viewed`,
		e.UserID, e.ModuleID, e.ViewedAt,
	)
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *EngagementWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.ModuleViewsQueue).Result()
		if err != nil {
			break
		}

		var event model.ModuleViewEvent
		if err := json.Unmarshal([]byte(result), &event); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persistView(ctx, &event); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.ModuleViewsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
