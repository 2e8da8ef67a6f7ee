package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"

	"github.com/luneclub/lune/backend/internal/config"
	"github.com/luneclub/lune/backend/internal/storage"
	"github.com/luneclub/lune/backend/pkg/logger"
)

const (
	TaskTypeBlobPurge = "blob:purge"
)

// BlobPurgeTask removes stored objects whose database rows are gone.
type BlobPurgeTask struct {
	Keys   []string `json:"keys"`
	Reason string   `json:"reason"` // e.g. "member 12 deleted"
}

// TaskQueue defines the interface for background task processing
type TaskQueue interface {
	// Enqueue schedules the purge; it does not wait for it to run.
	Enqueue(task *BlobPurgeTask) error
	// IsAsync returns true if tasks are handed to an external worker
	IsAsync() bool
	Close() error
}

// NewTaskQueue picks the Redis-backed queue when enabled and reachable and
// falls back to in-process execution otherwise.
func NewTaskQueue(cfg *config.RedisConfig, processor func(context.Context, *BlobPurgeTask) error) TaskQueue {
	if cfg.Enabled {
		queue, err := NewAsyncQueue(cfg)
		if err == nil {
			logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Addr)
			return queue
		}
		logger.Warnf("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
	} else {
		logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
	}
	q := NewSyncQueue()
	q.SetProcessor(processor)
	return q
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	opt := redisOpt(cfg)
	client := asynq.NewClient(opt)

	// Verify the connection before committing to async mode.
	inspector := asynq.NewInspector(opt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

func (q *AsyncQueue) Enqueue(task *BlobPurgeTask) error {
	if len(task.Keys) == 0 {
		return nil
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	info, err := q.client.Enqueue(asynq.NewTask(TaskTypeBlobPurge, payload),
		asynq.Queue("default"),
		asynq.MaxRetry(5),
	)
	if err != nil {
		return err
	}

	logger.Debug().Str("task_id", info.ID).Int("keys", len(task.Keys)).Msg("blob purge enqueued")
	return nil
}

func (q *AsyncQueue) IsAsync() bool { return true }

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue runs tasks in a goroutine of this process (no Redis).
type SyncQueue struct {
	processor func(context.Context, *BlobPurgeTask) error
	wg        sync.WaitGroup
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

func (q *SyncQueue) SetProcessor(processor func(context.Context, *BlobPurgeTask) error) {
	q.processor = processor
}

func (q *SyncQueue) Enqueue(task *BlobPurgeTask) error {
	if len(task.Keys) == 0 {
		return nil
	}
	if q.processor == nil {
		logger.Warnf("[SyncQueue] no processor set, dropping purge of %d keys", len(task.Keys))
		return nil
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := q.processor(context.Background(), task); err != nil {
			logger.Error().Err(err).Str("reason", task.Reason).Msg("blob purge failed")
		}
	}()
	return nil
}

// Wait blocks until every enqueued task has finished.
func (q *SyncQueue) Wait() { q.wg.Wait() }

func (q *SyncQueue) IsAsync() bool { return false }

// Close drains in-flight tasks.
func (q *SyncQueue) Close() error {
	q.wg.Wait()
	return nil
}

// BlobPurger deletes objects from blob storage.
type BlobPurger struct {
	store storage.Storage
}

func NewBlobPurger(store storage.Storage) *BlobPurger {
	return &BlobPurger{store: store}
}

// Process deletes every key and reports all failures together.
func (p *BlobPurger) Process(ctx context.Context, task *BlobPurgeTask) error {
	var errs []error
	for _, key := range task.Keys {
		if key == "" {
			continue
		}
		if err := p.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logger.Info().Int("keys", len(task.Keys)).Str("reason", task.Reason).Msg("blobs purged")
	return nil
}
