// Package queue drives asynchronous embedding generation for notes.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"notevault/internal/embedding"
	"notevault/internal/preprocess"
	"notevault/internal/storage"
)

const (
	// DefaultMaxConcurrent bounds how many generation tasks run at once.
	DefaultMaxConcurrent = 5

	// maxAttempts is the total number of provider calls per job.
	maxAttempts = 4

	// defaultRetryDelay is the backoff base: 1s, 2s, 4s before retries.
	defaultRetryDelay = time.Second
)

// Status is a read-only snapshot of the queue for health reporting.
type Status struct {
	QueueSize       int `json:"queue_size"`
	ProcessingCount int `json:"processing_count"`
	MaxConcurrent   int `json:"max_concurrent"`
}

// Queue is a bounded-concurrency, in-process embedding job queue.
//
// Note IDs are admitted FIFO into an active set capped at maxConcurrent; each
// admitted job runs to a terminal state (completed or failed) with exponential
// retry backoff in between. Enqueueing an ID already pending or active is a
// no-op, so a note never holds more than one slot. The pending backlog is
// deliberately unbounded and lives only in memory: a restart drops it, and the
// pending embedding statuses in the store say what was lost.
type Queue struct {
	provider      embedding.Provider
	store         storage.NoteStore
	maxConcurrent int
	retryDelay    time.Duration
	logger        *slog.Logger

	mu         sync.Mutex
	pending    []string
	pendingSet map[string]struct{}
	active     map[string]struct{}

	wake chan struct{}
	sem  *semaphore.Weighted

	startOnce sync.Once
	cancel    context.CancelFunc
	driver    sync.WaitGroup
	tasks     sync.WaitGroup
}

// New creates a queue processing embeddings through the given provider and
// store. maxConcurrent <= 0 falls back to DefaultMaxConcurrent. The queue is
// inert until Start is called.
func New(provider embedding.Provider, store storage.NoteStore, maxConcurrent int) *Queue {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Queue{
		provider:      provider,
		store:         store,
		maxConcurrent: maxConcurrent,
		retryDelay:    defaultRetryDelay,
		logger:        slog.Default(),
		pendingSet:    make(map[string]struct{}),
		active:        make(map[string]struct{}),
		wake:          make(chan struct{}, 1),
		sem:           semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Start launches the driver loop. It is idempotent; only one driver ever runs
// per queue instance.
func (q *Queue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		ctx, q.cancel = context.WithCancel(ctx)
		q.driver.Add(1)
		go q.run(ctx)
	})
}

// Shutdown stops admitting new jobs and waits for in-flight tasks to reach a
// terminal state, or until ctx expires.
func (q *Queue) Shutdown(ctx context.Context) error {
	if q.cancel != nil {
		q.cancel()
	}

	done := make(chan struct{})
	go func() {
		q.driver.Wait()
		q.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue schedules embedding generation for a note. It is fire-and-forget:
// the outcome is observable only through the note's embedding status. An ID
// already pending or active is ignored.
func (q *Queue) Enqueue(noteID string) {
	q.mu.Lock()
	if _, ok := q.pendingSet[noteID]; ok {
		q.mu.Unlock()
		q.logger.Debug("note already pending, skipping enqueue", "note_id", noteID)
		return
	}
	if _, ok := q.active[noteID]; ok {
		q.mu.Unlock()
		q.logger.Debug("note already processing, skipping enqueue", "note_id", noteID)
		return
	}
	q.pending = append(q.pending, noteID)
	q.pendingSet[noteID] = struct{}{}
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Status returns a snapshot of the queue.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Status{
		QueueSize:       len(q.pending),
		ProcessingCount: len(q.active),
		MaxConcurrent:   q.maxConcurrent,
	}
}

// run is the driver loop: it admits pending note IDs into the active set as
// capacity frees up. Admission order is FIFO; completion order is not.
func (q *Queue) run(ctx context.Context) {
	defer q.driver.Done()

	// Jobs are never cancelled once admitted: a task keeps its own
	// lifetime so shutdown can wait for terminal states instead of
	// aborting provider calls halfway.
	taskCtx := context.WithoutCancel(ctx)

	for {
		if !q.hasPending() {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}

		// Blocks until a concurrency slot frees up.
		if err := q.sem.Acquire(ctx, 1); err != nil {
			return
		}

		noteID, ok := q.admit()
		if !ok {
			q.sem.Release(1)
			continue
		}

		q.tasks.Add(1)
		go func(id string) {
			defer q.tasks.Done()
			defer q.sem.Release(1)
			defer q.finish(id)
			defer func() {
				if r := recover(); r != nil {
					q.logger.Error("embedding job panicked", "note_id", id, "panic", r)
				}
			}()
			q.process(taskCtx, id)
		}(noteID)
	}
}

func (q *Queue) hasPending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) > 0
}

// admit atomically moves the front pending ID into the active set, so an ID
// is never observable in both, nor absent from both mid-transfer.
func (q *Queue) admit() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return "", false
	}
	noteID := q.pending[0]
	q.pending = q.pending[1:]
	delete(q.pendingSet, noteID)
	q.active[noteID] = struct{}{}
	return noteID, true
}

// finish removes an ID from the active set. Runs unconditionally at task end.
func (q *Queue) finish(noteID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.active, noteID)
}

// process runs a single job to its terminal state.
func (q *Queue) process(ctx context.Context, noteID string) {
	logger := q.logger.With("note_id", noteID)

	note, err := q.store.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.WarnContext(ctx, "note deleted before embedding started")
		} else {
			logger.ErrorContext(ctx, "failed to load note for embedding", "error", err)
		}
		return
	}

	if err := q.store.UpdateEmbeddingStatus(ctx, noteID, storage.EmbeddingProcessing); err != nil {
		logger.WarnContext(ctx, "failed to mark note processing", "error", err)
	}

	text := preprocess.Clean(note.Content)

	var vector []float32
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := q.retryDelay << (attempt - 1)
			logger.WarnContext(ctx, "retrying embedding generation",
				"attempt", attempt+1, "delay", delay, "error", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				lastErr = ctx.Err()
			}
			if lastErr != nil && ctx.Err() != nil {
				break
			}
		}

		vector, lastErr = q.provider.GenerateEmbedding(ctx, text)
		if lastErr == nil {
			break
		}
	}

	if lastErr != nil {
		logger.ErrorContext(ctx, "embedding generation failed permanently",
			"attempts", maxAttempts, "error", lastErr)
		if err := q.store.ClearEmbedding(ctx, noteID); err != nil {
			logger.ErrorContext(ctx, "failed to mark note failed", "error", err)
		}
		return
	}

	if err := q.store.UpdateEmbedding(ctx, noteID, vector); err != nil {
		logger.ErrorContext(ctx, "failed to persist embedding", "error", err)
		if err := q.store.ClearEmbedding(ctx, noteID); err != nil {
			logger.ErrorContext(ctx, "failed to mark note failed", "error", err)
		}
		return
	}

	logger.InfoContext(ctx, "embedding completed", "dimensions", len(vector))
}
