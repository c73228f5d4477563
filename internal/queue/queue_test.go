package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"notevault/internal/embedding"
	"notevault/internal/storage"
)

// stubProvider is a controllable Provider for queue tests. It counts calls,
// tracks the peak number of concurrent calls, and delegates results to fail
// schedules per call index.
type stubProvider struct {
	mu          sync.Mutex
	calls       int
	inFlight    int32
	maxInFlight int32
	delay       time.Duration
	block       chan struct{} // when set, calls wait until closed
	failFirst   int           // fail this many leading calls
	failAll     bool
}

func (p *stubProvider) Initialize(ctx context.Context) error { return nil }

func (p *stubProvider) Status() embedding.Status {
	return embedding.Status{Initialized: true, ModelID: "stub", Dimensions: 384}
}

func (p *stubProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	current := atomic.AddInt32(&p.inFlight, 1)
	defer atomic.AddInt32(&p.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&p.maxInFlight)
		if current <= peak || atomic.CompareAndSwapInt32(&p.maxInFlight, peak, current) {
			break
		}
	}

	p.mu.Lock()
	p.calls++
	call := p.calls
	block := p.block
	p.mu.Unlock()

	if block != nil {
		<-block
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}

	if p.failAll || call <= p.failFirst {
		return nil, errors.New("model unavailable")
	}
	return make([]float32, 384), nil
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// memoryStore is an in-memory NoteStore covering the methods the queue uses.
type memoryStore struct {
	mu       sync.Mutex
	notes    map[string]*storage.Note
	statuses map[string]storage.EmbeddingStatus
	vectors  map[string][]float32
}

func newMemoryStore(noteIDs ...string) *memoryStore {
	s := &memoryStore{
		notes:    make(map[string]*storage.Note),
		statuses: make(map[string]storage.EmbeddingStatus),
		vectors:  make(map[string][]float32),
	}
	for _, id := range noteIDs {
		s.notes[id] = &storage.Note{
			ID: id, UserID: "user-1", Title: "Note " + id,
			Content:         "# content of " + id,
			EmbeddingStatus: storage.EmbeddingPending,
		}
		s.statuses[id] = storage.EmbeddingPending
	}
	return s
}

func (s *memoryStore) FindByID(ctx context.Context, id string) (*storage.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.notes[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *note
	return &copied, nil
}

func (s *memoryStore) UpdateEmbeddingStatus(ctx context.Context, id string, status storage.EmbeddingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[id] = status
	return nil
}

func (s *memoryStore) UpdateEmbedding(ctx context.Context, id string, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors[id] = vector
	s.statuses[id] = storage.EmbeddingCompleted
	return nil
}

func (s *memoryStore) ClearEmbedding(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vectors, id)
	s.statuses[id] = storage.EmbeddingFailed
	return nil
}

func (s *memoryStore) status(id string) storage.EmbeddingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[id]
}

func (s *memoryStore) vector(id string) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vectors[id]
}

// Unused NoteStore methods.
func (s *memoryStore) Create(ctx context.Context, note *storage.Note) error { panic("not used") }
func (s *memoryStore) Update(ctx context.Context, note *storage.Note) (bool, error) {
	panic("not used")
}
func (s *memoryStore) Delete(ctx context.Context, id string) error { panic("not used") }
func (s *memoryStore) ListByUser(ctx context.Context, userID string, includeArchived bool) ([]*storage.Note, error) {
	panic("not used")
}
func (s *memoryStore) SearchBySimilarity(ctx context.Context, userID string, queryVector []float32, limit int) ([]storage.ScoredNote, error) {
	panic("not used")
}
func (s *memoryStore) SearchByTokens(ctx context.Context, userID string, tokens []string, limit int) ([]storage.ScoredNote, error) {
	panic("not used")
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func startQueue(t *testing.T, provider *stubProvider, store *memoryStore, maxConcurrent int) *Queue {
	t.Helper()
	q := New(provider, store, maxConcurrent)
	q.retryDelay = time.Millisecond
	q.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = q.Shutdown(ctx)
	})
	return q
}

func TestNew_DefaultMaxConcurrent(t *testing.T) {
	q := New(&stubProvider{}, newMemoryStore(), 0)
	if got := q.Status().MaxConcurrent; got != DefaultMaxConcurrent {
		t.Errorf("Status() MaxConcurrent = %d, want %d", got, DefaultMaxConcurrent)
	}
}

func TestQueue_Enqueue_Idempotent(t *testing.T) {
	provider := &stubProvider{}
	store := newMemoryStore("n1")
	q := New(provider, store, 5)
	q.retryDelay = time.Millisecond

	// Two rapid enqueues before the driver starts: one pending entry.
	q.Enqueue("n1")
	q.Enqueue("n1")

	if got := q.Status().QueueSize; got != 1 {
		t.Fatalf("Status() QueueSize = %d, want 1", got)
	}

	q.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = q.Shutdown(ctx)
	})

	waitFor(t, 5*time.Second, func() bool {
		return store.status("n1") == storage.EmbeddingCompleted
	})

	if got := provider.callCount(); got != 1 {
		t.Errorf("provider called %d times, want exactly 1", got)
	}
}

func TestQueue_Enqueue_NoOpWhileActive(t *testing.T) {
	block := make(chan struct{})
	provider := &stubProvider{block: block}
	store := newMemoryStore("n1")
	q := startQueue(t, provider, store, 5)

	q.Enqueue("n1")
	waitFor(t, 5*time.Second, func() bool {
		return q.Status().ProcessingCount == 1
	})

	// Re-enqueueing an in-flight ID is a no-op, not cancel-and-replace.
	q.Enqueue("n1")
	if got := q.Status().QueueSize; got != 0 {
		t.Errorf("Status() QueueSize = %d, want 0", got)
	}

	close(block)
	waitFor(t, 5*time.Second, func() bool {
		return store.status("n1") == storage.EmbeddingCompleted
	})

	if got := provider.callCount(); got != 1 {
		t.Errorf("provider called %d times, want exactly 1", got)
	}
}

func TestQueue_ConcurrencyBound(t *testing.T) {
	// Scenario: 10 distinct notes, capacity 5, fast provider. All must
	// complete and the in-flight peak must never exceed the bound.
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	provider := &stubProvider{delay: 5 * time.Millisecond}
	store := newMemoryStore(ids...)
	q := startQueue(t, provider, store, 5)

	for _, id := range ids {
		q.Enqueue(id)
	}

	waitFor(t, 10*time.Second, func() bool {
		for _, id := range ids {
			if store.status(id) != storage.EmbeddingCompleted {
				return false
			}
		}
		return true
	})

	if peak := atomic.LoadInt32(&provider.maxInFlight); peak > 5 {
		t.Errorf("peak concurrent generations = %d, want <= 5", peak)
	}
	if got := provider.callCount(); got != 10 {
		t.Errorf("provider called %d times, want 10", got)
	}
	for _, id := range ids {
		if store.vector(id) == nil {
			t.Errorf("note %s has no vector after completion", id)
		}
	}
}

func TestQueue_RetryExhaustion(t *testing.T) {
	// A provider that always fails yields exactly 4 attempts and a failed
	// status with no vector.
	provider := &stubProvider{failAll: true}
	store := newMemoryStore("n1")
	q := startQueue(t, provider, store, 5)

	q.Enqueue("n1")

	waitFor(t, 5*time.Second, func() bool {
		return store.status("n1") == storage.EmbeddingFailed
	})

	if got := provider.callCount(); got != 4 {
		t.Errorf("provider called %d times, want exactly 4", got)
	}
	if store.vector("n1") != nil {
		t.Error("failed note still has a vector")
	}
}

func TestQueue_EventualSuccess(t *testing.T) {
	// Fails on attempts 1-2, succeeds on attempt 3.
	provider := &stubProvider{failFirst: 2}
	store := newMemoryStore("n1")
	q := startQueue(t, provider, store, 5)

	q.Enqueue("n1")

	waitFor(t, 5*time.Second, func() bool {
		return store.status("n1") == storage.EmbeddingCompleted
	})

	if got := provider.callCount(); got != 3 {
		t.Errorf("provider called %d times, want exactly 3", got)
	}
	if vec := store.vector("n1"); len(vec) != 384 {
		t.Errorf("vector length = %d, want 384", len(vec))
	}
}

func TestQueue_ReEnqueueAfterTerminalState(t *testing.T) {
	provider := &stubProvider{}
	store := newMemoryStore("n1")
	q := startQueue(t, provider, store, 5)

	q.Enqueue("n1")
	waitFor(t, 5*time.Second, func() bool {
		return store.status("n1") == storage.EmbeddingCompleted
	})

	// A terminal note is a fresh job on re-enqueue.
	q.Enqueue("n1")
	waitFor(t, 5*time.Second, func() bool {
		return provider.callCount() == 2
	})
}

func TestQueue_DeletedNoteSkipped(t *testing.T) {
	provider := &stubProvider{}
	store := newMemoryStore() // no notes
	q := startQueue(t, provider, store, 5)

	q.Enqueue("ghost")

	// Give the driver time to admit and drop the job.
	time.Sleep(50 * time.Millisecond)
	waitFor(t, 5*time.Second, func() bool {
		s := q.Status()
		return s.QueueSize == 0 && s.ProcessingCount == 0
	})

	if got := provider.callCount(); got != 0 {
		t.Errorf("provider called %d times for a deleted note, want 0", got)
	}
}

func TestQueue_Status(t *testing.T) {
	block := make(chan struct{})
	provider := &stubProvider{block: block}
	store := newMemoryStore("a", "b", "c")
	q := startQueue(t, provider, store, 2)

	q.Enqueue("a")
	q.Enqueue("b")
	q.Enqueue("c")

	// With capacity 2, two jobs block in the provider and one stays pending.
	waitFor(t, 5*time.Second, func() bool {
		s := q.Status()
		return s.ProcessingCount == 2 && s.QueueSize == 1
	})

	s := q.Status()
	if s.MaxConcurrent != 2 {
		t.Errorf("Status() MaxConcurrent = %d, want 2", s.MaxConcurrent)
	}

	close(block)
	waitFor(t, 5*time.Second, func() bool {
		s := q.Status()
		return s.QueueSize == 0 && s.ProcessingCount == 0
	})
}

func TestQueue_Shutdown_WaitsForInFlight(t *testing.T) {
	block := make(chan struct{})
	provider := &stubProvider{block: block}
	store := newMemoryStore("n1")
	q := New(provider, store, 5)
	q.retryDelay = time.Millisecond
	q.Start(context.Background())

	q.Enqueue("n1")
	waitFor(t, 5*time.Second, func() bool {
		return q.Status().ProcessingCount == 1
	})

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- q.Shutdown(ctx)
	}()

	select {
	case <-done:
		t.Fatal("Shutdown() returned while a job was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if store.status("n1") != storage.EmbeddingCompleted {
		t.Errorf("status after shutdown = %v, want completed", store.status("n1"))
	}
}
