package repository

import (
	"sync"
	"sync/atomic"
	"time"

	"monex/internal/logger"
	"monex/internal/storage"
)

const queueBuffer = 256

type writeOp int

const (
	opSave writeOp = iota
	opDelete
	opBarrier
)

type writeJob struct {
	op   writeOp
	key  string
	data []byte
	done chan struct{}
}

// QueueStats reports what the queue has done so far.
type QueueStats struct {
	Processed uint64 `json:"processed"`
	Failures  uint64 `json:"failures"`
	Dropped   uint64 `json:"dropped"`
}

// WriteQueue applies storage writes on a single worker goroutine in the
// order they were enqueued. Enqueue never waits for the write itself, and
// write errors are logged and counted rather than returned.
type WriteQueue struct {
	store storage.Storage
	jobs  chan writeJob
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	processed atomic.Uint64
	failures  atomic.Uint64
	dropped   atomic.Uint64
}

// NewWriteQueue starts the worker.
func NewWriteQueue(store storage.Storage) *WriteQueue {
	q := &WriteQueue{
		store: store,
		jobs:  make(chan writeJob, queueBuffer),
	}
	q.wg.Add(1)
	go q.worker()
	return q
}

// Enqueue schedules data to replace the value stored under key.
func (q *WriteQueue) Enqueue(key string, data []byte) {
	q.submit(writeJob{op: opSave, key: key, data: data})
}

// EnqueueDelete schedules key for removal.
func (q *WriteQueue) EnqueueDelete(key string) {
	q.submit(writeJob{op: opDelete, key: key})
}

// Flush blocks until every write enqueued before the call has been applied.
func (q *WriteQueue) Flush() {
	done := make(chan struct{})
	if !q.submit(writeJob{op: opBarrier, done: done}) {
		return
	}
	<-done
}

// Close drains pending writes and stops the worker. Later writes are dropped.
func (q *WriteQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	logger.Get().Infow("Write queue stopped",
		"processed", q.processed.Load(),
		"failures", q.failures.Load(),
	)
}

// Failures is the number of writes the storage rejected.
func (q *WriteQueue) Failures() uint64 { return q.failures.Load() }

// Stats returns a snapshot of the queue counters.
func (q *WriteQueue) Stats() QueueStats {
	return QueueStats{
		Processed: q.processed.Load(),
		Failures:  q.failures.Load(),
		Dropped:   q.dropped.Load(),
	}
}

func (q *WriteQueue) submit(job writeJob) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.dropped.Add(1)
		logger.Get().Warnw("Write queue is closed, write dropped", "key", job.key)
		return false
	}
	q.jobs <- job
	return true
}

func (q *WriteQueue) worker() {
	defer q.wg.Done()

	for job := range q.jobs {
		switch job.op {
		case opBarrier:
			close(job.done)
			continue
		case opSave:
			q.apply(job.key, func() error { return q.store.Save(job.key, job.data) })
		case opDelete:
			q.apply(job.key, func() error { return q.store.Delete(job.key) })
		}
	}
}

func (q *WriteQueue) apply(key string, write func() error) {
	start := time.Now()
	if err := write(); err != nil {
		q.failures.Add(1)
		logger.Get().Errorw("Failed to persist record",
			"key", key,
			"error", err,
		)
		return
	}
	q.processed.Add(1)
	logger.Get().Debugw("Persisted record", "key", key, "duration", time.Since(start))
}
