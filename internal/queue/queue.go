package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"foncier/server/internal/database"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// TransactionQueue is an in-memory queue of raw transaction batches
// sitting between the CSV reader and the batch processors.
type TransactionQueue struct {
	items    chan []*database.RawTransaction
	finished chan struct{}
	maxSize  int
	closed   bool
	started  bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]*database.RawTransaction) error
}

// NewTransactionQueue creates a new queue with the specified buffer size
func NewTransactionQueue(bufferSize int, logger *logrus.Logger) *TransactionQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &TransactionQueue{
		items:    make(chan []*database.RawTransaction, bufferSize),
		finished: make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func([]*database.RawTransaction) error, 0),
	}
}

// Push adds a batch of transactions to the queue
func (q *TransactionQueue) Push(batch []*database.RawTransaction) error {
	// The read lock is held across the send so Close cannot close the
	// channel between the closed check and the send.
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	// Non-blocking send to prevent deadlocks
	select {
	case q.items <- batch:
		q.logger.WithField("batch_size", len(batch)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch
func (q *TransactionQueue) Subscribe(handler func([]*database.RawTransaction) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start spawns the given number of worker goroutines. Each worker
// keeps consuming until the channel is closed and drained; once the
// last one exits, completion is signalled to Close.
func (q *TransactionQueue) Start(workers int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	if workers < 1 {
		workers = 1
	}
	q.started = true

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range q.items {
				q.processBatch(batch)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(q.finished)
	}()
}

// processBatch sends the batch to all subscribed handlers
func (q *TransactionQueue) processBatch(batch []*database.RawTransaction) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops the queue from accepting new batches and blocks until
// every queued batch, including one already inside a handler, has been
// processed. Producers can therefore exit as soon as Close returns.
func (q *TransactionQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	started := q.started
	close(q.items)
	q.mu.Unlock()

	if started {
		<-q.finished
	}
	return nil
}

// Len returns the current number of batches in the queue
func (q *TransactionQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *TransactionQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
