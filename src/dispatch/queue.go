package dispatch

import (
	"context"
	"log"
	"sync"
)

type job struct {
	workerID uint
	offer    Offer
}

// Queue is the fire-and-forget handoff between request handlers and
// delivery: handlers enqueue and return, worker goroutines deliver and
// log. A slow or failed delivery can never turn a committed booking
// mutation into an error response.
type Queue struct {
	dispatch func(ctx context.Context, workerID uint, offer Offer) error
	jobs     chan job
	wg       sync.WaitGroup
	closing  sync.Once

	mu     sync.RWMutex
	closed bool
}

func NewQueue(d *Dispatcher, size int) *Queue {
	return &Queue{
		dispatch: d.Dispatch,
		jobs:     make(chan job, size),
	}
}

func (q *Queue) Start(workers int) *Queue {
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		if err := q.dispatch(context.Background(), j.workerID, j.offer); err != nil {
			log.Printf("[dispatch] delivery for offer %s to worker %d failed: %s\n", j.offer.BookingID, j.workerID, err.Error())
		}
	}
}

// Enqueue never blocks the caller; when the buffer is full the job is
// dropped and left to the periodic rescan.
func (q *Queue) Enqueue(workerID uint, offer Offer) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return
	}
	select {
	case q.jobs <- job{workerID: workerID, offer: offer}:
	default:
		log.Printf("[dispatch] queue full, dropping offer %s for worker %d (rescan will retry)\n", offer.BookingID, workerID)
	}
}

// Shutdown stops intake and waits for in-flight deliveries up to the
// context deadline.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.closing.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.jobs)
	})
	drained := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var defaultQueue *Queue

// GetQueue returns the process-wide dispatch queue, starting it on first
// use.
func GetQueue() *Queue {
	if defaultQueue != nil {
		return defaultQueue
	}
	q := NewQueue(NewDispatcher(), 256).Start(4)
	defaultQueue = q
	return q
}

// NewDefaultQueue Replace queue instance with custom implementation
func NewDefaultQueue(q *Queue) *Queue {
	defaultQueue = q
	return defaultQueue
}
