package jobs

import (
	"context"
	"log"
	"sync"
)

const (
	// DefaultStreamWorkers is the number of goroutines draining the queue.
	DefaultStreamWorkers = 4
	// DefaultStreamQueueSize bounds how many streaming tasks may wait.
	DefaultStreamQueueSize = 200
)

// StreamPool runs streaming response tasks on a bounded worker pool. When
// both the workers and the queue are saturated, Submit runs the task on the
// calling goroutine instead of dropping it, which slows producers down to
// the pace the pool can sustain.
type StreamPool struct {
	tasks    chan func()
	stopChan chan struct{}
	doneChan chan struct{}
	wg       sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewStreamPool creates a pool with the given worker count and queue size.
// Non-positive values fall back to the defaults.
func NewStreamPool(workers, queueSize int) *StreamPool {
	if workers <= 0 {
		workers = DefaultStreamWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultStreamQueueSize
	}

	p := &StreamPool{
		tasks:    make(chan func(), queueSize),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	go func() {
		p.wg.Wait()
		close(p.doneChan)
	}()

	log.Printf("Stream pool started: workers=%d queue=%d", workers, queueSize)
	return p
}

func (p *StreamPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			// Drain remaining queued tasks before exiting.
			for {
				select {
				case task := <-p.tasks:
					task()
				default:
					return
				}
			}
		case task := <-p.tasks:
			task()
		}
	}
}

// Submit enqueues a task for execution. If the queue is full the task runs
// synchronously on the caller's goroutine. After Shutdown, tasks also run
// on the caller so in-flight requests still complete.
func (p *StreamPool) Submit(task func()) {
	// The stop check and the enqueue happen under one lock. Shutdown takes
	// the same lock before closing stopChan, so a task enqueued here is
	// still in the queue when the workers start their drain pass.
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		task()
		return
	}

	select {
	case p.tasks <- task:
		p.mu.Unlock()
	default:
		p.mu.Unlock()
		task()
	}
}

// Shutdown stops accepting queued work and waits for workers to drain the
// queue, or until ctx expires.
func (p *StreamPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		<-p.doneChan
		return nil
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.stopChan)

	select {
	case <-p.doneChan:
		log.Println("Stream pool shutdown complete")
		return nil
	case <-ctx.Done():
		log.Println("Stream pool shutdown timed out")
		return ctx.Err()
	}
}
