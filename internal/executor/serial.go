// Package executor provides the single serialized queue each Store owns.
//
// Every job submitted to a Serial executor runs on one goroutine, one at a
// time, in submission order. Nothing else is synchronized: code running inside
// a job may touch executor-owned data without locks.
package executor

import (
	"context"

	"github.com/google/uuid"
)

// Serial drains a buffered job channel on a single goroutine.
type Serial struct {
	ID     string
	jobs   chan func()
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSerial starts the executor goroutine. It stops when ctx is cancelled or
// Close is called; jobs still buffered at that point are discarded.
func NewSerial(ctx context.Context, bufferSize int) *Serial {
	ctx, cancel := context.WithCancel(ctx)
	s := &Serial{
		ID:     uuid.New().String(),
		jobs:   make(chan func(), bufferSize),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	ready := make(chan struct{})
	go func() {
		defer close(s.done)
		close(ready)
		for {
			select {
			case job := <-s.jobs:
				job()
			case <-s.ctx.Done():
				return
			}
		}
	}()
	<-ready

	return s
}

// Submit enqueues job. It reports false when the executor is closed.
func (s *Serial) Submit(job func()) bool {
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case s.jobs <- job:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// Do enqueues job and waits until it ran. It reports false when the executor
// closed before running it.
func (s *Serial) Do(job func()) bool {
	ran := make(chan struct{})
	if !s.Submit(func() {
		job()
		close(ran)
	}) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-s.done:
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Close stops the executor and waits for the running job, if any, to return.
func (s *Serial) Close() {
	s.cancel()
	<-s.done
}

// Closed is closed once the executor goroutine exited.
func (s *Serial) Closed() <-chan struct{} {
	return s.done
}

// Context is cancelled when the executor is closed.
func (s *Serial) Context() context.Context {
	return s.ctx
}
