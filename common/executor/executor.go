package executor

import (
	"context"
	"sync"

	"github.com/zeromicro/go-zero/core/threading"
)

// Executor runs handler for committed tasks on a fixed number of workers.
// A panicking handler is recovered and does not take its worker down.
type Executor[P interface{}] struct {
	ctx     context.Context
	tasks   chan P
	handler func(ctx context.Context, task P)
	workers int
	group   *threading.RoutineGroup
	cancel  context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

func NewExecutor[P interface{}](ctx context.Context, workers int, queueSize int, handler func(ctx context.Context, task P)) *Executor[P] {
	if workers < 1 {
		workers = 1
	}
	ret := &Executor[P]{
		tasks:   make(chan P, queueSize),
		handler: handler,
		workers: workers,
		group:   threading.NewRoutineGroup(),
	}
	ret.ctx, ret.cancel = context.WithCancel(ctx)
	return ret
}

func (e *Executor[P]) Start() {
	for i := 0; i < e.workers; i++ {
		e.group.Run(func() {
			for {
				select {
				case <-e.ctx.Done():
					return
				case task, ok := <-e.tasks:
					if !ok {
						return
					}
					threading.RunSafe(func() {
						e.handler(e.ctx, task)
					})
				}
			}
		})
	}
}

// Stop abandons queued tasks. Running handlers see their context cancelled.
func (e *Executor[P]) Stop() {
	e.cancel()
	e.group.Wait()
}

// Drain stops accepting tasks and waits until every queued task has run.
func (e *Executor[P]) Drain() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.tasks)
	}
	e.mu.Unlock()
	e.group.Wait()
	e.cancel()
}

func (e *Executor[P]) QueueSize() int {
	return len(e.tasks)
}

// Commit queues task, blocking while the queue is full. It reports false
// once the executor is stopped or drained.
func (e *Executor[P]) Commit(task P) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return false
	}
	select {
	case <-e.ctx.Done():
		return false
	case e.tasks <- task:
		return true
	}
}
