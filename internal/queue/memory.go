package queue

import (
	"context"
	"log/slog"
	"sync"
)

const defaultBuffer = 256

// Memory is an in-process Queue for single-binary deployments and
// tests. Publish blocks when the buffer is full, applying backpressure
// to the webhook ingress rather than dropping orders.
type Memory struct {
	tasks  chan Task
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

var _ Queue = (*Memory)(nil)

// NewMemory creates an in-process queue. buffer of zero selects a
// default size.
func NewMemory(buffer int, logger *slog.Logger) *Memory {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		tasks:  make(chan Task, buffer),
		logger: logger.With("component", "memory_queue"),
	}
}

func (q *Memory) Publish(ctx context.Context, task Task) error {
	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe drains tasks on a single goroutine until the context is
// cancelled or Close is called.
func (q *Memory) Subscribe(ctx context.Context, handler Handler) error {
	go func() {
		for {
			select {
			case task, ok := <-q.tasks:
				if !ok {
					return
				}
				handler(ctx, task)
			case <-ctx.Done():
				q.logger.Info("queue consumer stopping", "pending", len(q.tasks))
				return
			}
		}
	}()
	return nil
}

func (q *Memory) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
}
