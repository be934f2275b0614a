// Package worker drains the inbound order queue. Orders are processed
// one at a time in arrival order; throughput is deliberately traded for
// the courier's rate limits and submission ordering.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/tawseel/internal/queue"
	"github.com/dukerupert/tawseel/internal/service"
)

// Config holds worker configuration
type Config struct {
	// WorkerID uniquely identifies this worker instance
	WorkerID string
}

// Worker consumes order tasks and runs them through the processor.
type Worker struct {
	config    Config
	queue     queue.Queue
	processor *service.Processor
	logger    *slog.Logger
}

// NewWorker creates a new order worker
func NewWorker(q queue.Queue, processor *service.Processor, config Config, logger *slog.Logger) *Worker {
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		config:    config,
		queue:     q,
		processor: processor,
		logger:    logger.With("worker_id", config.WorkerID),
	}
}

// Start subscribes to the queue and processes tasks until the context
// is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting")

	if err := w.queue.Subscribe(ctx, w.handle); err != nil {
		return fmt.Errorf("worker failed to subscribe: %w", err)
	}

	<-ctx.Done()
	w.logger.Info("worker shutting down")
	return ctx.Err()
}

func (w *Worker) handle(ctx context.Context, task queue.Task) {
	if task.Order == nil {
		w.logger.Error("dropping task with no order", "shop", task.Shop)
		return
	}

	logger := w.logger.With("shop", task.Shop, "order_id", task.Order.ID)
	start := time.Now()

	result := w.processor.Process(ctx, task.Order, task.Shop)
	switch {
	case result.Skipped:
		logger.Info("order skipped", "provider_order_id", result.ProviderOrderID)
	case result.Success:
		logger.Info("order processed",
			"provider_order_id", result.ProviderOrderID,
			"duration", time.Since(start))
	default:
		// The processor already recorded the failure in the ledger; the
		// task is not requeued.
		logger.Error("order failed", "error", result.Error)
	}
}
