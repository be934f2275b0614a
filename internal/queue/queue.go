// Package queue decouples webhook acknowledgment from order processing.
// The webhook handler acks within the platform's response deadline and
// publishes the order here; a worker drains tasks sequentially.
package queue

import (
	"context"

	"github.com/dukerupert/tawseel/internal/domain"
)

// Task is one inbound order awaiting processing.
type Task struct {
	Shop  string              `json:"shop"`
	Order *domain.SourceOrder `json:"order"`
}

// Handler processes one task. Outcomes are recorded in the ledger by
// the handler; the queue itself never retries.
type Handler func(ctx context.Context, task Task)

// Queue is the inbound order queue. Subscribe delivers tasks to the
// handler one at a time, in publish order.
type Queue interface {
	Publish(ctx context.Context, task Task) error
	Subscribe(ctx context.Context, handler Handler) error
	Close()
}
