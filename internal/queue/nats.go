package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dukerupert/tawseel/internal/telemetry"
)

const (
	ordersSubject = "tawseel.orders.inbound"
	workerGroup   = "tawseel-workers"
)

// NATS is a Queue backed by a NATS server, for deployments where the
// webhook ingress and the worker run as separate processes.
type NATS struct {
	conn   *nats.Conn
	sub    *nats.Subscription
	logger *slog.Logger
}

var _ Queue = (*NATS)(nil)

// NewNATS connects to the NATS server at url.
func NewNATS(url string, logger *slog.Logger) (*NATS, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(url,
		nats.Name("tawseel"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	return &NATS{
		conn:   conn,
		logger: logger.With("component", "nats_queue"),
	}, nil
}

func (q *NATS) Publish(ctx context.Context, task Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to encode order task: %w", err)
	}
	if err := q.conn.Publish(ordersSubject, data); err != nil {
		if telemetry.Business != nil {
			telemetry.Business.QueueFailures.WithLabelValues("publish").Inc()
		}
		return fmt.Errorf("failed to publish order task: %w", err)
	}
	return nil
}

// Subscribe joins the worker queue group. NATS dispatches messages for
// one subscription on a single goroutine, so the handler sees tasks
// sequentially.
func (q *NATS) Subscribe(ctx context.Context, handler Handler) error {
	sub, err := q.conn.QueueSubscribe(ordersSubject, workerGroup, func(msg *nats.Msg) {
		var task Task
		if err := json.Unmarshal(msg.Data, &task); err != nil {
			q.logger.Error("dropping undecodable order task", "error", err)
			if telemetry.Business != nil {
				telemetry.Business.QueueFailures.WithLabelValues("decode").Inc()
			}
			return
		}
		handler(ctx, task)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", ordersSubject, err)
	}

	q.sub = sub
	q.logger.Info("subscribed to order queue", "subject", ordersSubject, "group", workerGroup)
	return nil
}

// Close drains the subscription so in-flight tasks finish.
func (q *NATS) Close() {
	if q.sub != nil {
		if err := q.sub.Drain(); err != nil {
			q.logger.Warn("failed to drain subscription", "error", err)
		}
	}
	if err := q.conn.Drain(); err != nil {
		q.logger.Warn("failed to drain connection", "error", err)
	}
}
