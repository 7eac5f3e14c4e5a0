package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kitchen-display/internal/common/logger"
)

var errConsumerStopped = errors.New("consumer channel closed")

// Adapter supervises the broker connection.
type Adapter struct {
	dial      Dialer
	source    Source
	board     Board
	consumer  *Consumer
	publisher *Publisher
	queue     string
	tag       string
	lg        *logger.Logger

	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func NewAdapter(display string, dial Dialer, source Source, board Board, consumer *Consumer, publisher *Publisher, lg *logger.Logger) *Adapter {
	return &Adapter{
		dial:       dial,
		source:     source,
		board:      board,
		consumer:   consumer,
		publisher:  publisher,
		queue:      QueueName(display),
		tag:        "kitchen-display-" + display,
		lg:         lg,
		MinBackoff: 500 * time.Millisecond,
		MaxBackoff: 30 * time.Second,
	}
}

// Reload replaces the board contents with the bulk load. Without a source
// the board is left as is.
func (a *Adapter) Reload(ctx context.Context) error {
	if a.source == nil {
		return nil
	}
	rows, err := a.source.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("bulk load: %w", err)
	}
	if err := a.board.Reload(ctx, rows); err != nil {
		return fmt.Errorf("apply bulk load: %w", err)
	}
	a.lg.Info("sync_reloaded", map[string]any{"orders": len(rows)})
	return nil
}

// LoadWithRetry runs the bulk load for a board without a broker. Failures
// are logged and retried with backoff; the board keeps its current orders
// and keeps ticking meanwhile.
func (a *Adapter) LoadWithRetry(ctx context.Context) {
	delay := a.MinBackoff
	for {
		err := a.Reload(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		a.lg.Error("sync_reload_failed", err, map[string]any{"retry_in": delay.String()})

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, a.MaxBackoff)
	}
}

// Run connects, reloads and consumes, reconnecting with exponential
// backoff until ctx is done.
func (a *Adapter) Run(ctx context.Context) error {
	delay := a.MinBackoff
	for {
		b, err := a.dial()
		if err == nil {
			var established bool
			established, err = a.session(ctx, b)
			if established {
				delay = a.MinBackoff
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		a.lg.Error("sync_disconnected", err, map[string]any{"retry_in": delay.String()})

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, a.MaxBackoff)
	}
}

// session runs one connection. established reports whether consumption
// started.
func (a *Adapter) session(ctx context.Context, b Broker) (established bool, err error) {
	defer b.Close()
	closed := b.NotifyClose()

	if err := b.DeclareTopology(a.queue, BindingKeys); err != nil {
		return false, err
	}
	if err := a.Reload(ctx); err != nil {
		return false, err
	}
	msgs, err := b.Consume(a.queue, a.tag)
	if err != nil {
		return false, fmt.Errorf("consume %s: %w", a.queue, err)
	}

	a.publisher.attach(b)
	defer a.publisher.attach(nil)
	a.lg.Info("sync_connected", map[string]any{"queue": a.queue})

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case amqpErr, ok := <-closed:
			if !ok || amqpErr == nil {
				return true, errors.New("connection closed")
			}
			return true, fmt.Errorf("connection closed: %s", amqpErr.Reason)
		case d, ok := <-msgs:
			if !ok {
				return true, errConsumerStopped
			}
			a.consumer.Deliver(ctx, d)
		}
	}
}
