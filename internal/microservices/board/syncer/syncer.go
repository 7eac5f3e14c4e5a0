// Package syncer keeps a board in step with the order source over AMQP:
// inbound order events are applied to the board, board decisions are
// published back, and every (re)connect starts with a full reload.
package syncer

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"kitchen-display/internal/domain"
)

var (
	ErrRequeue = errors.New("requeue")     // nack(requeue=true)
	ErrDLQ     = errors.New("dead_letter") // nack(requeue=false)
)

// BindingKeys are the routing keys of the inbound events.
var BindingKeys = []string{
	"display." + domain.EventNewOrder,
	"display." + domain.EventOrderUpdated,
	"display." + domain.EventOrderRemoved,
}

// Board is the board loop as seen by the syncer.
type Board interface {
	NewOrder(ctx context.Context, n domain.NewOrder) error
	UpdateOrder(ctx context.Context, p domain.OrderPatch) error
	RemoveOrder(ctx context.Context, r domain.OrderRemoved) error
	Reload(ctx context.Context, rows []domain.NewOrder) error
}

// Source provides the bulk load.
type Source interface {
	ListActive(ctx context.Context) ([]domain.NewOrder, error)
}

// Broker is the AMQP surface the syncer uses; *rabbitmq.Client satisfies it.
type Broker interface {
	DeclareTopology(queue string, keys []string) error
	Consume(queue, consumer string) (<-chan amqp.Delivery, error)
	Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error
	NotifyClose() <-chan *amqp.Error
	Close()
}

// Dialer opens a new broker connection.
type Dialer func() (Broker, error)

// QueueName is the durable queue of one display.
func QueueName(display string) string { return "kitchen_display." + display }
