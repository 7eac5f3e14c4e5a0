package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"kitchen-display/internal/common/logger"
	"kitchen-display/internal/connections/rabbitmq"
	"kitchen-display/internal/domain"
)

const publishTimeout = 5 * time.Second

// Publisher is the board's outbox. Emit never blocks; Run drains the outbox
// to whichever broker is currently attached.
type Publisher struct {
	display string
	outbox  chan domain.Outbound
	lg      *logger.Logger

	mu     sync.RWMutex
	broker Broker
}

func NewPublisher(display string, size int, lg *logger.Logger) *Publisher {
	if size <= 0 {
		size = 1
	}
	return &Publisher{display: display, outbox: make(chan domain.Outbound, size), lg: lg}
}

// Emit queues ev, dropping it when the outbox is full.
func (p *Publisher) Emit(ev domain.Outbound) {
	select {
	case p.outbox <- ev:
	default:
		p.lg.Warn("outbound_dropped", map[string]any{"event": ev.Event, "order_id": ev.ID, "reason": "outbox full"})
	}
}

func (p *Publisher) attach(b Broker) {
	p.mu.Lock()
	p.broker = b
	p.mu.Unlock()
}

func (p *Publisher) current() Broker {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.broker
}

// Run publishes queued events until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.outbox:
			p.publish(ctx, ev)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, ev domain.Outbound) {
	fields := map[string]any{"event": ev.Event, "order_id": ev.ID, "status": ev.Status}
	b := p.current()
	if b == nil {
		p.lg.Warn("outbound_dropped", map[string]any{"event": ev.Event, "order_id": ev.ID, "reason": "not connected"})
		return
	}
	body, err := sonic.Marshal(ev.Message())
	if err != nil {
		p.lg.Error("outbound_encode_failed", err, fields)
		return
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         ev.Event,
		Timestamp:    ev.At.UTC(),
		AppId:        "kitchen-display",
		Headers:      amqp.Table{"display": p.display},
		Body:         body,
	}

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := b.Publish(pctx, rabbitmq.CommandsExchange, RoutingKey(ev.Event), msg); err != nil {
		p.lg.Error("outbound_publish_failed", err, fields)
		return
	}
	p.lg.Debug("outbound_published", fields)
}

// RoutingKey is the key an outbound event is published under.
func RoutingKey(event string) string { return "display." + event }
