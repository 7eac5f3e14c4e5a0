package syncer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"kitchen-display/internal/common/logger"
	"kitchen-display/internal/domain"
	"kitchen-display/internal/microservices/board/service"
)

type Consumer struct {
	board  Board
	tracer trace.Tracer
	lg     *logger.Logger
}

func NewConsumer(board Board, tracer trace.Tracer, lg *logger.Logger) *Consumer {
	return &Consumer{board: board, tracer: tracer, lg: lg}
}

// EventKind is the AMQP type property, or the last segment of the routing
// key.
func EventKind(d amqp.Delivery) string {
	if d.Type != "" {
		return d.Type
	}
	key := d.RoutingKey
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}
	return key
}

// Deliver handles d and settles it with the broker.
func (c *Consumer) Deliver(ctx context.Context, d amqp.Delivery) {
	err := c.Handle(ctx, d)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrRequeue):
		c.lg.Warn("inbound_requeued", map[string]any{"routing_key": d.RoutingKey, "error": err.Error()})
		_ = d.Nack(false, true)
	default:
		c.lg.Error("inbound_dead_lettered", err, map[string]any{"routing_key": d.RoutingKey, "message_id": d.MessageId})
		_ = d.Nack(false, false)
	}
}

// Handle decodes d and applies it to the board. Errors wrap ErrDLQ for
// messages that can never succeed and ErrRequeue for transient failures.
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) (err error) {
	kind := EventKind(d)
	ctx, span := c.tracer.Start(ctx, "kds.inbound."+kind, trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.rabbitmq.routing_key", d.RoutingKey),
			attribute.String("messaging.message.id", d.MessageId),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	id, apply, err := c.decode(kind, d.Body)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("kds.order_id", string(id)))

	if err := apply(ctx); err != nil {
		if errors.Is(err, service.ErrClosed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrRequeue, err)
		}
		return fmt.Errorf("%w: %s %s: %v", ErrDLQ, kind, id, err)
	}
	c.lg.Debug("inbound_applied", map[string]any{"event": kind, "order_id": id})
	return nil
}

func (c *Consumer) decode(kind string, body []byte) (domain.OrderID, func(context.Context) error, error) {
	switch kind {
	case domain.EventNewOrder:
		n, err := decodeRecord[domain.NewOrder](body)
		if err != nil {
			return "", nil, err
		}
		return n.ID, func(ctx context.Context) error { return c.board.NewOrder(ctx, n) }, nil
	case domain.EventOrderUpdated:
		p, err := decodePatch(body)
		if err != nil {
			return "", nil, err
		}
		return p.ID, func(ctx context.Context) error { return c.board.UpdateOrder(ctx, p) }, nil
	case domain.EventOrderRemoved:
		r, err := decodeRecord[domain.OrderRemoved](body)
		if err != nil {
			return "", nil, err
		}
		return r.ID, func(ctx context.Context) error { return c.board.RemoveOrder(ctx, r) }, nil
	}
	return "", nil, fmt.Errorf("%w: unknown event %q", ErrDLQ, kind)
}

func decodeRecord[T interface{ Validate() error }](body []byte) (T, error) {
	var v T
	if err := sonic.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("%w: decode: %v", ErrDLQ, err)
	}
	if err := v.Validate(); err != nil {
		return v, fmt.Errorf("%w: %v", ErrDLQ, err)
	}
	return v, nil
}

// decodePatch decodes an order_updated record field by field. A field of the
// wrong type is recorded in Invalid and the rest of the update still applies;
// only an unreadable body or id sends the record to the dead-letter queue.
func decodePatch(body []byte) (domain.OrderPatch, error) {
	var fields map[string]sonic.NoCopyRawMessage
	if err := sonic.Unmarshal(body, &fields); err != nil {
		return domain.OrderPatch{}, fmt.Errorf("%w: decode: %v", ErrDLQ, err)
	}

	var p domain.OrderPatch
	if raw, ok := fields["id"]; ok {
		if err := sonic.Unmarshal(raw, &p.ID); err != nil {
			return p, fmt.Errorf("%w: decode id: %v", ErrDLQ, err)
		}
	}
	setters := map[string]func([]byte) error{
		"table":           patchField(&p.Table),
		"status":          patchField(&p.Status),
		"initialDuration": patchField(&p.InitialDuration),
		"startTime":       patchField(&p.StartTime),
		"elapsedSeconds":  patchField(&p.ElapsedSeconds),
		"timeRemaining":   patchField(&p.TimeRemaining),
		"startedAtLabel":  patchField(&p.StartedAtLabel),
		"startedAt":       patchField(&p.StartedAt),
	}
	for key, raw := range fields {
		set, known := setters[key]
		if !known {
			continue
		}
		if err := set(raw); err != nil {
			p.Invalid = append(p.Invalid, key)
		}
	}
	slices.Sort(p.Invalid)

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("%w: %v", ErrDLQ, err)
	}
	return p, nil
}

// patchField decodes into a fresh value and only stores it on success.
func patchField[T any](dst **T) func([]byte) error {
	return func(raw []byte) error {
		var v *T
		if err := sonic.Unmarshal(raw, &v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
}
