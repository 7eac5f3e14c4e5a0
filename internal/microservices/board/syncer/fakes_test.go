package syncer

import (
	"context"
	"errors"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus/hooks/test"

	"kitchen-display/internal/common/logger"
	"kitchen-display/internal/domain"
)

type fakeBoard struct {
	mu      sync.Mutex
	news    []domain.NewOrder
	patches []domain.OrderPatch
	removed []domain.OrderRemoved
	reloads [][]domain.NewOrder
	err     error
}

func (b *fakeBoard) NewOrder(_ context.Context, n domain.NewOrder) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.news = append(b.news, n)
	return b.err
}

func (b *fakeBoard) UpdateOrder(_ context.Context, p domain.OrderPatch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.patches = append(b.patches, p)
	return b.err
}

func (b *fakeBoard) RemoveOrder(_ context.Context, r domain.OrderRemoved) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removed = append(b.removed, r)
	return b.err
}

func (b *fakeBoard) Reload(_ context.Context, rows []domain.NewOrder) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reloads = append(b.reloads, rows)
	return nil
}

func (b *fakeBoard) reloadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.reloads)
}

// fakeSource fails the first failFirst loads, then returns rows and err.
type fakeSource struct {
	rows      []domain.NewOrder
	err       error
	failFirst int

	mu    sync.Mutex
	calls int
}

var errSourceDown = errors.New("source down")

func (s *fakeSource) ListActive(context.Context) ([]domain.NewOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failFirst {
		return nil, errSourceDown
	}
	return s.rows, s.err
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeAck struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue bool
}

func (a *fakeAck) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *fakeAck) Reject(_ uint64, requeue bool) error { return a.Nack(0, false, requeue) }

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeBroker struct {
	mu        sync.Mutex
	msgs      chan amqp.Delivery
	closed    chan *amqp.Error
	queue     string
	keys      []string
	published []published
	closes    int
	publishFn func() error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{msgs: make(chan amqp.Delivery, 8), closed: make(chan *amqp.Error, 1)}
}

func (b *fakeBroker) DeclareTopology(queue string, keys []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue, b.keys = queue, keys
	return nil
}

func (b *fakeBroker) Consume(string, string) (<-chan amqp.Delivery, error) { return b.msgs, nil }

func (b *fakeBroker) Publish(_ context.Context, exchange, key string, msg amqp.Publishing) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishFn != nil {
		if err := b.publishFn(); err != nil {
			return err
		}
	}
	b.published = append(b.published, published{exchange, key, msg})
	return nil
}

func (b *fakeBroker) NotifyClose() <-chan *amqp.Error { return b.closed }

func (b *fakeBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closes++
}

func (b *fakeBroker) publishedCopy() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]published(nil), b.published...)
}

func newTestLogger() (*logger.Logger, *test.Hook) {
	l, hook := test.NewNullLogger()
	return logger.NewWithLogger("syncer-test", l), hook
}
