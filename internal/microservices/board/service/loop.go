package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"kitchen-display/internal/common/clock"
	"kitchen-display/internal/common/logger"
	"kitchen-display/internal/domain"
)

var (
	ErrClosed         = errors.New("board loop is not running")
	ErrAlreadyRunning = errors.New("board loop already running")
)

// Loop is the serial context of a board. Ticks, operator commands, inbound
// sync events and removal timers are all executed one at a time on the
// goroutine running Run, and every change is published as a fresh Board.
type Loop struct {
	ctrl     *Controller
	clock    clock.Clock
	opts     Options
	lg       *logger.Logger
	events   chan func()
	done     chan struct{}
	started  atomic.Bool
	latest   atomic.Pointer[domain.Board]
	subsMu   sync.Mutex
	subs     map[chan *domain.Board]struct{}
	stopOnce sync.Once
}

func NewLoop(opts Options, clk clock.Clock, outbox Outbox, lg *logger.Logger) *Loop {
	l := &Loop{
		clock:  clk,
		opts:   opts,
		lg:     lg,
		events: make(chan func()),
		done:   make(chan struct{}),
		subs:   make(map[chan *domain.Board]struct{}),
	}
	l.ctrl = NewController(opts, clk, outbox, l.post, lg)
	l.latest.Store(l.ctrl.Board())
	return l
}

// Run executes the loop until ctx is done. It may be called once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	ticker := l.clock.NewTicker(l.opts.TickInterval)
	defer l.shutdown(ticker)

	l.lg.Info("board_loop_started", map[string]any{"display": l.opts.Display, "tick": l.opts.TickInterval.String()})
	l.ctrl.Tick()
	l.publish()
	for {
		select {
		case <-ctx.Done():
			l.lg.Info("board_loop_stopped", map[string]any{"display": l.opts.Display})
			return nil
		case <-ticker.C:
			l.ctrl.Tick()
		case fn := <-l.events:
			fn()
		}
		l.publish()
	}
}

func (l *Loop) shutdown(ticker *clock.Ticker) {
	ticker.Stop()
	l.ctrl.Stop()
	l.stopOnce.Do(func() { close(l.done) })

	l.subsMu.Lock()
	defer l.subsMu.Unlock()
	for ch := range l.subs {
		delete(l.subs, ch)
		close(ch)
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

// post delivers a timer callback to the loop. It gives up once the loop
// has stopped.
func (l *Loop) post(fn func()) {
	select {
	case l.events <- fn:
	case <-l.done:
	}
}

// Submit runs fn on the loop and waits for its result.
func (l *Loop) Submit(ctx context.Context, fn func(*Controller) error) error {
	errc := make(chan error, 1)
	task := func() { errc <- fn(l.ctrl) }
	select {
	case l.events <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case err := <-errc:
			return err
		default:
			return ErrClosed
		}
	}
}

func (l *Loop) Command(ctx context.Context, cmd domain.Command) error {
	return l.Submit(ctx, func(c *Controller) error { return c.Execute(cmd) })
}

func (l *Loop) NewOrder(ctx context.Context, n domain.NewOrder) error {
	return l.Submit(ctx, func(c *Controller) error { return c.ApplyNewOrder(n) })
}

func (l *Loop) UpdateOrder(ctx context.Context, p domain.OrderPatch) error {
	return l.Submit(ctx, func(c *Controller) error { return c.ApplyUpdate(p) })
}

func (l *Loop) RemoveOrder(ctx context.Context, r domain.OrderRemoved) error {
	return l.Submit(ctx, func(c *Controller) error { return c.ApplyRemoved(r) })
}

func (l *Loop) Reload(ctx context.Context, rows []domain.NewOrder) error {
	return l.Submit(ctx, func(c *Controller) error {
		c.Reload(rows)
		return nil
	})
}

// Latest returns the most recently published board.
func (l *Loop) Latest() *domain.Board { return l.latest.Load() }

// Subscribe returns a channel that always holds the newest board; stale
// boards are dropped for slow readers. The channel is closed by cancel or
// when the loop stops.
func (l *Loop) Subscribe() (<-chan *domain.Board, func()) {
	ch := make(chan *domain.Board, 1)
	ch <- l.latest.Load()

	l.subsMu.Lock()
	select {
	case <-l.done:
		close(ch)
		l.subsMu.Unlock()
		return ch, func() {}
	default:
	}
	l.subs[ch] = struct{}{}
	l.subsMu.Unlock()

	cancel := func() {
		l.subsMu.Lock()
		defer l.subsMu.Unlock()
		if _, ok := l.subs[ch]; ok {
			delete(l.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

func (l *Loop) publish() {
	b := l.ctrl.Board()
	l.latest.Store(b)

	l.subsMu.Lock()
	defer l.subsMu.Unlock()
	for ch := range l.subs {
		select {
		case ch <- b:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- b:
		default:
		}
	}
}
