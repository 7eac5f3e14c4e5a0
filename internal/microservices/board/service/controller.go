package service

import (
	"errors"
	"fmt"
	"time"

	"kitchen-display/internal/common/clock"
	"kitchen-display/internal/common/logger"
	"kitchen-display/internal/domain"
)

var ErrUnknownCommand = errors.New("unknown command")

// Outbox receives the events the board reports back to the order source.
// Emit must not block.
type Outbox interface {
	Emit(ev domain.Outbound)
}

// Controller owns the store, the window and the pending removals. It is not
// safe for concurrent use: every call, including timer callbacks delivered
// through post, must happen on one serial context.
type Controller struct {
	display string
	store   *Store
	window  Window
	timings Timings
	clock   clock.Clock
	outbox  Outbox
	post    func(func())
	lg      *logger.Logger

	lastActivation time.Time
	pending        map[domain.OrderID]*pendingRemoval
	seq            uint64
}

type pendingRemoval struct {
	seq   uint64
	timer *clock.Timer
}

// NewController builds a controller. post hands a timer callback back to
// the serial context that owns the controller.
func NewController(opts Options, clk clock.Clock, outbox Outbox, post func(func()), lg *logger.Logger) *Controller {
	return &Controller{
		display: opts.Display,
		store:   NewStore(opts.Timings),
		window:  NewWindow(opts.WindowSize),
		timings: opts.Timings,
		clock:   clk,
		outbox:  outbox,
		post:    post,
		lg:      lg,
		pending: make(map[domain.OrderID]*pendingRemoval),
	}
}

func (c *Controller) Store() *Store  { return c.store }
func (c *Controller) Window() Window { return c.window }
func (c *Controller) Selected() *domain.Order {
	return c.store.At(c.window.Selected)
}

// PendingRemoval reports whether a grace-period removal is armed for id.
func (c *Controller) PendingRemoval(id domain.OrderID) bool {
	_, ok := c.pending[id]
	return ok
}

// Execute dispatches an operator command.
func (c *Controller) Execute(cmd domain.Command) error {
	switch cmd {
	case domain.CommandNext:
		c.Next()
	case domain.CommandPrevious:
		c.Previous()
	case domain.CommandActivate:
		c.Activate()
	case domain.CommandReset:
		c.ResetTimer()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	return nil
}

func (c *Controller) Next() {
	total := c.store.Len()
	if total == 0 {
		return
	}
	c.window = c.window.Adjust((c.window.Selected+1)%total, total)
}

func (c *Controller) Previous() {
	total := c.store.Len()
	if total == 0 {
		return
	}
	c.window = c.window.Adjust((c.window.Selected-1+total)%total, total)
}

// Activate marks the selected order READY and arms its removal. A second
// activation inside the quick-reduce window instead puts the order on a
// short ALMOST_DONE countdown and cancels the removal.
func (c *Controller) Activate() {
	o := c.Selected()
	if o == nil {
		return
	}
	now := c.clock.Now()
	delta := now.Sub(c.lastActivation)
	c.lastActivation = now

	if delta < c.timings.QuickReduceWindow {
		c.cancelRemoval(o.ID)
		quickReduce(o, now, c.timings)
		c.lg.Info("order_quick_reduced", map[string]any{"order_id": o.ID, "seconds": o.InitialDuration})
		c.emitStatus(o, true)
		return
	}

	markReady(o)
	c.lg.Info("order_ready", map[string]any{"order_id": o.ID, "table": o.Table})
	c.emitStatus(o, false)
	c.armRemoval(o.ID)
}

// ResetTimer restarts the selected order on a fresh COOKING countdown. A
// READY order is only reset while its removal is still pending.
func (c *Controller) ResetTimer() {
	o := c.Selected()
	if o == nil {
		return
	}
	if o.Status == domain.StatusReady && !c.PendingRemoval(o.ID) {
		return
	}
	c.cancelRemoval(o.ID)
	resetTimer(o, c.clock.Now(), c.timings)
	c.lg.Info("order_timer_reset", map[string]any{"order_id": o.ID, "seconds": o.InitialDuration})
	c.emitStatus(o, true)
}

// Tick re-evaluates every order and reports new OVERDUE transitions.
func (c *Controller) Tick() {
	for _, o := range c.store.Tick(c.clock.Now()) {
		c.lg.Warn("order_overdue", map[string]any{"order_id": o.ID, "table": o.Table})
		c.emitStatus(o, false)
	}
}

// ApplyNewOrder appends an order pushed by the source. A known id is
// treated as an update.
func (c *Controller) ApplyNewOrder(n domain.NewOrder) error {
	if err := n.Validate(); err != nil {
		return err
	}
	o, appended := c.store.Append(n, c.clock.Now())
	if !appended {
		c.lg.Debug("order_duplicate_merged", map[string]any{"order_id": o.ID})
		c.afterRemoteChange(o)
		return nil
	}
	c.window = c.window.Adjust(c.window.Selected, c.store.Len())
	c.lg.Debug("order_appended", map[string]any{"order_id": o.ID, "table": o.Table, "total": c.store.Len()})
	return nil
}

// ApplyUpdate merges a partial update. Unknown ids are ignored.
func (c *Controller) ApplyUpdate(p domain.OrderPatch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	o, rejected, ok := c.store.MergeUpdate(p, c.clock.Now())
	if !ok {
		c.lg.Debug("order_update_unknown", map[string]any{"order_id": p.ID})
		return nil
	}
	if len(rejected) > 0 {
		c.lg.Warn("order_update_fields_rejected", map[string]any{"order_id": p.ID, "fields": rejected})
	}
	c.afterRemoteChange(o)
	return nil
}

// ApplyRemoved drops an order removed at the source. Nothing is emitted.
func (c *Controller) ApplyRemoved(r domain.OrderRemoved) error {
	if err := r.Validate(); err != nil {
		return err
	}
	c.cancelRemoval(r.ID)
	idx, ok := c.store.Remove(r.ID)
	if !ok {
		return nil
	}
	c.reselectAfterRemoval(idx)
	c.lg.Info("order_removed_remotely", map[string]any{"order_id": r.ID})
	return nil
}

// Reload replaces the store with a bulk load. The selection follows the
// previously selected order when it survives.
func (c *Controller) Reload(rows []domain.NewOrder) {
	var selectedID domain.OrderID
	if o := c.Selected(); o != nil {
		selectedID = o.ID
	}
	prev := c.window.Selected

	skipped := c.store.Replace(rows, c.clock.Now())
	for id := range c.pending {
		if o := c.store.Get(id); o == nil || o.Status != domain.StatusReady {
			c.cancelRemoval(id)
		}
	}

	target := prev
	if idx := c.store.Index(selectedID); idx >= 0 {
		target = idx
	}
	c.window = c.window.Adjust(target, c.store.Len())
	c.lg.Info("board_reloaded", map[string]any{"orders": c.store.Len(), "skipped": skipped})
}

// Stop cancels every pending removal.
func (c *Controller) Stop() {
	for id := range c.pending {
		c.cancelRemoval(id)
	}
}

func (c *Controller) afterRemoteChange(o *domain.Order) {
	if o.Status != domain.StatusReady {
		c.cancelRemoval(o.ID)
	}
}

func (c *Controller) armRemoval(id domain.OrderID) {
	c.cancelRemoval(id)
	c.seq++
	p := &pendingRemoval{seq: c.seq}
	c.pending[id] = p
	seq := p.seq
	p.timer = c.clock.AfterFunc(c.timings.GracePeriod, func() {
		c.post(func() { c.expireRemoval(id, seq) })
	})
}

func (c *Controller) cancelRemoval(id domain.OrderID) {
	p, ok := c.pending[id]
	if !ok {
		return
	}
	delete(c.pending, id)
	if p.timer != nil {
		p.timer.Stop()
	}
}

// expireRemoval runs when the grace period of id ends. A stale generation
// or an order no longer READY is left alone.
func (c *Controller) expireRemoval(id domain.OrderID, seq uint64) {
	p, ok := c.pending[id]
	if !ok || p.seq != seq {
		return
	}
	delete(c.pending, id)

	o := c.store.Get(id)
	if o == nil || o.Status != domain.StatusReady {
		return
	}
	idx, _ := c.store.Remove(id)
	c.reselectAfterRemoval(idx)
	c.lg.Info("order_completed", map[string]any{"order_id": id, "remaining": c.store.Len()})
	c.emit(domain.Outbound{Event: domain.EventRemoveOrder, ID: id, At: c.clock.Now()})
}

// reselectAfterRemoval keeps the selection on the same order when one
// before it was removed, then clamps it to the shortened list.
func (c *Controller) reselectAfterRemoval(removed int) {
	sel := c.window.Selected
	if removed < sel {
		sel--
	}
	total := c.store.Len()
	if sel >= total {
		sel = total - 1
	}
	c.window = c.window.Adjust(max(sel, 0), total)
}

func (c *Controller) emitStatus(o *domain.Order, withDuration bool) {
	ev := domain.Outbound{Event: domain.EventUpdateOrderStatus, ID: o.ID, Status: o.Status, At: c.clock.Now()}
	if withDuration {
		d := o.InitialDuration
		ev.InitialDuration = &d
	}
	c.emit(ev)
}

func (c *Controller) emit(ev domain.Outbound) {
	if c.outbox != nil {
		c.outbox.Emit(ev)
	}
}
