package service

import (
	"kitchen-display/internal/domain"
)

// Board renders the current state. The result shares nothing with the
// controller and may be handed to other goroutines.
func (c *Controller) Board() *domain.Board {
	total := c.store.Len()
	lo, hi := c.window.Bounds(total)
	b := &domain.Board{
		Display:       c.display,
		Slots:         make([]*domain.OrderCard, c.window.Size),
		Queue:         make([]domain.OrderCard, 0, total),
		SelectedIndex: c.window.Selected,
		WindowStart:   c.window.Start,
		WindowSize:    c.window.Size,
		Total:         total,
		GeneratedAt:   c.clock.Now(),
	}
	for i, o := range c.store.Orders() {
		card := cardOf(o, i)
		card.Selected = i == c.window.Selected
		card.InGrid = i >= lo && i < hi
		b.Queue = append(b.Queue, card)
	}
	for i := lo; i < hi; i++ {
		card := b.Queue[i]
		b.Slots[i-lo] = &card
	}
	return b
}

func cardOf(o *domain.Order, idx int) domain.OrderCard {
	return domain.OrderCard{
		ID:              o.ID,
		Table:           o.Table,
		Status:          o.Status,
		StatusText:      o.Status.Text(),
		TimeRemaining:   o.TimeRemaining,
		TimeDisplay:     o.TimeDisplay(),
		InitialDuration: o.InitialDuration,
		Progress:        o.Progress(),
		StartedAtLabel:  o.StartedAtLabel,
		QueueNumber:     idx + 1,
	}
}
