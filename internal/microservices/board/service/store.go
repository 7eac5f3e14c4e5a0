package service

import (
	"slices"
	"time"

	"kitchen-display/internal/domain"
)

// Store holds the orders in insertion order. Indices are what the window
// and the selection refer to.
type Store struct {
	orders  []*domain.Order
	timings Timings
}

func NewStore(t Timings) *Store {
	return &Store{timings: t}
}

func (s *Store) Len() int { return len(s.orders) }

func (s *Store) At(i int) *domain.Order {
	if i < 0 || i >= len(s.orders) {
		return nil
	}
	return s.orders[i]
}

// Index returns the position of id, or -1.
func (s *Store) Index(id domain.OrderID) int {
	return slices.IndexFunc(s.orders, func(o *domain.Order) bool { return o.ID == id })
}

func (s *Store) Get(id domain.OrderID) *domain.Order {
	return s.At(s.Index(id))
}

// Orders exposes the backing slice for read-only iteration.
func (s *Store) Orders() []*domain.Order { return s.orders }

// Append adds n at the end. A known id is merged into the existing order
// instead and appended is false.
func (s *Store) Append(n domain.NewOrder, now time.Time) (o *domain.Order, appended bool) {
	if existing := s.Get(n.ID); existing != nil {
		o, _, _ = s.MergeUpdate(patchFromNew(n), now)
		return o, false
	}
	o = s.build(n, now)
	s.orders = append(s.orders, o)
	return o, true
}

func (s *Store) build(n domain.NewOrder, now time.Time) *domain.Order {
	dur := s.timings.DefaultDuration
	if n.InitialDuration != nil && *n.InitialDuration > 0 {
		dur = *n.InitialDuration
	}
	status := domain.StatusNew
	if st, ok := domain.ParseStatus(n.Status); ok {
		status = st
	}
	o := &domain.Order{
		ID:              n.ID,
		Table:           string(n.Table),
		Status:          status,
		InitialDuration: dur,
		StartTime:       now.Add(-time.Duration(elapsedFrom(n.ElapsedSeconds, n.TimeRemaining, dur)) * time.Second),
		StartedAtLabel:  n.Label(),
		// already overdue at the source; nothing to report back
		OverdueSent: status == domain.StatusOverdue,
	}
	o.Recompute(now)
	return o
}

// MergeUpdate applies the non-nil fields of p to the order with the same
// id. It returns the names of fields that were present but unusable, and
// ok=false if the id is unknown.
func (s *Store) MergeUpdate(p domain.OrderPatch, now time.Time) (o *domain.Order, rejected []string, ok bool) {
	o = s.Get(p.ID)
	if o == nil {
		return nil, nil, false
	}
	rejected = append(rejected, p.Invalid...)
	if p.Table != nil {
		o.Table = string(*p.Table)
	}
	if p.Status != nil {
		if st, valid := domain.ParseStatus(*p.Status); valid {
			o.Status = st
		} else {
			rejected = append(rejected, "status")
		}
	}
	restarted := false
	if p.InitialDuration != nil {
		if *p.InitialDuration > 0 {
			o.InitialDuration = *p.InitialDuration
			restarted = true
		} else {
			rejected = append(rejected, "initialDuration")
		}
	}
	switch {
	case p.StartTime != nil:
		o.StartTime = time.UnixMilli(*p.StartTime)
		restarted = true
	case p.ElapsedSeconds != nil || p.TimeRemaining != nil:
		elapsed := elapsedFrom(p.ElapsedSeconds, p.TimeRemaining, o.InitialDuration)
		o.StartTime = now.Add(-time.Duration(elapsed) * time.Second)
		restarted = true
	}
	switch {
	case p.StartedAtLabel != nil:
		o.StartedAtLabel = *p.StartedAtLabel
	case p.StartedAt != nil:
		o.StartedAtLabel = *p.StartedAt
	}

	if o.Status == domain.StatusOverdue {
		o.OverdueSent = true
	} else if restarted {
		o.OverdueSent = false
	}
	o.Recompute(now)
	return o, rejected, true
}

// Remove deletes id and returns the index it occupied.
func (s *Store) Remove(id domain.OrderID) (int, bool) {
	idx := s.Index(id)
	if idx < 0 {
		return -1, false
	}
	s.orders = slices.Delete(s.orders, idx, idx+1)
	return idx, true
}

// Tick evaluates every order at now and returns the ones that just became
// OVERDUE.
func (s *Store) Tick(now time.Time) []*domain.Order {
	var overdue []*domain.Order
	for _, o := range s.orders {
		if evaluate(o, now, s.timings) {
			overdue = append(overdue, o)
		}
	}
	return overdue
}

// Replace swaps the contents for a bulk load. Rows without an id are
// skipped and counted.
func (s *Store) Replace(rows []domain.NewOrder, now time.Time) (skipped int) {
	s.orders = make([]*domain.Order, 0, len(rows))
	for _, n := range rows {
		if n.Validate() != nil {
			skipped++
			continue
		}
		s.Append(n, now)
	}
	return skipped
}

func elapsedFrom(elapsed *int, remaining *domain.Countdown, duration int) int {
	switch {
	case elapsed != nil:
		return max(*elapsed, 0)
	case remaining != nil:
		return max(duration-int(*remaining), 0)
	}
	return 0
}

func patchFromNew(n domain.NewOrder) domain.OrderPatch {
	p := domain.OrderPatch{
		ID:              n.ID,
		Table:           &n.Table,
		InitialDuration: n.InitialDuration,
		ElapsedSeconds:  n.ElapsedSeconds,
		TimeRemaining:   n.TimeRemaining,
	}
	if n.Status != "" {
		p.Status = &n.Status
	}
	if label := n.Label(); label != "" {
		p.StartedAtLabel = &label
	}
	return p
}
