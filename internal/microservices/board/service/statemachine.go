package service

import (
	"time"

	"kitchen-display/internal/domain"
)

// evaluate applies one tick to o and reports whether o has just entered
// OVERDUE for the first time in its current countdown. READY orders are
// left untouched.
func evaluate(o *domain.Order, now time.Time, t Timings) bool {
	if o.Status == domain.StatusReady {
		return false
	}
	o.Recompute(now)
	if o.TimeRemaining <= 0 {
		o.Status = domain.StatusOverdue
		if o.OverdueSent {
			return false
		}
		o.OverdueSent = true
		return true
	}
	if o.Status.InProgress() && o.TimeRemaining <= t.AlmostDoneThreshold {
		o.Status = domain.StatusAlmostDone
	}
	return false
}

func markReady(o *domain.Order) {
	o.Status = domain.StatusReady
}

// quickReduce is the double-activation shortcut: a short ALMOST_DONE
// countdown instead of completion.
func quickReduce(o *domain.Order, now time.Time, t Timings) {
	o.Status = domain.StatusAlmostDone
	o.Restart(now, t.QuickReduceDuration)
}

func resetTimer(o *domain.Order, now time.Time, t Timings) {
	o.Status = domain.StatusCooking
	o.Restart(now, t.ResetDuration)
}
