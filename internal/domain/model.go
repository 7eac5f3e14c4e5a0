package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OrderID is assigned by the order source. Integer ids on the wire are
// kept in their decimal form.
type OrderID string

type Status string

const (
	StatusNew        Status = "NEW"
	StatusPreparing  Status = "PREPARING"
	StatusCooking    Status = "COOKING"
	StatusAlmostDone Status = "ALMOST_DONE"
	StatusOverdue    Status = "OVERDUE"
	StatusReady      Status = "READY"
)

// ParseStatus accepts the wire spelling case-insensitively, including the
// display form "ALMOST DONE".
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), " ", "_"))
	switch st {
	case StatusNew, StatusPreparing, StatusCooking, StatusAlmostDone, StatusOverdue, StatusReady:
		return st, true
	}
	return "", false
}

// InProgress reports whether the status is one of the "plenty of time"
// aliases. NEW and PREPARING are treated exactly like COOKING.
func (s Status) InProgress() bool {
	return s == StatusNew || s == StatusPreparing || s == StatusCooking
}

// Text is the label shown on cards and in the queue.
func (s Status) Text() string {
	switch s {
	case StatusAlmostDone:
		return "ALMOST DONE"
	case StatusOverdue:
		return "OVERDUE"
	case StatusReady:
		return "READY"
	default:
		return "COOKING"
	}
}

// Order is one kitchen ticket on the board. TimeRemaining is derived from
// StartTime and InitialDuration and is never taken from input.
type Order struct {
	ID              OrderID
	Table           string
	Status          Status
	StartTime       time.Time
	InitialDuration int // seconds
	TimeRemaining   int // seconds
	StartedAtLabel  string

	// OverdueSent is set once the OVERDUE status update for the current
	// countdown has been emitted.
	OverdueSent bool
}

// Remaining is max(0, InitialDuration - floor(now - StartTime)) in seconds.
func (o *Order) Remaining(now time.Time) int {
	rem := o.InitialDuration - floorSeconds(now.Sub(o.StartTime))
	if rem < 0 {
		return 0
	}
	return rem
}

// Recompute refreshes the derived TimeRemaining.
func (o *Order) Recompute(now time.Time) { o.TimeRemaining = o.Remaining(now) }

// Restart begins a new countdown of the given length at now.
func (o *Order) Restart(now time.Time, seconds int) {
	o.InitialDuration = seconds
	o.StartTime = now
	o.OverdueSent = false
	o.Recompute(now)
}

// Progress is the elapsed fraction of the countdown in [0, 1]. OVERDUE
// orders are always full.
func (o *Order) Progress() float64 {
	if o.Status == StatusOverdue || o.InitialDuration <= 0 {
		return 1
	}
	elapsed := float64(o.InitialDuration-o.TimeRemaining) / float64(o.InitialDuration)
	switch {
	case elapsed < 0:
		return 0
	case elapsed > 1:
		return 1
	}
	return elapsed
}

// TimeDisplay is the countdown text of a card.
func (o *Order) TimeDisplay() string {
	if o.Status == StatusOverdue {
		return "OVERDUE!"
	}
	return FormatSeconds(o.TimeRemaining)
}

func floorSeconds(d time.Duration) int {
	s := int(d / time.Second)
	if d < 0 && d%time.Second != 0 {
		s--
	}
	return s
}

// FormatSeconds renders seconds as M:SS.
func FormatSeconds(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

// ParseClock parses an M:SS countdown back into seconds.
func ParseClock(s string) (int, bool) {
	mins, secs, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, false
	}
	m, err := strconv.Atoi(mins)
	if err != nil || m < 0 {
		return 0, false
	}
	sec, err := strconv.Atoi(secs)
	if err != nil || sec < 0 || sec > 59 {
		return 0, false
	}
	return m*60 + sec, true
}
