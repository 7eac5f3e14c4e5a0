package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Inbound and outbound event names exchanged with the order source.
const (
	EventNewOrder          = "new_order"
	EventOrderUpdated      = "order_updated"
	EventOrderRemoved      = "order_removed"
	EventUpdateOrderStatus = "update_order_status"
	EventRemoveOrder       = "remove_order"
)

var ErrMissingID = errors.New("order id is missing")

// NewOrder is a new_order record, and also one row of a bulk load.
// ElapsedSeconds or TimeRemaining report time already spent on a resumed
// order; ElapsedSeconds wins when both are present.
type NewOrder struct {
	ID              OrderID    `json:"id"`
	Table           Label      `json:"table"`
	Status          string     `json:"status,omitempty"`
	InitialDuration *int       `json:"initialDuration,omitempty"`
	StartedAtLabel  string     `json:"startedAtLabel,omitempty"`
	StartedAt       string     `json:"startedAt,omitempty"`
	ElapsedSeconds  *int       `json:"elapsedSeconds,omitempty"`
	TimeRemaining   *Countdown `json:"timeRemaining,omitempty"`
}

func (n NewOrder) Validate() error {
	if strings.TrimSpace(string(n.ID)) == "" {
		return ErrMissingID
	}
	return nil
}

// Label returns the started-at label, accepting the older "startedAt" key.
func (n NewOrder) Label() string {
	if n.StartedAtLabel != "" {
		return n.StartedAtLabel
	}
	return n.StartedAt
}

// OrderPatch is an order_updated record: only non-nil fields are applied.
// StartTime is in Unix milliseconds.
type OrderPatch struct {
	ID              OrderID    `json:"id"`
	Table           *Label     `json:"table,omitempty"`
	Status          *string    `json:"status,omitempty"`
	InitialDuration *int       `json:"initialDuration,omitempty"`
	StartTime       *int64     `json:"startTime,omitempty"`
	ElapsedSeconds  *int       `json:"elapsedSeconds,omitempty"`
	TimeRemaining   *Countdown `json:"timeRemaining,omitempty"`
	StartedAtLabel  *string    `json:"startedAtLabel,omitempty"`
	StartedAt       *string    `json:"startedAt,omitempty"`

	// Invalid names the fields that were present but could not be decoded.
	Invalid []string `json:"-"`
}

func (p OrderPatch) Validate() error {
	if strings.TrimSpace(string(p.ID)) == "" {
		return ErrMissingID
	}
	return nil
}

type OrderRemoved struct {
	ID OrderID `json:"id"`
}

func (r OrderRemoved) Validate() error {
	if strings.TrimSpace(string(r.ID)) == "" {
		return ErrMissingID
	}
	return nil
}

// Outbound is a status update or removal produced by the board for the
// order source. InitialDuration is only set when the countdown was reset.
type Outbound struct {
	Event           string
	ID              OrderID
	Status          Status
	InitialDuration *int
	At              time.Time
}

type StatusUpdateMessage struct {
	ID              OrderID `json:"id"`
	Status          Status  `json:"status"`
	InitialDuration *int    `json:"initialDuration,omitempty"`
}

type RemoveOrderMessage struct {
	ID OrderID `json:"id"`
}

// Message returns the wire payload of the event.
func (o Outbound) Message() any {
	if o.Event == EventRemoveOrder {
		return RemoveOrderMessage{ID: o.ID}
	}
	return StatusUpdateMessage{ID: o.ID, Status: o.Status, InitialDuration: o.InitialDuration}
}

// UnmarshalJSON accepts both string and numeric ids.
func (id *OrderID) UnmarshalJSON(b []byte) error {
	s, err := scalarText(b)
	if err != nil {
		return fmt.Errorf("order id: %w", err)
	}
	*id = OrderID(s)
	return nil
}

// Label is a display label that may arrive as a string or a number.
type Label string

func (l *Label) UnmarshalJSON(b []byte) error {
	s, err := scalarText(b)
	if err != nil {
		return fmt.Errorf("label: %w", err)
	}
	*l = Label(s)
	return nil
}

// Countdown is a reported remaining time: integer seconds, "M:SS", or
// "OVERDUE" (zero).
type Countdown int

func (c *Countdown) UnmarshalJSON(b []byte) error {
	s, err := scalarText(b)
	if err != nil {
		return fmt.Errorf("timeRemaining: %w", err)
	}
	if strings.EqualFold(strings.TrimSuffix(s, "!"), "OVERDUE") {
		*c = 0
		return nil
	}
	if secs, ok := ParseClock(s); ok {
		*c = Countdown(secs)
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("timeRemaining: unsupported value %q", s)
	}
	*c = Countdown(n)
	return nil
}

// scalarText returns the text of a JSON string or number literal.
func scalarText(b []byte) (string, error) {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		return strconv.Unquote(raw)
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", raw)
	}
	return raw, nil
}
