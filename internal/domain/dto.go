package domain

import (
	"strings"
	"time"
)

// Command is one of the four operator inputs.
type Command string

const (
	CommandNext     Command = "next"
	CommandPrevious Command = "previous"
	CommandActivate Command = "activate"
	CommandReset    Command = "reset"
)

// ParseCommand accepts the command names plus the aliases used by button
// boxes ("done", "resetTimer", "prev").
func ParseCommand(s string) (Command, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "next", "right":
		return CommandNext, true
	case "previous", "prev", "left":
		return CommandPrevious, true
	case "activate", "done", "enter":
		return CommandActivate, true
	case "reset", "resettimer", "reset_timer":
		return CommandReset, true
	}
	return "", false
}

// OrderCard is the rendered form of one order.
type OrderCard struct {
	ID              OrderID `json:"id"`
	Table           string  `json:"table"`
	Status          Status  `json:"status"`
	StatusText      string  `json:"statusText"`
	TimeRemaining   int     `json:"timeRemaining"`
	TimeDisplay     string  `json:"timeDisplay"`
	InitialDuration int     `json:"initialDuration"`
	Progress        float64 `json:"progress"`
	StartedAtLabel  string  `json:"startedAtLabel,omitempty"`
	QueueNumber     int     `json:"queueNumber"`
	Selected        bool    `json:"selected"`
	InGrid          bool    `json:"inGrid"`
}

// Board is the snapshot handed to presentation: the visible grid (nil
// entries are empty slots) and the whole queue in store order.
type Board struct {
	Display       string       `json:"display"`
	Slots         []*OrderCard `json:"slots"`
	Queue         []OrderCard  `json:"queue"`
	SelectedIndex int          `json:"selectedIndex"`
	WindowStart   int          `json:"windowStart"`
	WindowSize    int          `json:"windowSize"`
	Total         int          `json:"total"`
	GeneratedAt   time.Time    `json:"generatedAt"`
}

// Selected returns the selected card, if any.
func (b *Board) Selected() (OrderCard, bool) {
	if b == nil || b.Total == 0 || b.SelectedIndex >= len(b.Queue) {
		return OrderCard{}, false
	}
	return b.Queue[b.SelectedIndex], true
}
