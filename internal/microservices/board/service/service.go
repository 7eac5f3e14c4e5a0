package service

import (
	"time"

	"kitchen-display/internal/config"
)

// Timings are the lifecycle constants. Countdown lengths are whole seconds.
type Timings struct {
	DefaultDuration     int
	AlmostDoneThreshold int
	QuickReduceDuration int
	ResetDuration       int
	GracePeriod         time.Duration
	QuickReduceWindow   time.Duration
}

// Options configure one board.
type Options struct {
	Display      string
	WindowSize   int
	TickInterval time.Duration
	Timings      Timings
}

func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Display)
}

// OptionsFromConfig converts the display section of the config file.
func OptionsFromConfig(d config.DisplayConfig) Options {
	return Options{
		Display:      d.Name,
		WindowSize:   d.WindowSize,
		TickInterval: d.TickInterval,
		Timings: Timings{
			DefaultDuration:     int(d.DefaultDuration / time.Second),
			AlmostDoneThreshold: int(d.AlmostDoneThreshold / time.Second),
			QuickReduceDuration: int(d.QuickReduceDuration / time.Second),
			ResetDuration:       int(d.ResetDuration / time.Second),
			GracePeriod:         d.GracePeriod,
			QuickReduceWindow:   d.QuickReduceWindow,
		},
	}
}
