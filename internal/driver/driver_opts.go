package driver

import "time"

type MudDriverOpt func(*MudDriver)

// WithTickLength sets the time between ticks. Lengths that are not positive
// keep the default.
func WithTickLength(tickLength time.Duration) MudDriverOpt {
	return func(d *MudDriver) {
		if tickLength > 0 {
			d.tickLength = tickLength
		}
	}
}
