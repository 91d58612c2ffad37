package slot

import (
	"fmt"
	"time"
)

// WallTime is a local time of day with minute precision.
type WallTime struct {
	H int
	M int
}

func NewWallTime(h, m int) WallTime {
	return WallTime{H: h, M: m}
}

func (c WallTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.H, c.M)
}

// Offset is the distance from midnight.
func (c WallTime) Offset() time.Duration {
	return time.Duration(c.H)*time.Hour + time.Duration(c.M)*time.Minute
}

func (c WallTime) Before(o WallTime) bool {
	return c.Offset() < o.Offset()
}

// Window is an inclusive start and exclusive end wall-clock window.
type Window struct {
	Start WallTime
	End   WallTime
}

func (w Window) Contains(c WallTime) bool {
	return !c.Before(w.Start) && c.Before(w.End)
}

// Configuration describes business hours for one day of one service.
type Configuration struct {
	Open           WallTime
	Close          WallTime
	SlotDuration   time.Duration
	BufferDuration time.Duration
	Exclusion      *Window
}

func (c Configuration) step() time.Duration {
	return c.SlotDuration + c.BufferDuration
}
