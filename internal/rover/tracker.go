// Dead-reckoning position tracker
package rover

import (
	"math"
	"sync"
	"time"

	"roverd/internal/telemetry"
)

// metersPerSecond is the calibrated ground speed at cruise duty.
const metersPerSecond = 0.15

// Tracker dead-reckons the rover pose from executed actions. It drifts
// over time; there is no external position reference on this platform.
type Tracker struct {
	mu      sync.Mutex
	x, y    float64
	heading float64 // degrees
}

// NewTracker starts at the origin facing heading 0.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Apply advances the pose for an executed action.
func (t *Tracker) Apply(action string, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	distance := metersPerSecond * duration.Seconds()
	rad := t.heading * math.Pi / 180

	switch action {
	case telemetry.ActionForward:
		t.x += distance * math.Cos(rad)
		t.y += distance * math.Sin(rad)
	case telemetry.ActionBackward:
		t.x -= distance * math.Cos(rad)
		t.y -= distance * math.Sin(rad)
	case telemetry.ActionTurnLeft:
		t.heading = math.Mod(t.heading+45, 360)
	case telemetry.ActionTurnRight:
		t.heading = math.Mod(t.heading-45+360, 360)
	case telemetry.ActionSpinLeft:
		t.heading = math.Mod(t.heading+90, 360)
	case telemetry.ActionSpinRight:
		t.heading = math.Mod(t.heading-90+360, 360)
	}
}

// Position returns the pose rounded the way the data log records it.
func (t *Tracker) Position() telemetry.Position {
	t.mu.Lock()
	defer t.mu.Unlock()
	return telemetry.Position{
		X:       math.Round(t.x*100) / 100,
		Y:       math.Round(t.y*100) / 100,
		Heading: math.Round(t.heading*10) / 10,
	}
}
