// Navigation decision logic: IR sensors override camera guidance
package rover

import (
	"time"

	"roverd/internal/telemetry"
)

// Decision is one navigation choice for a control tick.
type Decision struct {
	Action    string
	Reason    string
	Direction string // movement applied to the tracker; empty for stop
	Duration  time.Duration
}

// Maneuver durations, calibrated for the chassis.
const (
	forwardDuration  = 2 * time.Second
	turnDuration     = 500 * time.Millisecond
	backwardDuration = time.Second
	spinDuration     = 800 * time.Millisecond
)

// Navigator combines IR flags and camera guidance into a decision.
type Navigator struct {
	// IRPriority gives the IR array veto power over camera guidance.
	IRPriority bool
}

// Decide applies the rule table: an IR hit in front stops immediately
// (when IR has priority), otherwise the camera's recommendation wins as
// long as the matching IR direction is clear; with nothing viable the
// rover spins right to scan for a new path.
func (n Navigator) Decide(obstacles telemetry.Obstacles, guidance Guidance) Decision {
	if n.IRPriority && obstacles.Front {
		return Decision{
			Action: telemetry.ActionStop,
			Reason: "front IR triggered, obstacle too close",
		}
	}

	switch guidance.Direction {
	case telemetry.DirFront:
		if !obstacles.Front {
			return Decision{
				Action:    telemetry.ActionForward,
				Reason:    "path clear ahead",
				Direction: telemetry.ActionForward,
				Duration:  forwardDuration,
			}
		}
	case telemetry.DirLeft:
		if !obstacles.Left {
			return Decision{
				Action:    telemetry.ActionTurnLeft,
				Reason:    "camera suggests left turn",
				Direction: telemetry.ActionTurnLeft,
				Duration:  turnDuration,
			}
		}
	case telemetry.DirRight:
		if !obstacles.Right {
			return Decision{
				Action:    telemetry.ActionTurnRight,
				Reason:    "camera suggests right turn",
				Direction: telemetry.ActionTurnRight,
				Duration:  turnDuration,
			}
		}
	case telemetry.DirBack:
		if !obstacles.Back {
			return Decision{
				Action:    telemetry.ActionBackward,
				Reason:    "reversing to find alternate path",
				Direction: telemetry.ActionBackward,
				Duration:  backwardDuration,
			}
		}
	}

	return Decision{
		Action:    telemetry.ActionSpinRight,
		Reason:    "no clear path, rotating to scan area",
		Direction: telemetry.ActionSpinRight,
		Duration:  spinDuration,
	}
}
