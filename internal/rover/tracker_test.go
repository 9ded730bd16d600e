package rover

import (
	"math"
	"testing"
	"time"

	"roverd/internal/telemetry"
)

func TestTracker_ForwardMovesAlongHeading(t *testing.T) {
	tr := NewTracker()
	tr.Apply(telemetry.ActionForward, 2*time.Second)

	pos := tr.Position()
	want := metersPerSecond * 2
	if math.Abs(pos.X-want) > 0.005 {
		t.Errorf("x = %v, want %v", pos.X, want)
	}
	if pos.Y != 0 {
		t.Errorf("y = %v, want 0", pos.Y)
	}
}

func TestTracker_BackwardReverses(t *testing.T) {
	tr := NewTracker()
	tr.Apply(telemetry.ActionForward, 2*time.Second)
	tr.Apply(telemetry.ActionBackward, 2*time.Second)

	pos := tr.Position()
	if pos.X != 0 || pos.Y != 0 {
		t.Errorf("expected return to origin, got (%v, %v)", pos.X, pos.Y)
	}
}

func TestTracker_TurnsAdjustHeading(t *testing.T) {
	tr := NewTracker()

	tr.Apply(telemetry.ActionTurnLeft, turnDuration)
	if h := tr.Position().Heading; h != 45 {
		t.Errorf("heading after left turn = %v, want 45", h)
	}

	tr.Apply(telemetry.ActionSpinLeft, spinDuration)
	if h := tr.Position().Heading; h != 135 {
		t.Errorf("heading after spin left = %v, want 135", h)
	}

	tr.Apply(telemetry.ActionTurnRight, turnDuration)
	tr.Apply(telemetry.ActionSpinRight, spinDuration)
	if h := tr.Position().Heading; h != 0 {
		t.Errorf("heading after reversing turns = %v, want 0", h)
	}
}

func TestTracker_HeadingWraps(t *testing.T) {
	tr := NewTracker()
	tr.Apply(telemetry.ActionTurnRight, turnDuration)
	if h := tr.Position().Heading; h != 315 {
		t.Errorf("heading = %v, want 315", h)
	}
}
