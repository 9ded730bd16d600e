package rover

import (
	"testing"

	"roverd/internal/telemetry"
)

func TestNavigator_FrontIRStops(t *testing.T) {
	nav := Navigator{IRPriority: true}
	guidance := Guidance{Direction: telemetry.DirFront, ShouldMove: true}

	d := nav.Decide(telemetry.Obstacles{Front: true}, guidance)
	if d.Action != telemetry.ActionStop {
		t.Fatalf("expected stop on front IR, got %q", d.Action)
	}
	if d.Duration != 0 {
		t.Errorf("stop should have zero duration, got %v", d.Duration)
	}
}

func TestNavigator_IRPriorityDisabled(t *testing.T) {
	nav := Navigator{IRPriority: false}
	guidance := Guidance{Direction: telemetry.DirLeft, ShouldMove: true}

	// Front IR set, but priority off and guidance says left with left clear.
	d := nav.Decide(telemetry.Obstacles{Front: true}, guidance)
	if d.Action != telemetry.ActionTurnLeft {
		t.Fatalf("expected turn_left, got %q", d.Action)
	}
}

func TestNavigator_FollowsCameraGuidance(t *testing.T) {
	nav := Navigator{IRPriority: true}
	cases := []struct {
		name      string
		guidance  string
		obstacles telemetry.Obstacles
		want      string
	}{
		{"forward", telemetry.DirFront, telemetry.Obstacles{}, telemetry.ActionForward},
		{"left", telemetry.DirLeft, telemetry.Obstacles{}, telemetry.ActionTurnLeft},
		{"right", telemetry.DirRight, telemetry.Obstacles{}, telemetry.ActionTurnRight},
		{"back", telemetry.DirBack, telemetry.Obstacles{}, telemetry.ActionBackward},
		{"left blocked by IR", telemetry.DirLeft, telemetry.Obstacles{Left: true}, telemetry.ActionSpinRight},
		{"right blocked by IR", telemetry.DirRight, telemetry.Obstacles{Right: true}, telemetry.ActionSpinRight},
		{"no guidance", telemetry.ActionStop, telemetry.Obstacles{}, telemetry.ActionSpinRight},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := nav.Decide(tc.obstacles, Guidance{Direction: tc.guidance, ShouldMove: true})
			if d.Action != tc.want {
				t.Errorf("got %q, want %q", d.Action, tc.want)
			}
		})
	}
}

func TestNavigator_MovingDecisionsCarryDurations(t *testing.T) {
	nav := Navigator{IRPriority: true}
	d := nav.Decide(telemetry.Obstacles{}, Guidance{Direction: telemetry.DirFront, ShouldMove: true})
	if d.Duration != forwardDuration {
		t.Errorf("forward duration = %v, want %v", d.Duration, forwardDuration)
	}
	if d.Direction != telemetry.ActionForward {
		t.Errorf("forward should update the tracker, got direction %q", d.Direction)
	}
}
