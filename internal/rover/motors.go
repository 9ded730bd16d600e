// Motor controller for the L298N dual-channel drive
package rover

import (
	"context"
	"sync"
	"time"

	"roverd/internal/telemetry"
)

// Drive is the motor hardware: two channels (left and right wheel
// pairs), each with a direction and a PWM duty cycle 0-100.
type Drive interface {
	Set(side string, forward bool, duty int) error
	Stop() error
}

// Drive channel names.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// turnSpeedReduction slows the rover while turning.
const turnSpeedReduction = 0.6

// MotorController translates rover actions into drive commands. Moves
// with a duration block until the duration elapses (or the context is
// canceled), then stop the drive.
type MotorController struct {
	drive        Drive
	defaultSpeed int

	mu            sync.Mutex
	currentAction string
	currentSpeed  int
}

// NewMotorController creates a controller with the configured cruise
// speed (PWM duty 0-100).
func NewMotorController(drive Drive, defaultSpeed int) *MotorController {
	return &MotorController{
		drive:         drive,
		defaultSpeed:  clampDuty(defaultSpeed),
		currentAction: telemetry.ActionStop,
	}
}

func clampDuty(d int) int {
	if d < 0 {
		return 0
	}
	if d > 100 {
		return 100
	}
	return d
}

// Execute performs one action for the given duration. A zero duration
// means the action latches until the next command (stop is always
// immediate).
func (m *MotorController) Execute(ctx context.Context, action string, duration time.Duration) error {
	if err := m.engage(action); err != nil {
		return err
	}
	if action == telemetry.ActionStop || duration <= 0 {
		return nil
	}

	select {
	case <-time.After(duration):
	case <-ctx.Done():
	}
	return m.stop()
}

// engage starts the drive pattern for an action.
func (m *MotorController) engage(action string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	speed := m.defaultSpeed
	turn := int(float64(speed) * turnSpeedReduction)
	spin := int(float64(speed) * 0.7)

	var err error
	switch action {
	case telemetry.ActionForward:
		err = m.set(true, speed, true, speed)
	case telemetry.ActionBackward:
		err = m.set(false, speed, false, speed)
	case telemetry.ActionTurnLeft:
		// Inner (left) wheels slower for a gradual turn.
		err = m.set(true, int(float64(turn)*0.3), true, turn)
	case telemetry.ActionTurnRight:
		err = m.set(true, turn, true, int(float64(turn)*0.3))
	case telemetry.ActionSpinLeft:
		err = m.set(false, spin, true, spin)
	case telemetry.ActionSpinRight:
		err = m.set(true, spin, false, spin)
	default: // stop and anything unknown
		action = telemetry.ActionStop
		speed = 0
		err = m.drive.Stop()
	}
	if err != nil {
		return err
	}

	m.currentAction = action
	m.currentSpeed = speed
	return nil
}

func (m *MotorController) set(leftFwd bool, leftDuty int, rightFwd bool, rightDuty int) error {
	if err := m.drive.Set(SideLeft, leftFwd, clampDuty(leftDuty)); err != nil {
		return err
	}
	return m.drive.Set(SideRight, rightFwd, clampDuty(rightDuty))
}

func (m *MotorController) stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentAction = telemetry.ActionStop
	m.currentSpeed = 0
	return m.drive.Stop()
}

// Stop halts both channels.
func (m *MotorController) Stop() error { return m.stop() }

// Current returns the action and speed the drive is executing.
func (m *MotorController) Current() (string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentAction, m.currentSpeed
}

// NoopDrive is a drive with no hardware attached: commands are accepted
// and discarded. Used by simulation and replay.
type NoopDrive struct{}

func (NoopDrive) Set(side string, forward bool, duty int) error { return nil }
func (NoopDrive) Stop() error                                   { return nil }
