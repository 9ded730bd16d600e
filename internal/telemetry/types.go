// Rover data log rows with greptime tags
package telemetry

import (
	"os"
	"time"
)

// Position is the rover's dead-reckoned pose: meters from the start
// point, heading in degrees.
type Position struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// Obstacles holds the per-direction obstacle flags from the IR array.
type Obstacles struct {
	Front bool `json:"front"`
	Back  bool `json:"back"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// Any reports whether any direction is blocked.
func (o Obstacles) Any() bool {
	return o.Front || o.Back || o.Left || o.Right
}

// Blocked lists the blocked directions, in priority order.
func (o Obstacles) Blocked() []string {
	var blocked []string
	if o.Front {
		blocked = append(blocked, DirFront)
	}
	if o.Left {
		blocked = append(blocked, DirLeft)
	}
	if o.Right {
		blocked = append(blocked, DirRight)
	}
	if o.Back {
		blocked = append(blocked, DirBack)
	}
	return blocked
}

// LogEntry is one record of rover_data_log.json: a snapshot of pose,
// environment readings, and the action taken on that control tick.
type LogEntry struct {
	RoverID     string    `json:"rover_id"` // TAG
	Position    Position  `json:"position"` // FIELDS
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	SoilPH      float64   `json:"soil_ph"`
	SoilVoltage float64   `json:"soil_voltage"`
	Obstacles   Obstacles `json:"obstacles"`
	Action      string    `json:"action"`
	Reason      string    `json:"reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"` // TIME INDEX
}

// SyncRow records one attempt of the remote log mirror loop.
type SyncRow struct {
	SessionID string        `json:"session_id"` // TAG
	Attempt   int           `json:"attempt"`
	Source    string        `json:"source"`
	Dest      string        `json:"dest"`
	OK        bool          `json:"ok"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	Timestamp time.Time     `json:"ts"` // TIME INDEX
}

// LogTableName holds the table name used when writing log entries to
// GreptimeDB. It defaults to "rover_log" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var LogTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "rover_log"
}()

func (LogEntry) TableName() string {
	return LogTableName
}

// SyncTableName is the GreptimeDB table for sync attempt rows,
// overridable via SYNC_TABLE.
var SyncTableName = func() string {
	if env := os.Getenv("SYNC_TABLE"); env != "" {
		return env
	}
	return "rover_sync"
}()

func (SyncRow) TableName() string {
	return SyncTableName
}

// Rover actions as logged in LogEntry.Action.
const (
	ActionForward   = "forward"
	ActionBackward  = "backward"
	ActionTurnLeft  = "turn_left"
	ActionTurnRight = "turn_right"
	ActionSpinLeft  = "spin_left"
	ActionSpinRight = "spin_right"
	ActionStop      = "stop"
	ActionStudy     = "STUDY_LOCATION"
)

// Directions used by sensors, cameras, and navigation.
const (
	DirFront = "front"
	DirBack  = "back"
	DirLeft  = "left"
	DirRight = "right"
)
