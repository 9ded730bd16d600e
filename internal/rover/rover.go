// Rover orchestrating sensing, navigation, and data logging ticks
package rover

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"roverd/internal/config"
	"roverd/internal/logging"
	"roverd/internal/telemetry"
)

// LogWriter is an interface to support different output writers.
type LogWriter interface {
	Write(telemetry.LogEntry) error
}

// studyReadings is how many samples a location study averages.
const studyReadings = 3

// Health summarizes the rover's live state for the status server.
type Health struct {
	RoverID   string              `json:"rover_id"`
	Action    string              `json:"action"`
	Speed     int                 `json:"speed"`
	Ticks     int                 `json:"ticks"`
	Position  telemetry.Position  `json:"position"`
	Obstacles telemetry.Obstacles `json:"obstacles"`
	LastStudy time.Time           `json:"last_study,omitempty"`
}

// Rover runs the control loop: study checks, navigation decisions,
// motor commands, position tracking, and data logging.
type Rover struct {
	id       string
	cfg      config.RoverConfig
	sensors  *SensorManager
	cams     CameraArray
	detector *Detector
	motors   *MotorController
	tracker  *Tracker
	nav      Navigator
	writer   LogWriter
	tick     time.Duration

	studyReq chan struct{}
	now      func() time.Time

	mu        sync.Mutex
	lastStudy time.Time
	lastEntry telemetry.LogEntry
	ticks     int
}

// NewRover assembles a rover from its hardware (or simulated hardware)
// and configuration.
func NewRover(name string, cfg config.RoverConfig, sensors *SensorManager, cams CameraArray, drive Drive, writer LogWriter, tick time.Duration) *Rover {
	return &Rover{
		id:       generateRoverID(name),
		cfg:      cfg,
		sensors:  sensors,
		cams:     cams,
		detector: NewDetector(cfg.MinObstacleArea),
		motors:   NewMotorController(drive, cfg.DefaultSpeed),
		tracker:  NewTracker(),
		nav:      Navigator{IRPriority: cfg.IRPriority},
		writer:   writer,
		tick:     tick,
		studyReq: make(chan struct{}, 1),
		now:      time.Now,
	}
}

func generateRoverID(name string) string {
	return fmt.Sprintf("%s-%s", name, uuid.New().String())
}

// ID returns the rover's run identifier.
func (r *Rover) ID() string { return r.id }

// Run starts the control loop and stops when the context is done.
func (r *Rover) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting rover", "rover_id", r.id, "tick_interval", r.tick,
		"auto_study", r.cfg.AutoStudyEnabled, "ir_priority", r.cfg.IRPriority)
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.step(ctx)
		case <-ctx.Done():
			log.Info("stopping rover", "rover_id", r.id, "ticks", r.Ticks(), "position", r.tracker.Position())
			if err := r.motors.Stop(); err != nil {
				log.Error("motor stop failed", "err", err)
			}
			return
		}
	}
}

// step runs one control tick.
func (r *Rover) step(ctx context.Context) {
	log := logging.FromContext(ctx)

	r.mu.Lock()
	r.ticks++
	r.mu.Unlock()

	if r.studyDue() {
		r.study(ctx)
		return
	}

	obstacles := r.sensors.ReadObstacles()
	if obstacles.Any() {
		log.Debug("ir obstacles", "blocked", obstacles.Blocked(), "clear", r.sensors.ClearDirections())
	}
	guidance := r.detector.BestDirection(r.cams)
	decision := r.nav.Decide(obstacles, guidance)

	if err := r.motors.Execute(ctx, decision.Action, decision.Duration); err != nil {
		log.Error("motor command failed", "action", decision.Action, "err", err)
	}
	if decision.Direction != "" {
		r.tracker.Apply(decision.Direction, decision.Duration)
	}

	entry := r.makeEntry(decision.Action, decision.Reason, obstacles, 1)
	r.record(ctx, entry)
}

// studyDue reports whether a location study should run this tick,
// either on the auto-study cadence or by explicit request.
func (r *Rover) studyDue() bool {
	select {
	case <-r.studyReq:
		return true
	default:
	}
	if !r.cfg.AutoStudyEnabled {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Sub(r.lastStudy) >= time.Duration(r.cfg.StudyInterval)*time.Second
}

// RequestStudy asks the loop to study the current location on its next
// tick. Duplicate requests before that tick coalesce.
func (r *Rover) RequestStudy() {
	select {
	case r.studyReq <- struct{}{}:
	default:
	}
}

// study stops the rover and takes averaged environment and soil
// readings at the current location.
func (r *Rover) study(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("studying location", "rover_id", r.id, "position", r.tracker.Position())

	if err := r.motors.Stop(); err != nil {
		log.Error("motor stop failed", "err", err)
	}

	entry := r.makeEntry(telemetry.ActionStudy, "scheduled location study", r.sensors.ReadObstacles(), studyReadings)

	r.mu.Lock()
	r.lastStudy = r.now()
	r.mu.Unlock()

	r.record(ctx, entry)
}

// makeEntry gathers sensor readings into a log entry. samples > 1
// averages the environment readings the way a study does.
func (r *Rover) makeEntry(action, reason string, obstacles telemetry.Obstacles, samples int) telemetry.LogEntry {
	var tempSum, humSum float64
	got := 0
	for i := 0; i < samples; i++ {
		if env, err := r.sensors.ReadEnvironment(); err == nil {
			tempSum += env.TemperatureC
			humSum += env.Humidity
			got++
		}
	}
	entry := telemetry.LogEntry{
		RoverID:   r.id,
		Position:  r.tracker.Position(),
		Obstacles: obstacles,
		Action:    action,
		Reason:    reason,
		Timestamp: r.now().UTC(),
	}
	if got > 0 {
		entry.Temperature = round2(tempSum / float64(got))
		entry.Humidity = round2(humSum / float64(got))
	}
	if soil, err := r.sensors.ReadSoil(samples); err == nil {
		entry.SoilPH = round2(soil.PH)
		entry.SoilVoltage = round3(soil.Voltage)
	}
	return entry
}

func (r *Rover) record(ctx context.Context, entry telemetry.LogEntry) {
	r.mu.Lock()
	r.lastEntry = entry
	r.mu.Unlock()

	if err := r.writer.Write(entry); err != nil {
		logging.FromContext(ctx).Error("log write failed", "rover_id", r.id, "err", err)
	}
}

// Snapshot returns the most recent log entry.
func (r *Rover) Snapshot() telemetry.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastEntry
}

// Ticks returns how many control ticks have run.
func (r *Rover) Ticks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// Health returns the live status summary.
func (r *Rover) Health() Health {
	action, speed := r.motors.Current()
	r.mu.Lock()
	defer r.mu.Unlock()
	return Health{
		RoverID:   r.id,
		Action:    action,
		Speed:     speed,
		Ticks:     r.ticks,
		Position:  r.lastEntry.Position,
		Obstacles: r.lastEntry.Obstacles,
		LastStudy: r.lastStudy,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
