// Sensor manager: environment, soil probe, and IR array behind
// hardware-neutral interfaces
package rover

import (
	"fmt"
	"math/rand"
	"sync"

	"roverd/internal/telemetry"
)

// EnvironmentReading is one temperature/humidity sample.
type EnvironmentReading struct {
	TemperatureC float64
	Humidity     float64
}

// EnvironmentSensor reads ambient temperature and humidity. DHT-class
// sensors fail sporadically, so Read may need retries.
type EnvironmentSensor interface {
	Read() (EnvironmentReading, error)
}

// SoilProbe reads the raw ADC voltage of the soil pH probe.
type SoilProbe interface {
	Voltage() (float64, error)
}

// IRArray reads the digital obstacle flags, one per direction.
type IRArray interface {
	Blocked(direction string) (bool, error)
}

// SoilReading is a pH measurement averaged over several voltage samples.
type SoilReading struct {
	PH      float64
	Voltage float64
	Samples int
}

// SensorManager aggregates the rover's sensors.
type SensorManager struct {
	env        EnvironmentSensor
	soil       SoilProbe
	ir         IRArray
	envRetries int
}

// NewSensorManager wires the sensor set. Environment reads retry up to
// three times, matching how flaky DHT11 hardware behaves.
func NewSensorManager(env EnvironmentSensor, soil SoilProbe, ir IRArray) *SensorManager {
	return &SensorManager{env: env, soil: soil, ir: ir, envRetries: 3}
}

// ReadEnvironment returns a temperature/humidity sample, retrying
// transient failures.
func (m *SensorManager) ReadEnvironment() (EnvironmentReading, error) {
	var lastErr error
	for attempt := 0; attempt < m.envRetries; attempt++ {
		r, err := m.env.Read()
		if err == nil {
			return r, nil
		}
		lastErr = err
	}
	return EnvironmentReading{}, fmt.Errorf("environment read failed after %d attempts: %w", m.envRetries, lastErr)
}

// ReadSoil samples the probe voltage n times, averages, and converts to
// pH with the probe's standard transfer curve: pH = 7 + (2.5 - V)/0.18.
func (m *SensorManager) ReadSoil(samples int) (SoilReading, error) {
	if samples < 1 {
		samples = 1
	}
	var sum float64
	for i := 0; i < samples; i++ {
		v, err := m.soil.Voltage()
		if err != nil {
			return SoilReading{}, fmt.Errorf("soil probe: %w", err)
		}
		sum += v
	}
	avg := sum / float64(samples)
	return SoilReading{
		PH:      7 + (2.5-avg)/0.18,
		Voltage: avg,
		Samples: samples,
	}, nil
}

// ReadObstacles reads all four IR directions. A failed read counts as
// clear rather than stopping the rover on a flaky sensor.
func (m *SensorManager) ReadObstacles() telemetry.Obstacles {
	var o telemetry.Obstacles
	o.Front, _ = m.ir.Blocked(telemetry.DirFront)
	o.Back, _ = m.ir.Blocked(telemetry.DirBack)
	o.Left, _ = m.ir.Blocked(telemetry.DirLeft)
	o.Right, _ = m.ir.Blocked(telemetry.DirRight)
	return o
}

// ClearDirections lists the directions whose IR flag is not set.
func (m *SensorManager) ClearDirections() []string {
	o := m.ReadObstacles()
	var clear []string
	if !o.Front {
		clear = append(clear, telemetry.DirFront)
	}
	if !o.Back {
		clear = append(clear, telemetry.DirBack)
	}
	if !o.Left {
		clear = append(clear, telemetry.DirLeft)
	}
	if !o.Right {
		clear = append(clear, telemetry.DirRight)
	}
	return clear
}

// SimEnvironment is a simulated temperature/humidity sensor drifting
// around a base climate.
type SimEnvironment struct {
	BaseTemperature float64
	BaseHumidity    float64
	rand            *rand.Rand
	mu              sync.Mutex
}

// NewSimEnvironment creates a simulated sensor seeded for reproducibility.
func NewSimEnvironment(seed int64) *SimEnvironment {
	return &SimEnvironment{
		BaseTemperature: 25.0,
		BaseHumidity:    45.0,
		rand:            rand.New(rand.NewSource(seed)),
	}
}

func (s *SimEnvironment) Read() (EnvironmentReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EnvironmentReading{
		TemperatureC: s.BaseTemperature + s.rand.Float64()*2 - 1,
		Humidity:     s.BaseHumidity + s.rand.Float64()*4 - 2,
	}, nil
}

// SimSoilProbe is a simulated pH probe hovering near neutral soil.
type SimSoilProbe struct {
	BaseVoltage float64
	rand        *rand.Rand
	mu          sync.Mutex
}

func NewSimSoilProbe(seed int64) *SimSoilProbe {
	return &SimSoilProbe{BaseVoltage: 2.46, rand: rand.New(rand.NewSource(seed))}
}

func (s *SimSoilProbe) Voltage() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.BaseVoltage + s.rand.Float64()*0.1 - 0.05, nil
}

// SimIRArray is a simulated IR array that flags an obstacle with a fixed
// probability per direction per read.
type SimIRArray struct {
	ObstacleRate float64
	rand         *rand.Rand
	mu           sync.Mutex
}

func NewSimIRArray(seed int64, obstacleRate float64) *SimIRArray {
	return &SimIRArray{ObstacleRate: obstacleRate, rand: rand.New(rand.NewSource(seed))}
}

func (s *SimIRArray) Blocked(direction string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rand.Float64() < s.ObstacleRate, nil
}
