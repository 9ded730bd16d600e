// Camera obstacle detection and direction scoring
package rover

import (
	"fmt"
	"math/rand"
	"sync"

	"roverd/internal/telemetry"
)

// Region is one candidate obstacle region in a frame, as produced by the
// vision frontend's contour extraction.
type Region struct {
	X, Y, W, H int
	Area       int
}

// Frame is one capture with its extracted regions.
type Frame struct {
	Width   int
	Height  int
	Regions []Region
}

// CameraArray captures frames for the directions it has cameras on.
type CameraArray interface {
	Capture(direction string) (Frame, error)
	Directions() []string
}

// Obstacle is a region that passed the area threshold, annotated with
// its position relative to the frame center.
type Obstacle struct {
	Region Region
	RelX   float64 // -1 (left edge) to 1 (right edge)
	RelY   float64
	InPath bool // overlaps the center safe zone
}

// DirectionReport summarizes one camera's view.
type DirectionReport struct {
	Direction     string
	Available     bool
	Clear         bool
	ObstacleCount int
	PathObstacles int
}

// Guidance is the detector's movement recommendation.
type Guidance struct {
	Direction  string // front, back, left, right, or stop
	Reason     string
	ShouldMove bool
	Caution    bool
}

// directionPriority is the exploration preference when several paths
// are clear.
var directionPriority = []string{
	telemetry.DirFront,
	telemetry.DirLeft,
	telemetry.DirRight,
	telemetry.DirBack,
}

// Detector scores frames into obstacles and picks a direction.
type Detector struct {
	MinObstacleArea int
	SafeZoneWidth   float64 // fraction of frame width treated as the path
}

// NewDetector creates a detector with the given area threshold and the
// stock 40% center safe zone.
func NewDetector(minArea int) *Detector {
	return &Detector{MinObstacleArea: minArea, SafeZoneWidth: 0.4}
}

// Detect filters a frame's regions down to obstacles.
func (d *Detector) Detect(f Frame) []Obstacle {
	if f.Width <= 0 || f.Height <= 0 {
		return nil
	}
	var obstacles []Obstacle
	for _, r := range f.Regions {
		area := r.Area
		if area == 0 {
			area = r.W * r.H
		}
		if area <= d.MinObstacleArea {
			continue
		}
		centerX := r.X + r.W/2
		centerY := r.Y + r.H/2
		relX := float64(centerX-f.Width/2) / float64(f.Width/2)
		relY := float64(centerY-f.Height/2) / float64(f.Height/2)
		obstacles = append(obstacles, Obstacle{
			Region: r,
			RelX:   relX,
			RelY:   relY,
			InPath: relX < d.SafeZoneWidth/2 && relX > -d.SafeZoneWidth/2,
		})
	}
	return obstacles
}

// Analyze captures and scores one direction.
func (d *Detector) Analyze(cams CameraArray, direction string) DirectionReport {
	rep := DirectionReport{Direction: direction}
	frame, err := cams.Capture(direction)
	if err != nil {
		return rep
	}
	obstacles := d.Detect(frame)
	inPath := 0
	for _, o := range obstacles {
		if o.InPath {
			inPath++
		}
	}
	rep.Available = true
	rep.ObstacleCount = len(obstacles)
	rep.PathObstacles = inPath
	rep.Clear = inPath == 0
	return rep
}

// BestDirection scores every camera and recommends a move: the first
// clear direction in priority order, otherwise the direction with the
// fewest path obstacles, otherwise stop.
func (d *Detector) BestDirection(cams CameraArray) Guidance {
	reports := make(map[string]DirectionReport)
	for _, dir := range cams.Directions() {
		reports[dir] = d.Analyze(cams, dir)
	}

	for _, dir := range directionPriority {
		if rep, ok := reports[dir]; ok && rep.Available && rep.Clear {
			return Guidance{
				Direction:  dir,
				Reason:     fmt.Sprintf("%s path is clear", dir),
				ShouldMove: true,
			}
		}
	}

	best := ""
	bestCount := -1
	for _, dir := range directionPriority {
		rep, ok := reports[dir]
		if !ok || !rep.Available {
			continue
		}
		if bestCount < 0 || rep.PathObstacles < bestCount {
			best = dir
			bestCount = rep.PathObstacles
		}
	}
	if best != "" {
		return Guidance{
			Direction:  best,
			Reason:     fmt.Sprintf("%s has fewest obstacles", best),
			ShouldMove: true,
			Caution:    true,
		}
	}

	return Guidance{
		Direction: telemetry.ActionStop,
		Reason:    "all paths blocked or cameras unavailable",
	}
}

// SimCameraArray produces synthetic frames at the configured resolution,
// scattering obstacle regions with a fixed probability.
type SimCameraArray struct {
	Width        int
	Height       int
	ObstacleRate float64
	directions   []string
	rand         *rand.Rand
	mu           sync.Mutex
}

// NewSimCameraArray creates a simulated camera set for the given
// directions at the given capture resolution.
func NewSimCameraArray(seed int64, width, height int, obstacleRate float64, directions ...string) *SimCameraArray {
	if len(directions) == 0 {
		directions = []string{telemetry.DirFront}
	}
	return &SimCameraArray{
		Width:        width,
		Height:       height,
		ObstacleRate: obstacleRate,
		directions:   directions,
		rand:         rand.New(rand.NewSource(seed)),
	}
}

func (s *SimCameraArray) Directions() []string { return s.directions }

func (s *SimCameraArray) Capture(direction string) (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := Frame{Width: s.Width, Height: s.Height}
	if s.rand.Float64() < s.ObstacleRate {
		// Region size clamps to the frame so tiny resolutions stay valid.
		w := min(s.rand.Intn(max(s.Width/2, 1))+40, s.Width-1)
		h := min(s.rand.Intn(max(s.Height/2, 1))+40, s.Height-1)
		f.Regions = append(f.Regions, Region{
			X: s.rand.Intn(s.Width - w),
			Y: s.rand.Intn(s.Height - h),
			W: w,
			H: h,
		})
	}
	return f, nil
}
