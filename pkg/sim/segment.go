package sim

import (
	"time"

	"github.com/terrapen/go-terrapen/pkg/kinematics"
)

// Direction is the spin direction of a wheel motor.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

// Segment is an atomic motion command: per-wheel step counts, speeds
// and directions, plus the pen servo target. Segments are immutable
// values produced by a path generator and consumed once by the
// scheduler.
type Segment struct {
	LeftDir    Direction `json:"left_dir"`
	LeftSteps  int       `json:"left_steps"`
	LeftSpeed  int       `json:"left_speed"`
	RightDir   Direction `json:"right_dir"`
	RightSteps int       `json:"right_steps"`
	RightSpeed int       `json:"right_speed"`
	ServoAngle int       `json:"servo_angle"`
}

// Duration is how long the segment takes to execute: the slower wheel
// sets the pace. A zero wheel speed contributes zero time, so a
// zero-speed segment with steps queued completes instantly without
// motion (see Simulator.Start).
func (s Segment) Duration() time.Duration {
	var left, right float64
	if s.LeftSpeed > 0 {
		left = float64(s.LeftSteps) / float64(s.LeftSpeed)
	}
	if s.RightSpeed > 0 {
		right = float64(s.RightSteps) / float64(s.RightSpeed)
	}
	secs := left
	if right > secs {
		secs = right
	}
	return time.Duration(secs * float64(time.Second))
}

// IsPenOnly reports whether the segment moves no wheels and exists
// purely to change the pen state.
func (s Segment) IsPenOnly() bool {
	return s.LeftSteps == 0 && s.RightSteps == 0
}

// degenerate reports a segment whose formula duration is zero even
// though steps are queued; executing it discards the intended motion.
func (s Segment) degenerate() bool {
	return s.Duration() == 0 && !s.IsPenOnly()
}

// wheelDelta converts the per-wheel step commands to signed travel
// distances for the kinematics layer.
func (s Segment) wheelDelta(g kinematics.Geometry) kinematics.Delta {
	return kinematics.Delta{
		Left:  g.StepsToDistance(s.LeftSteps) * float64(s.LeftDir),
		Right: g.StepsToDistance(s.RightSteps) * float64(s.RightDir),
	}
}
