// Package sim owns the robot state and the segment execution state
// machine. A Simulator is driven by an external tick loop and is
// deliberately clock-free: Start and Tick take an explicit "now", so
// outcomes never depend on caller cadence and tests need no real
// delays.
//
// The engine assumes a single logical thread of control. Concurrent
// readers must go through Snapshot.
package sim

import (
	"errors"
	"time"

	"github.com/terrapen/go-terrapen/internal/log"
	"github.com/terrapen/go-terrapen/pkg/kinematics"
)

// ErrBusy is returned by Start while a segment is already executing.
var ErrBusy = errors.New("segment already executing")

// trailDedupMM suppresses trail points closer than this to the last
// recorded point, so stroke close-outs don't double up with the next
// stroke's opening point.
const trailDedupMM = 0.1

// TickStatus is the outcome of a single scheduler tick.
type TickStatus int

const (
	// TickIdle means no segment is executing.
	TickIdle TickStatus = iota
	// TickRunning means the current segment is still in progress.
	TickRunning
	// TickCompleted means the current segment finished on this tick.
	TickCompleted
)

// Point is a sampled pen position in workspace mm.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// State is a read-only snapshot of the engine, safe to hand to
// renderers and transports on other goroutines.
type State struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Heading       float64 `json:"heading"`
	PenDown       bool    `json:"pen_down"`
	Busy          bool    `json:"busy"`
	Progress      float64 `json:"progress"`
	TimeRemaining float64 `json:"time_remaining"`
	Trail         []Point `json:"trail,omitempty"`
}

type phase int

const (
	phaseIdle phase = iota
	phaseExecuting
)

// execution holds everything about the in-flight segment. It is only
// meaningful while the simulator is in phaseExecuting and is zeroed on
// every transition to idle, so a stale segment can never leak into the
// next run.
type execution struct {
	segment           Segment
	startedAt         time.Time
	startPose         kinematics.Pose
	lastTrailProgress float64
}

// Simulator executes segments one at a time against the robot state.
type Simulator struct {
	cfg Config
	geo kinematics.Geometry

	pose    kinematics.Pose
	penDown bool
	trail   []Point

	phase phase
	exec  execution
}

// New creates a simulator with a validated configuration.
func New(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{cfg: cfg, geo: cfg.Geometry()}, nil
}

// Config returns the active configuration.
func (s *Simulator) Config() Config {
	return s.cfg
}

// Start begins executing a segment at the given time. It fails with
// ErrBusy if a segment is already in flight; callers that want queuing
// use a Sequencer. The pen state changes immediately at segment start,
// not at completion.
func (s *Simulator) Start(seg Segment, now time.Time) error {
	if s.phase == phaseExecuting {
		return ErrBusy
	}
	if seg.degenerate() {
		log.Warn("zero-speed segment will complete instantly without motion",
			"left_steps", seg.LeftSteps, "right_steps", seg.RightSteps)
	}

	s.phase = phaseExecuting
	s.exec = execution{
		segment:   seg,
		startedAt: now,
		startPose: s.pose,
	}

	s.penDown = seg.ServoAngle == s.cfg.PenDownAngle
	if s.penDown {
		s.appendTrail(s.pose.X, s.pose.Y)
	}
	return nil
}

// Tick advances the in-flight segment to the given time. Mid-segment
// it interpolates the pose and samples the trail; past the segment
// duration it finalizes the pose and pen state and returns
// TickCompleted. Ticking an idle simulator is a harmless no-op.
func (s *Simulator) Tick(now time.Time) TickStatus {
	if s.phase != phaseExecuting {
		return TickIdle
	}

	seg := s.exec.segment
	duration := seg.Duration()
	elapsed := now.Sub(s.exec.startedAt)

	if elapsed >= duration {
		s.finalize(seg)
		return TickCompleted
	}

	progress := 1.0
	if duration > 0 {
		progress = float64(elapsed) / float64(duration)
	}

	s.pose = s.geo.Interpolate(s.exec.startPose, seg.wheelDelta(s.geo), progress)

	// Trail density is bounded by the config interval, not the tick
	// rate.
	if s.penDown && progress > s.exec.lastTrailProgress+s.cfg.TrailInterval {
		s.appendTrail(s.pose.X, s.pose.Y)
		s.exec.lastTrailProgress = progress
	}
	return TickRunning
}

// finalize pins the pose to the exact segment endpoint, applies the
// segment's pen state, and closes out the stroke. Zero-duration
// segments never moved, so their step counts are discarded rather than
// applied retroactively.
func (s *Simulator) finalize(seg Segment) {
	if seg.Duration() > 0 {
		s.pose = s.geo.Interpolate(s.exec.startPose, seg.wheelDelta(s.geo), 1.0)
	}

	wasDown := s.penDown
	s.penDown = seg.ServoAngle == s.cfg.PenDownAngle
	if wasDown {
		s.appendTrail(s.pose.X, s.pose.Y)
	}

	s.phase = phaseIdle
	s.exec = execution{}
}

// Stop aborts the current segment immediately. The pose stays wherever
// interpolation last placed it; nothing is finalized or rolled back.
// Stopping an idle simulator is a no-op.
func (s *Simulator) Stop() {
	if s.phase == phaseExecuting {
		log.Info("segment execution stopped")
	}
	s.phase = phaseIdle
	s.exec = execution{}
}

// Reset discards all state including the trail, returning the robot to
// the origin. Calling it repeatedly is idempotent.
func (s *Simulator) Reset() {
	s.pose = kinematics.Pose{}
	s.penDown = false
	s.trail = nil
	s.phase = phaseIdle
	s.exec = execution{}
}

// Busy reports whether a segment is executing.
func (s *Simulator) Busy() bool {
	return s.phase == phaseExecuting
}

// Pose returns the current robot pose.
func (s *Simulator) Pose() kinematics.Pose {
	return s.pose
}

// PenDown reports the pen state.
func (s *Simulator) PenDown() bool {
	return s.penDown
}

// SetPen raises or lowers the pen directly, outside any segment. Used
// by manual controls; while a segment is executing the segment's servo
// target wins on the next tick.
func (s *Simulator) SetPen(down bool) {
	if down && !s.penDown {
		s.appendTrail(s.pose.X, s.pose.Y)
	}
	s.penDown = down
}

// Progress returns the executed fraction of the current segment in
// [0, 1], or 0 when idle.
func (s *Simulator) Progress(now time.Time) float64 {
	if s.phase != phaseExecuting {
		return 0
	}
	duration := s.exec.segment.Duration()
	if duration <= 0 {
		return 1
	}
	progress := float64(now.Sub(s.exec.startedAt)) / float64(duration)
	if progress > 1 {
		return 1
	}
	if progress < 0 {
		return 0
	}
	return progress
}

// TimeRemaining returns how long the current segment still has to run,
// or 0 when idle.
func (s *Simulator) TimeRemaining(now time.Time) time.Duration {
	if s.phase != phaseExecuting {
		return 0
	}
	remaining := s.exec.segment.Duration() - now.Sub(s.exec.startedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Trail returns a copy of the recorded pen trail.
func (s *Simulator) Trail() []Point {
	out := make([]Point, len(s.trail))
	copy(out, s.trail)
	return out
}

// ClearTrail drops the recorded trail without touching the pose.
func (s *Simulator) ClearTrail() {
	s.trail = nil
}

// Snapshot captures the full engine state for external consumers.
func (s *Simulator) Snapshot(now time.Time) State {
	return State{
		X:             s.pose.X,
		Y:             s.pose.Y,
		Heading:       s.pose.Heading,
		PenDown:       s.penDown,
		Busy:          s.phase == phaseExecuting,
		Progress:      s.Progress(now),
		TimeRemaining: s.TimeRemaining(now).Seconds(),
		Trail:         s.Trail(),
	}
}

func (s *Simulator) appendTrail(x, y float64) {
	if n := len(s.trail); n > 0 {
		last := s.trail[n-1]
		if abs(last.X-x) < trailDedupMM && abs(last.Y-y) < trailDedupMM {
			return
		}
	}
	s.trail = append(s.trail, Point{X: x, Y: y})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
