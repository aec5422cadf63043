// Package kinematics implements the differential-drive math for a
// two-wheeled pen plotter: step/distance conversions, discrete pose
// updates, and smooth along-arc interpolation.
//
// Everything here is a pure function of the wheel geometry. State
// (trail, pen, busy) lives in pkg/sim.
package kinematics

import "math"

// Classification thresholds, in mm and radians. A wheel-travel
// difference under straightEpsilon is treated as straight-line motion;
// a net translation under translationEpsilon as rotation in place.
const (
	straightEpsilon    = 0.1
	translationEpsilon = 0.1
	headingEpsilon     = 0.001
)

// Pose is a position on the workspace plane plus a heading.
// Units are mm, origin at workspace center, heading in radians with
// 0 facing +X, normalized to [-pi, pi].
type Pose struct {
	X       float64
	Y       float64
	Heading float64
}

// Geometry describes the drivetrain dimensions needed for kinematics.
type Geometry struct {
	WheelDiameterMM    float64
	WheelbaseMM        float64
	StepsPerRevolution int
}

// Delta is the signed travel of each wheel in mm for one segment.
type Delta struct {
	Left  float64
	Right float64
}

// Translation returns the distance traveled by the robot center.
func (d Delta) Translation() float64 {
	return (d.Left + d.Right) / 2.0
}

// StepsToDistance converts motor steps to linear travel in mm.
func (g Geometry) StepsToDistance(steps int) float64 {
	circumference := math.Pi * g.WheelDiameterMM
	return float64(steps) * circumference / float64(g.StepsPerRevolution)
}

// DistanceToSteps converts linear travel in mm to motor steps,
// truncated toward zero. It is the inverse of StepsToDistance up to
// integer truncation.
func (g Geometry) DistanceToSteps(distance float64) int {
	circumference := math.Pi * g.WheelDiameterMM
	return int(distance * float64(g.StepsPerRevolution) / circumference)
}

// HeadingChange returns the heading delta produced by the given wheel
// travel.
func (g Geometry) HeadingChange(d Delta) float64 {
	return (d.Right - d.Left) / g.WheelbaseMM
}

// Apply advances a pose by one full segment of wheel travel using the
// discrete differential-drive model.
func (g Geometry) Apply(pose Pose, d Delta) Pose {
	translation := d.Translation()
	pose.X += translation * math.Cos(pose.Heading)
	pose.Y += translation * math.Sin(pose.Heading)
	pose.Heading = NormalizeAngle(pose.Heading + g.HeadingChange(d))
	return pose
}

// Interpolate returns the pose partway through a segment, where
// progress is the executed fraction in [0, 1]. The three regimes are:
//
//   - straight line: linear interpolation along the start heading
//   - rotation in place: heading interpolates, position fixed
//   - arc: exact circular motion about the turning center
//
// At progress 1 the result matches Apply for the same inputs.
func (g Geometry) Interpolate(start Pose, d Delta, progress float64) Pose {
	progress = clamp01(progress)

	translation := d.Translation()
	deltaHeading := g.HeadingChange(d)
	cur := start

	switch {
	case math.Abs(d.Left-d.Right) < straightEpsilon:
		dist := translation * progress
		cur.X = start.X + dist*math.Cos(start.Heading)
		cur.Y = start.Y + dist*math.Sin(start.Heading)
		cur.Heading = start.Heading + deltaHeading*progress

	case math.Abs(translation) < translationEpsilon:
		// Rotation in place.
		cur.Heading = start.Heading + deltaHeading*progress

	default:
		if math.Abs(deltaHeading) > headingEpsilon {
			radius := translation / deltaHeading
			centerX := start.X - radius*math.Sin(start.Heading)
			centerY := start.Y + radius*math.Cos(start.Heading)

			h := start.Heading + deltaHeading*progress
			cur.X = centerX + radius*math.Sin(h)
			cur.Y = centerY - radius*math.Cos(h)
			cur.Heading = h
		}
	}

	cur.Heading = NormalizeAngle(cur.Heading)
	return cur
}

// NormalizeAngle wraps an angle into [-pi, pi]. Both boundary values
// pass through unchanged; only strict overshoot wraps.
func NormalizeAngle(rad float64) float64 {
	for rad > math.Pi {
		rad -= 2 * math.Pi
	}
	for rad < -math.Pi {
		rad += 2 * math.Pi
	}
	return rad
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
