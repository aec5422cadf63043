// Package paths builds segment sequences for geometric figures:
// straight strokes, rotations, squares, circles, spirals, and a couple
// of demo letterforms. Generators are pure functions of the robot
// configuration and the shape parameters; they own no state.
package paths

import (
	"fmt"
	"math"
	"time"

	"github.com/terrapen/go-terrapen/pkg/kinematics"
	"github.com/terrapen/go-terrapen/pkg/sim"
)

// goToMinDistanceMM is the travel below which GoTo emits nothing.
const goToMinDistanceMM = 0.1

// goToMinBearingRad (~3 degrees) skips the alignment rotation when the
// robot already points close enough at the target.
const goToMinBearingRad = 0.05

// Generator builds segments for a particular robot configuration.
type Generator struct {
	cfg sim.Config
	geo kinematics.Geometry
}

// NewGenerator creates a Generator for the given configuration.
func NewGenerator(cfg sim.Config) Generator {
	return Generator{cfg: cfg, geo: cfg.Geometry()}
}

// servo returns the servo angle selecting a pen state.
func (g Generator) servo(penDown bool) int {
	if penDown {
		return g.cfg.PenDownAngle
	}
	return g.cfg.PenUpAngle
}

// Straight builds a segment driving both wheels the same distance.
// Negative distance drives backwards.
func (g Generator) Straight(distanceMM float64, speed int, penDown bool) sim.Segment {
	steps := g.geo.DistanceToSteps(distanceMM)
	dir := sim.Forward
	if distanceMM < 0 {
		dir = sim.Backward
		steps = -steps
	}
	return sim.Segment{
		LeftDir: dir, LeftSteps: steps, LeftSpeed: speed,
		RightDir: dir, RightSteps: steps, RightSpeed: speed,
		ServoAngle: g.servo(penDown),
	}
}

// Rotation builds an in-place rotation segment. Positive angles turn
// clockwise (left wheel forward, right wheel backward), which decreases
// the heading. The pen state is preserved, not changed.
func (g Generator) Rotation(angleDegrees float64, speed int, penDown bool) sim.Segment {
	arcLength := math.Abs(angleDegrees*math.Pi/180) * g.cfg.WheelbaseMM / 2
	steps := g.geo.DistanceToSteps(arcLength)

	leftDir, rightDir := sim.Forward, sim.Backward
	if angleDegrees < 0 {
		leftDir, rightDir = sim.Backward, sim.Forward
	}
	return sim.Segment{
		LeftDir: leftDir, LeftSteps: steps, LeftSpeed: speed,
		RightDir: rightDir, RightSteps: steps, RightSpeed: speed,
		ServoAngle: g.servo(penDown),
	}
}

// PenOnly builds a segment that moves no wheels and only raises or
// lowers the pen.
func (g Generator) PenOnly(down bool) sim.Segment {
	return sim.Segment{
		LeftDir: sim.Forward, RightDir: sim.Forward,
		ServoAngle: g.servo(down),
	}
}

// Square draws a closed square of the given side length. The pen goes
// down before the first side and up after the last corner.
func (g Generator) Square(side float64, speed int) []sim.Segment {
	segs := []sim.Segment{g.PenOnly(true)}
	for i := 0; i < 4; i++ {
		segs = append(segs,
			g.Straight(side, speed, true),
			g.Rotation(90, speed/2, true),
		)
	}
	return append(segs, g.PenOnly(false))
}

// Triangle draws a closed equilateral triangle.
func (g Generator) Triangle(side float64, speed int) []sim.Segment {
	segs := []sim.Segment{g.PenOnly(true)}
	for i := 0; i < 3; i++ {
		segs = append(segs,
			g.Straight(side, speed, true),
			g.Rotation(120, speed/2, true),
		)
	}
	return append(segs, g.PenOnly(false))
}

// Circle approximates a circle with arcCount differential-drive arc
// segments. The robot first travels the radius with the pen up to
// reach the rim, then draws arcs with the inner wheel covering 0.9x
// and the outer wheel 1.1x of the nominal arc length, the outer wheel
// running 20% faster.
func (g Generator) Circle(radius float64, arcCount, speed int) []sim.Segment {
	segs := []sim.Segment{
		g.Straight(radius, speed, false),
		g.PenOnly(true),
	}

	arcAngle := 2 * math.Pi / float64(arcCount)
	arcLength := arcAngle * radius
	innerSteps := g.geo.DistanceToSteps(arcLength * 0.9)
	outerSteps := g.geo.DistanceToSteps(arcLength * 1.1)
	outerSpeed := int(float64(speed) * 1.2)

	for i := 0; i < arcCount; i++ {
		segs = append(segs, sim.Segment{
			LeftDir: sim.Forward, LeftSteps: innerSteps, LeftSpeed: speed,
			RightDir: sim.Forward, RightSteps: outerSteps, RightSpeed: outerSpeed,
			ServoAngle: g.cfg.PenDownAngle,
		})
	}
	return append(segs, g.PenOnly(false))
}

// SegmentsPerTurn is the spiral resolution.
const SegmentsPerTurn = 12

// Spiral draws an outward spiral with linearly growing radius. Each
// arc's length follows the instantaneous radius with a 1mm floor so
// the innermost windings still move; the right wheel runs 1.2x the
// steps at 1.3x the speed for a continuous left turn.
func (g Generator) Spiral(turns int, maxRadius float64, speed int) []sim.Segment {
	total := turns * SegmentsPerTurn
	segs := []sim.Segment{g.PenOnly(true)}

	anglePerSegment := 2 * math.Pi / float64(SegmentsPerTurn)
	rightSpeed := int(float64(speed) * 1.3)

	for i := 0; i < total; i++ {
		radius := maxRadius * float64(i) / float64(total)
		arcLength := anglePerSegment * radius
		if arcLength < 1 {
			arcLength = 1
		}

		steps := g.geo.DistanceToSteps(arcLength)
		if steps < 1 {
			steps = 1
		}

		segs = append(segs, sim.Segment{
			LeftDir: sim.Forward, LeftSteps: steps, LeftSpeed: speed,
			RightDir: sim.Forward, RightSteps: int(float64(steps) * 1.2), RightSpeed: rightSpeed,
			ServoAngle: g.cfg.PenDownAngle,
		})
	}
	return append(segs, g.PenOnly(false))
}

// Text renders a string of supported letters, spaced 1.5x the letter
// size apart. Only the demo glyphs H and I exist; anything else is an
// error.
func (g Generator) Text(text string, size float64, speed int) ([]sim.Segment, error) {
	var segs []sim.Segment
	for i, r := range text {
		if i > 0 {
			segs = append(segs, g.Straight(size*1.5, speed, false))
		}
		switch r {
		case 'H', 'h':
			segs = append(segs, g.LetterH(size, speed)...)
		case 'I', 'i':
			segs = append(segs, g.LetterI(size, speed)...)
		default:
			return nil, fmt.Errorf("no glyph for %q", r)
		}
	}
	return segs, nil
}

// LetterH draws an H glyph: two verticals joined by a crossbar, ending
// back at the baseline facing the original heading.
func (g Generator) LetterH(size float64, speed int) []sim.Segment {
	rotSpeed := speed / 2
	return []sim.Segment{
		// Left vertical.
		g.PenOnly(true),
		g.Straight(size, speed, true),
		// Back down to the middle, pen up.
		g.Straight(-size/2, speed, false),
		// Crossbar.
		g.Rotation(90, rotSpeed, false),
		g.PenOnly(true),
		g.Straight(size/2, speed, true),
		// Right vertical, down then back.
		g.Rotation(90, rotSpeed, true),
		g.Straight(size/2, speed, true),
		g.Straight(-size, speed, false),
		// Return to baseline orientation.
		g.Rotation(90, rotSpeed, false),
		g.Straight(size/2, speed, false),
		g.Rotation(90, rotSpeed, false),
		g.PenOnly(false),
	}
}

// LetterI draws an I glyph with top and bottom serifs.
func (g Generator) LetterI(size float64, speed int) []sim.Segment {
	rotSpeed := speed / 2
	return []sim.Segment{
		// Top serif.
		g.PenOnly(true),
		g.Straight(size/2, speed, true),
		// Back to the stem position.
		g.Straight(-size/4, speed, false),
		g.Rotation(-90, rotSpeed, false),
		// Stem.
		g.PenOnly(true),
		g.Straight(size, speed, true),
		// Bottom serif.
		g.Rotation(-90, rotSpeed, true),
		g.Straight(-size/4, speed, true),
		g.Straight(size/2, speed, true),
		g.PenOnly(false),
	}
}

// GoTo plans a move from the given pose to a target point: an optional
// alignment rotation followed by a straight run. The rotation is
// skipped when the bearing delta is under ~3 degrees; nothing is
// emitted for targets closer than 0.1mm. The pen keeps its current
// state for the whole move.
func (g Generator) GoTo(from kinematics.Pose, x, y float64, speed int, penDown bool) []sim.Segment {
	dx := x - from.X
	dy := y - from.Y
	distance := math.Hypot(dx, dy)
	if distance <= goToMinDistanceMM {
		return nil
	}

	bearing := math.Atan2(dy, dx)
	diff := kinematics.NormalizeAngle(bearing - from.Heading)

	var segs []sim.Segment
	if math.Abs(diff) > goToMinBearingRad {
		// Positive bearing delta is a counter-clockwise turn, which a
		// rotation segment encodes as a negative angle.
		segs = append(segs, g.Rotation(-diff*180/math.Pi, speed, penDown))
	}
	return append(segs, g.Straight(distance, speed, penDown))
}

// TotalDuration sums the durations of a segment sequence. Informational
// only, for telemetry and path summaries.
func TotalDuration(segs []sim.Segment) time.Duration {
	var total time.Duration
	for _, s := range segs {
		total += s.Duration()
	}
	return total
}
