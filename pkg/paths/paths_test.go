package paths

import (
	"math"
	"testing"
	"time"

	"github.com/terrapen/go-terrapen/pkg/kinematics"
	"github.com/terrapen/go-terrapen/pkg/sim"
)

func newFixture(t *testing.T) (Generator, *sim.Simulator) {
	t.Helper()
	cfg := sim.DefaultConfig()
	s, err := sim.New(cfg)
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	return NewGenerator(cfg), s
}

// run executes a sequence to completion with a fine deterministic tick.
func run(t *testing.T, s *sim.Simulator, segs []sim.Segment) {
	t.Helper()
	now := time.Unix(0, 0)
	for _, seg := range segs {
		if err := s.Start(seg, now); err != nil {
			t.Fatalf("Start: %v", err)
		}
		for s.Busy() {
			now = now.Add(10 * time.Millisecond)
			s.Tick(now)
		}
	}
}

func TestStraight_MovesAlongHeading(t *testing.T) {
	gen, s := newFixture(t)

	run(t, s, []sim.Segment{gen.Straight(100, 500, false)})

	pose := s.Pose()
	if math.Abs(pose.X-100) > 0.05 {
		t.Errorf("X: got %v, want 100 within one step", pose.X)
	}
	if pose.Y != 0 || pose.Heading != 0 {
		t.Errorf("straight run bent: Y=%v heading=%v", pose.Y, pose.Heading)
	}
}

func TestStraight_Backwards(t *testing.T) {
	gen, s := newFixture(t)

	run(t, s, []sim.Segment{gen.Straight(-40, 500, false)})

	if pose := s.Pose(); math.Abs(pose.X+40) > 0.05 {
		t.Errorf("X: got %v, want -40", pose.X)
	}
}

func TestRotation_InverseCancels(t *testing.T) {
	gen, s := newFixture(t)

	run(t, s, []sim.Segment{
		gen.Rotation(90, 300, false),
		gen.Rotation(-90, 300, false),
	})

	pose := s.Pose()
	if math.Abs(pose.Heading) > 1e-9 {
		t.Errorf("heading after cw+ccw: got %v, want 0", pose.Heading)
	}
	if pose.X != 0 || pose.Y != 0 {
		t.Errorf("rotation moved the robot: (%v, %v)", pose.X, pose.Y)
	}
}

func TestRotation_ClockwiseDecreasesHeading(t *testing.T) {
	gen, s := newFixture(t)

	run(t, s, []sim.Segment{gen.Rotation(90, 300, false)})

	if h := s.Pose().Heading; h > -1.5 || h < -1.65 {
		t.Errorf("heading after 90 cw: got %v, want about -pi/2", h)
	}
}

func TestRotation_PreservesPenState(t *testing.T) {
	gen, _ := newFixture(t)

	down := gen.Rotation(45, 300, true)
	up := gen.Rotation(45, 300, false)
	if down.ServoAngle != sim.DefaultPenDownAngle {
		t.Errorf("pen-down rotation servo: got %d", down.ServoAngle)
	}
	if up.ServoAngle != sim.DefaultPenUpAngle {
		t.Errorf("pen-up rotation servo: got %d", up.ServoAngle)
	}
}

func TestSquare_Closure(t *testing.T) {
	gen, s := newFixture(t)

	run(t, s, gen.Square(50, 400))

	pose := s.Pose()
	if math.Hypot(pose.X, pose.Y) > 1.0 {
		t.Errorf("square did not close: ended at (%v, %v)", pose.X, pose.Y)
	}
	if math.Abs(pose.Heading) > 0.01 {
		t.Errorf("square heading drift: %v", pose.Heading)
	}
	if s.PenDown() {
		t.Error("pen still down after square")
	}
	if len(s.Trail()) < 8 {
		t.Errorf("square trail too sparse: %d points", len(s.Trail()))
	}
}

func TestTriangle_Closure(t *testing.T) {
	gen, s := newFixture(t)

	run(t, s, gen.Triangle(60, 400))

	pose := s.Pose()
	if math.Hypot(pose.X, pose.Y) > 1.0 {
		t.Errorf("triangle did not close: ended at (%v, %v)", pose.X, pose.Y)
	}
}

func TestCircle_Structure(t *testing.T) {
	gen, _ := newFixture(t)

	segs := gen.Circle(30, 16, 300)

	// Lead-in, pen-down, 16 arcs, pen-up.
	if len(segs) != 19 {
		t.Fatalf("segment count: got %d, want 19", len(segs))
	}
	if !segs[1].IsPenOnly() || segs[1].ServoAngle != sim.DefaultPenDownAngle {
		t.Error("second segment is not a pen-down")
	}
	arc := segs[2]
	if arc.RightSteps <= arc.LeftSteps {
		t.Errorf("outer wheel not longer: left=%d right=%d", arc.LeftSteps, arc.RightSteps)
	}
	if arc.RightSpeed != 360 {
		t.Errorf("outer speed: got %d, want 360", arc.RightSpeed)
	}
	if !segs[len(segs)-1].IsPenOnly() {
		t.Error("sequence does not end with a pen-up")
	}
}

func TestCircle_DrawsRoundTrail(t *testing.T) {
	gen, s := newFixture(t)

	run(t, s, gen.Circle(30, 16, 300))

	// The arc segments all share one curvature, so every pen-down
	// point lies on a single circle. Fit its center from three spread
	// points and check the rest against it.
	trail := s.Trail()
	if len(trail) < 16 {
		t.Fatalf("circle trail too sparse: %d points", len(trail))
	}
	a, b, c := trail[0], trail[len(trail)/2], trail[len(trail)-1]
	cx, cy, ok := circumcenter(a.X, a.Y, b.X, b.Y, c.X, c.Y)
	if !ok {
		t.Fatal("trail points are collinear")
	}
	radius := math.Hypot(a.X-cx, a.Y-cy)
	for i, p := range trail {
		if math.Abs(math.Hypot(p.X-cx, p.Y-cy)-radius) > 1.0 {
			t.Fatalf("trail point %d off the fitted circle", i)
		}
	}
}

// circumcenter returns the center of the circle through three points.
func circumcenter(ax, ay, bx, by, cx, cy float64) (x, y float64, ok bool) {
	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if math.Abs(d) < 1e-9 {
		return 0, 0, false
	}
	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	x = (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d
	y = (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d
	return x, y, true
}

func TestSpiral_Structure(t *testing.T) {
	gen, _ := newFixture(t)

	segs := gen.Spiral(3, 40, 300)

	if len(segs) != 3*SegmentsPerTurn+2 {
		t.Fatalf("segment count: got %d, want %d", len(segs), 3*SegmentsPerTurn+2)
	}
	// Innermost arcs hit the 1mm floor and still move at least 1 step.
	first := segs[1]
	if first.LeftSteps < 1 {
		t.Errorf("innermost arc has no steps: %d", first.LeftSteps)
	}
	// Arc length grows with the radius.
	last := segs[len(segs)-2]
	if last.LeftSteps <= first.LeftSteps {
		t.Errorf("spiral arcs not growing: first=%d last=%d", first.LeftSteps, last.LeftSteps)
	}
	if last.RightSteps != int(float64(last.LeftSteps)*1.2) {
		t.Errorf("right wheel step ratio: left=%d right=%d", last.LeftSteps, last.RightSteps)
	}
}

func TestText_HI(t *testing.T) {
	gen, s := newFixture(t)

	segs, err := gen.Text("HI", 20, 400)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	run(t, s, segs)

	if s.PenDown() {
		t.Error("pen still down after text")
	}
	if len(s.Trail()) == 0 {
		t.Error("text drew nothing")
	}
}

func TestText_UnknownGlyph(t *testing.T) {
	gen, _ := newFixture(t)

	if _, err := gen.Text("HAL", 20, 400); err == nil {
		t.Fatal("expected error for unsupported glyph")
	}
}

func TestGoTo_RotatesThenMoves(t *testing.T) {
	gen, s := newFixture(t)

	target := struct{ x, y float64 }{30, 40}
	segs := gen.GoTo(s.Pose(), target.x, target.y, 400, false)
	if len(segs) != 2 {
		t.Fatalf("segment count: got %d, want rotation + straight", len(segs))
	}
	run(t, s, segs)

	pose := s.Pose()
	if math.Hypot(pose.X-target.x, pose.Y-target.y) > 1.0 {
		t.Errorf("missed target: ended at (%v, %v)", pose.X, pose.Y)
	}
}

func TestGoTo_SkipsRotationWhenAligned(t *testing.T) {
	gen, _ := newFixture(t)

	// Target dead ahead.
	segs := gen.GoTo(kinematics.Pose{}, 50, 0, 400, false)
	if len(segs) != 1 {
		t.Fatalf("segment count: got %d, want straight only", len(segs))
	}
}

func TestGoTo_NoopForTinyDistance(t *testing.T) {
	gen, _ := newFixture(t)

	if segs := gen.GoTo(kinematics.Pose{}, 0.01, 0.01, 400, false); segs != nil {
		t.Errorf("expected no segments, got %d", len(segs))
	}
}

func TestTotalDuration(t *testing.T) {
	gen, _ := newFixture(t)

	segs := []sim.Segment{
		gen.PenOnly(true),
		{LeftDir: sim.Forward, LeftSteps: 2048, LeftSpeed: 512,
			RightDir: sim.Forward, RightSteps: 1024, RightSpeed: 256},
		{LeftDir: sim.Forward, LeftSteps: 500, LeftSpeed: 500,
			RightDir: sim.Forward, RightSteps: 500, RightSpeed: 500},
	}
	if got := TotalDuration(segs); got != 5*time.Second {
		t.Errorf("TotalDuration: got %v, want 5s", got)
	}
}
