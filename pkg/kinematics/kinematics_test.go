package kinematics

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func testGeometry() Geometry {
	return Geometry{
		WheelDiameterMM:    25.0,
		WheelbaseMM:        30.0,
		StepsPerRevolution: 2048,
	}
}

func TestStepsToDistance_FullRevolution(t *testing.T) {
	g := testGeometry()

	got := g.StepsToDistance(2048)
	want := math.Pi * 25.0
	if !floatEquals(got, want) {
		t.Errorf("StepsToDistance(2048): got %v, want %v", got, want)
	}
}

func TestConversion_RoundTrip(t *testing.T) {
	g := testGeometry()

	// distanceToSteps(stepsToDistance(n)) must be within 1 step of n
	// for all step counts in the working range (truncation tolerance).
	for n := 0; n <= 100000; n += 7 {
		back := g.DistanceToSteps(g.StepsToDistance(n))
		if back < n-1 || back > n+1 {
			t.Fatalf("round trip for %d steps: got %d", n, back)
		}
	}
}

func TestDistanceToSteps_TruncatesTowardZero(t *testing.T) {
	g := testGeometry()

	if got := g.DistanceToSteps(0); got != 0 {
		t.Errorf("DistanceToSteps(0): got %d, want 0", got)
	}

	pos := g.DistanceToSteps(10)
	neg := g.DistanceToSteps(-10)
	if pos != -neg {
		t.Errorf("truncation asymmetry: %d vs %d", pos, neg)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, -math.Pi},
		{3 * math.Pi, math.Pi},
		{-3 * math.Pi, -math.Pi},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi / 2, math.Pi / 2},
		{-math.Pi / 4, -math.Pi / 4},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); !floatEquals(got, tt.want) {
			t.Errorf("NormalizeAngle(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApply_StraightLine(t *testing.T) {
	g := testGeometry()

	pose := g.Apply(Pose{}, Delta{Left: 100, Right: 100})
	if !floatEquals(pose.X, 100) || !floatEquals(pose.Y, 0) {
		t.Errorf("position: got (%v, %v), want (100, 0)", pose.X, pose.Y)
	}
	if !floatEquals(pose.Heading, 0) {
		t.Errorf("heading: got %v, want 0", pose.Heading)
	}
}

func TestApply_RotationInPlace(t *testing.T) {
	g := testGeometry()

	// Opposite equal wheel travel rotates about the center.
	arc := math.Pi / 2 * g.WheelbaseMM / 2
	pose := g.Apply(Pose{}, Delta{Left: arc, Right: -arc})
	if !floatEquals(pose.X, 0) || !floatEquals(pose.Y, 0) {
		t.Errorf("position moved during rotation: (%v, %v)", pose.X, pose.Y)
	}
	if !floatEquals(pose.Heading, -math.Pi/2) {
		t.Errorf("heading: got %v, want %v", pose.Heading, -math.Pi/2)
	}
}

func TestInterpolate_MatchesApplyAtFullProgress(t *testing.T) {
	g := testGeometry()

	tests := []struct {
		name  string
		start Pose
		d     Delta
	}{
		{"straight", Pose{X: 5, Y: -3, Heading: 0.4}, Delta{Left: 80, Right: 80}},
		{"rotation", Pose{X: 1, Y: 2, Heading: -0.7}, Delta{Left: 20, Right: -20}},
		{"arc", Pose{X: -10, Y: 4, Heading: 1.1}, Delta{Left: 40, Right: 60}},
		{"tight arc", Pose{Heading: 0.2}, Delta{Left: -5, Right: 25}},
	}

	const tol = 1e-6
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interp := g.Interpolate(tt.start, tt.d, 1.0)
			final := g.Apply(tt.start, tt.d)

			if math.Abs(interp.X-final.X) > tol ||
				math.Abs(interp.Y-final.Y) > tol {
				t.Errorf("position: interpolated (%v, %v), discrete (%v, %v)",
					interp.X, interp.Y, final.X, final.Y)
			}
			if math.Abs(NormalizeAngle(interp.Heading-final.Heading)) > tol {
				t.Errorf("heading: interpolated %v, discrete %v",
					interp.Heading, final.Heading)
			}
		})
	}
}

func TestInterpolate_RotationKeepsPosition(t *testing.T) {
	g := testGeometry()
	start := Pose{X: 12, Y: -7, Heading: 0.3}

	for _, progress := range []float64{0, 0.25, 0.5, 0.75, 1} {
		p := g.Interpolate(start, Delta{Left: 30, Right: -30}, progress)
		if !floatEquals(p.X, start.X) || !floatEquals(p.Y, start.Y) {
			t.Errorf("progress %v: position drifted to (%v, %v)", progress, p.X, p.Y)
		}
	}
}

func TestInterpolate_ClampsProgress(t *testing.T) {
	g := testGeometry()
	d := Delta{Left: 50, Right: 50}

	over := g.Interpolate(Pose{}, d, 1.5)
	full := g.Interpolate(Pose{}, d, 1.0)
	if !floatEquals(over.X, full.X) {
		t.Errorf("progress above 1 not clamped: %v vs %v", over.X, full.X)
	}

	under := g.Interpolate(Pose{X: 3}, d, -0.5)
	if !floatEquals(under.X, 3) {
		t.Errorf("progress below 0 not clamped: %v", under.X)
	}
}
