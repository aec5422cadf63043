package sim

import (
	"errors"
	"fmt"

	"github.com/terrapen/go-terrapen/pkg/kinematics"
)

// ErrInvalidConfig is wrapped by all configuration validation failures.
var ErrInvalidConfig = errors.New("invalid robot config")

// Default hardware values, matching the shipped plotter build.
const (
	DefaultWheelDiameterMM    = 25.0
	DefaultWheelbaseMM        = 30.0
	DefaultStepsPerRevolution = 2048
	DefaultMaxStepFrequencyHz = 1000
	DefaultPenUpAngle         = 90
	DefaultPenDownAngle       = 0
	DefaultAnimationFPS       = 12
	DefaultTrailInterval      = 0.03
)

// Config is the robot hardware and simulation configuration. It is
// immutable for the lifetime of an engine; replace the whole value to
// change it.
type Config struct {
	WheelDiameterMM    float64 `json:"wheel_diameter_mm"`
	WheelbaseMM        float64 `json:"wheelbase_mm"`
	StepsPerRevolution int     `json:"steps_per_revolution"`
	MaxStepFrequencyHz int     `json:"max_step_frequency_hz"`

	// Servo angles in degrees that select each pen position.
	PenUpAngle   int `json:"servo_pen_up_angle"`
	PenDownAngle int `json:"servo_pen_down_angle"`

	// Simulation tuning.
	AnimationFPS int `json:"animation_fps"`
	// TrailInterval is the minimum progress fraction between sampled
	// trail points while the pen is down.
	TrailInterval float64 `json:"trail_point_interval"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		WheelDiameterMM:    DefaultWheelDiameterMM,
		WheelbaseMM:        DefaultWheelbaseMM,
		StepsPerRevolution: DefaultStepsPerRevolution,
		MaxStepFrequencyHz: DefaultMaxStepFrequencyHz,
		PenUpAngle:         DefaultPenUpAngle,
		PenDownAngle:       DefaultPenDownAngle,
		AnimationFPS:       DefaultAnimationFPS,
		TrailInterval:      DefaultTrailInterval,
	}
}

// Validate rejects configurations that would break the kinematics.
// The geometry fields must be strictly positive.
func (c Config) Validate() error {
	if c.WheelDiameterMM <= 0 {
		return fmt.Errorf("%w: wheel diameter %vmm must be positive", ErrInvalidConfig, c.WheelDiameterMM)
	}
	if c.WheelbaseMM <= 0 {
		return fmt.Errorf("%w: wheelbase %vmm must be positive", ErrInvalidConfig, c.WheelbaseMM)
	}
	if c.StepsPerRevolution <= 0 {
		return fmt.Errorf("%w: steps per revolution %d must be positive", ErrInvalidConfig, c.StepsPerRevolution)
	}
	if c.PenUpAngle == c.PenDownAngle {
		return fmt.Errorf("%w: pen up and pen down servo angles are both %d", ErrInvalidConfig, c.PenUpAngle)
	}
	return nil
}

// Geometry extracts the drivetrain dimensions for the kinematics layer.
func (c Config) Geometry() kinematics.Geometry {
	return kinematics.Geometry{
		WheelDiameterMM:    c.WheelDiameterMM,
		WheelbaseMM:        c.WheelbaseMM,
		StepsPerRevolution: c.StepsPerRevolution,
	}
}
