// Package motion turns user-level commands into segment sequences and
// feeds them to the simulator one segment at a time.
package motion

import (
	"fmt"

	"github.com/terrapen/go-terrapen/pkg/paths"
	"github.com/terrapen/go-terrapen/pkg/sim"
)

// CommandType tags a Command variant.
type CommandType string

const (
	CommandMove   CommandType = "move"
	CommandRotate CommandType = "rotate"
	CommandSetPen CommandType = "set_pen"
	CommandGoTo   CommandType = "goto"
	CommandStop   CommandType = "stop"
)

// DefaultSpeed is used when a command carries no speed.
const DefaultSpeed = 500

// Command is a typed motion request. Exactly one variant applies,
// selected by Type; unused fields are ignored. This is the only
// command vocabulary the engine accepts, decoupling it from any
// particular input surface (web API, TUI keys, hardware bridge).
type Command struct {
	Type CommandType `json:"type"`

	// Move.
	DistanceMM float64 `json:"distance_mm,omitempty"`

	// Rotate.
	AngleDegrees float64 `json:"angle_degrees,omitempty"`

	// GoTo.
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// Move and SetPen.
	PenDown bool `json:"pen_down,omitempty"`

	// All moving variants; defaults to DefaultSpeed, clamped to the
	// configured maximum step frequency.
	Speed int `json:"speed,omitempty"`
}

// Validate rejects commands the compiler cannot handle.
func (c Command) Validate() error {
	switch c.Type {
	case CommandMove, CommandRotate, CommandSetPen, CommandGoTo, CommandStop:
	default:
		return fmt.Errorf("unknown command type %q", c.Type)
	}
	if c.Speed < 0 {
		return fmt.Errorf("negative speed %d", c.Speed)
	}
	return nil
}

// speed resolves the effective step rate for a command.
func (c Command) speed(cfg sim.Config) int {
	speed := c.Speed
	if speed <= 0 {
		speed = DefaultSpeed
	}
	if cfg.MaxStepFrequencyHz > 0 && speed > cfg.MaxStepFrequencyHz {
		speed = cfg.MaxStepFrequencyHz
	}
	return speed
}

// compile expands a command into segments against the current robot
// state. Stop never reaches here; the sequencer short-circuits it.
func compile(cmd Command, gen paths.Generator, s *sim.Simulator) ([]sim.Segment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	speed := cmd.speed(s.Config())

	switch cmd.Type {
	case CommandMove:
		return []sim.Segment{gen.Straight(cmd.DistanceMM, speed, cmd.PenDown)}, nil
	case CommandRotate:
		return []sim.Segment{gen.Rotation(cmd.AngleDegrees, speed, s.PenDown())}, nil
	case CommandSetPen:
		return []sim.Segment{gen.PenOnly(cmd.PenDown)}, nil
	case CommandGoTo:
		return gen.GoTo(s.Pose(), cmd.X, cmd.Y, speed, s.PenDown()), nil
	default:
		return nil, fmt.Errorf("command %q does not compile to segments", cmd.Type)
	}
}
