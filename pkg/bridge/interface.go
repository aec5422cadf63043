// Package bridge talks to the physical plotter over its WiFi HTTP API.
//
// The interfaces are small and composable so consumers depend only on
// the capabilities they use: a renderer needs StatusReader, a command
// forwarder needs Mover and PenController, an emergency-stop button
// needs only Stopper.
package bridge

// Status is the controller's view of the physical robot.
type Status struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	PenDown bool    `json:"pen_down"`
	// State is a coarse controller-defined label such as "idle",
	// "moving" or "error".
	State string `json:"state"`
}

// Mover provides positioning commands.
type Mover interface {
	MoveTo(x, y float64, penDown bool) error
	DrawTo(x, y float64) error
}

// PenController raises and lowers the pen servo.
type PenController interface {
	PenUp() error
	PenDown() error
}

// Homer returns the robot to its origin.
type Homer interface {
	Home() error
}

// Stopper halts all motion immediately.
type Stopper interface {
	Stop() error
}

// StatusReader queries the robot state.
type StatusReader interface {
	Status() (Status, error)
}

// Controller is the composite interface for full plotter control.
type Controller interface {
	Mover
	PenController
	Homer
	Stopper
	StatusReader
}

// Ensure HTTPBridge implements Controller.
var _ Controller = (*HTTPBridge)(nil)
