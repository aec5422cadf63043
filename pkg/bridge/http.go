package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/terrapen/go-terrapen/internal/httpc"
)

// HTTPBridge implements Controller against the plotter's onboard HTTP
// API. The controller accepts commands as JSON posts and reports a
// status object; see the command constants for the vocabulary.
type HTTPBridge struct {
	BaseURL string
	client  *http.Client
}

// Command names understood by the controller firmware.
const (
	cmdMoveTo  = "move_to"
	cmdDrawTo  = "draw_to"
	cmdPenUp   = "pen_up"
	cmdPenDown = "pen_down"
	cmdHome    = "home"
	cmdStop    = "stop"
)

// NewHTTPBridge creates a bridge for a controller at the given host.
func NewHTTPBridge(host string) *HTTPBridge {
	return &HTTPBridge{
		BaseURL: fmt.Sprintf("http://%s", host),
		client:  httpc.Client,
	}
}

// MoveTo sends the robot to a workspace position, pen up or down.
func (b *HTTPBridge) MoveTo(x, y float64, penDown bool) error {
	return b.post(map[string]interface{}{
		"command":  cmdMoveTo,
		"x":        x,
		"y":        y,
		"pen_down": penDown,
	})
}

// DrawTo moves to a position with the pen down.
func (b *HTTPBridge) DrawTo(x, y float64) error {
	return b.post(map[string]interface{}{
		"command": cmdDrawTo,
		"x":       x,
		"y":       y,
	})
}

// PenUp raises the pen.
func (b *HTTPBridge) PenUp() error {
	return b.post(map[string]interface{}{"command": cmdPenUp})
}

// PenDown lowers the pen.
func (b *HTTPBridge) PenDown() error {
	return b.post(map[string]interface{}{"command": cmdPenDown})
}

// Home returns the robot to the workspace origin.
func (b *HTTPBridge) Home() error {
	return b.post(map[string]interface{}{"command": cmdHome})
}

// Stop halts all motion immediately.
func (b *HTTPBridge) Stop() error {
	return b.post(map[string]interface{}{"command": cmdStop})
}

// Status queries the controller's state report.
func (b *HTTPBridge) Status() (Status, error) {
	resp, err := b.client.Get(b.BaseURL + "/api/status")
	if err != nil {
		return Status{}, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Status{}, fmt.Errorf("status request returned %s", resp.Status)
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return Status{}, fmt.Errorf("failed to decode status: %w", err)
	}
	return status, nil
}

// post sends a command payload to the controller.
func (b *HTTPBridge) post(payload map[string]interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal command payload: %w", err)
	}

	resp, err := b.client.Post(
		b.BaseURL+"/api/command",
		"application/json",
		bytes.NewReader(data),
	)
	if err != nil {
		return fmt.Errorf("command request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("command %v rejected: %s", payload["command"], resp.Status)
	}
	return nil
}
