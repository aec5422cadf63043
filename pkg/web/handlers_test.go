package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/terrapen/go-terrapen/pkg/protocol"
	"github.com/terrapen/go-terrapen/pkg/sim"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(sim.DefaultConfig(), ":0")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func postJSON(t *testing.T, s *Server, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var state protocol.StateData
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Busy {
		t.Error("fresh server reports busy")
	}
	if state.X != 0 || state.Y != 0 {
		t.Errorf("fresh server at (%v, %v), want origin", state.X, state.Y)
	}
}

func TestHandleCommand(t *testing.T) {
	s := newTestServer(t)

	resp := postJSON(t, s, "/api/command", `{"type": "move", "distance_mm": 100}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("valid command status = %d, want 200", resp.StatusCode)
	}
	var accepted map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if accepted["job_id"] == "" {
		t.Error("accepted command has no job_id")
	}

	// The move is still executing: a second command must be rejected.
	resp = postJSON(t, s, "/api/command", `{"type": "rotate", "angle_degrees": 90}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("command while busy status = %d, want 409", resp.StatusCode)
	}
}

func TestHandleCommand_Invalid(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"type": `},
		{"unknown type", `{"type": "teleport"}`},
		{"negative speed", `{"type": "move", "distance_mm": 10, "speed": -5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, s, "/api/command", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHandleReset(t *testing.T) {
	s := newTestServer(t)

	resp := postJSON(t, s, "/api/command", `{"type": "move", "distance_mm": 50}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("command status = %d, want 200", resp.StatusCode)
	}

	resp = postJSON(t, s, "/api/reset", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status = %d, want 200", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	statusResp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	var state protocol.StateData
	if err := json.NewDecoder(statusResp.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Busy {
		t.Error("busy after reset")
	}
	if state.JobID != "" {
		t.Errorf("job id %q survived reset", state.JobID)
	}
}

func TestHandleTrail(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/trail", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Trail []sim.Point `json:"trail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Trail) != 0 {
		t.Errorf("fresh server has %d trail points", len(body.Trail))
	}
}
