package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terrapen/go-terrapen/pkg/protocol"
	"github.com/terrapen/go-terrapen/pkg/sim"
)

func TestNewClient_URL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://localhost:8090", want: "ws://localhost:8090/ws/state"},
		{in: "https://plotter.local", want: "wss://plotter.local/ws/state"},
		{in: "ws://localhost:8090/", want: "ws://localhost:8090/ws/state"},
		{in: "ftp://localhost", wantErr: true},
	}
	for _, tt := range tests {
		c, err := NewClient(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewClient(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && c.wsURL != tt.want {
			t.Errorf("NewClient(%q) url = %q, want %q", tt.in, c.wsURL, tt.want)
		}
	}
}

func TestDispatch(t *testing.T) {
	c, err := NewClient("http://localhost:8090")
	if err != nil {
		t.Fatal(err)
	}

	stateMsg, _ := protocol.NewMessage(protocol.TypeState, protocol.StateData{JobID: "j1"})
	stateBytes, _ := stateMsg.Bytes()
	c.dispatch(stateBytes)

	select {
	case state := <-c.States():
		if state.JobID != "j1" {
			t.Errorf("job id = %q, want j1", state.JobID)
		}
	default:
		t.Fatal("no state delivered")
	}

	trailMsg, _ := protocol.NewMessage(protocol.TypeTrail, map[string][]sim.Point{
		"trail": {{X: 1, Y: 2}},
	})
	trailBytes, _ := trailMsg.Bytes()
	c.dispatch(trailBytes)

	select {
	case trail := <-c.Trails():
		if len(trail) != 1 || trail[0].X != 1 {
			t.Errorf("trail = %+v", trail)
		}
	default:
		t.Fatal("no trail delivered")
	}

	// Garbage must be dropped, not panic or block.
	c.dispatch([]byte("{broken"))
}

func TestDispatch_KeepsFreshestState(t *testing.T) {
	c, err := NewClient("http://localhost:8090")
	if err != nil {
		t.Fatal(err)
	}

	// Overfill the buffer; the oldest state should be evicted.
	for i := 0; i < cap(c.states)+5; i++ {
		msg, _ := protocol.NewMessage(protocol.TypeState, protocol.StateData{QueueLength: i})
		data, _ := msg.Bytes()
		c.dispatch(data)
	}

	var last protocol.StateData
	for {
		select {
		case state := <-c.States():
			last = state
			continue
		default:
		}
		break
	}
	if last.QueueLength != cap(c.states)+4 {
		t.Errorf("freshest state queue length = %d, want %d", last.QueueLength, cap(c.states)+4)
	}
}

func TestRun_ReceivesStream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		msg, _ := protocol.NewMessage(protocol.TypeState, protocol.StateData{JobID: "stream-job"})
		data, _ := msg.Bytes()
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	select {
	case state := <-c.States():
		if state.JobID != "stream-job" {
			t.Errorf("job id = %q, want stream-job", state.JobID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for state")
	}
}
