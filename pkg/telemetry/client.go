// Package telemetry consumes a plotter server's websocket state stream.
// The TUI's watch mode and any external recorder use it to follow a
// running engine without touching the engine itself.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terrapen/go-terrapen/internal/httpc"
	"github.com/terrapen/go-terrapen/internal/log"
	"github.com/terrapen/go-terrapen/pkg/protocol"
	"github.com/terrapen/go-terrapen/pkg/sim"
)

const (
	handshakeTimeout = 10 * time.Second
	initialBackoff   = time.Second
	maxBackoff       = 30 * time.Second
)

// Client follows the /ws/state stream of a plotter server and fans the
// decoded messages out on channels. It reconnects with backoff until
// its context is cancelled.
type Client struct {
	wsURL string

	states chan protocol.StateData
	trails chan []sim.Point
}

// NewClient builds a client for a server base URL such as
// "http://localhost:8090".
func NewClient(serverURL string) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/state"

	return &Client{
		wsURL:  u.String(),
		states: make(chan protocol.StateData, 16),
		trails: make(chan []sim.Point, 4),
	}, nil
}

// States delivers per-tick engine snapshots.
func (c *Client) States() <-chan protocol.StateData {
	return c.states
}

// Trails delivers full trail dumps sent on sequence completion.
func (c *Client) Trails() <-chan []sim.Point {
	return c.trails
}

// Run connects and reads until ctx is cancelled, reconnecting after
// failures. It closes the output channels on return.
func (c *Client) Run(ctx context.Context) {
	defer close(c.states)
	defer close(c.trails)

	backoff := initialBackoff
	for {
		if err := c.readStream(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("telemetry stream dropped", "url", c.wsURL, "err", err, "retry_in", backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// readStream holds one websocket session open and decodes messages
// until it fails or ctx is cancelled.
func (c *Client) readStream(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()
	log.Info("telemetry stream connected", "url", c.wsURL)

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		c.dispatch(data)
	}
}

// dispatch decodes one wire message and forwards it. Full channels
// drop the oldest pending value first so a stalled consumer always
// sees the freshest state.
func (c *Client) dispatch(data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		log.Warn("telemetry message unparseable", "err", err)
		return
	}

	switch msg.Type {
	case protocol.TypeState:
		var state protocol.StateData
		if err := msg.ParseData(&state); err != nil {
			log.Warn("bad state payload", "err", err)
			return
		}
		select {
		case c.states <- state:
		default:
			select {
			case <-c.states:
			default:
			}
			c.states <- state
		}

	case protocol.TypeTrail:
		var payload struct {
			Trail []sim.Point `json:"trail"`
		}
		if err := msg.ParseData(&payload); err != nil {
			log.Warn("bad trail payload", "err", err)
			return
		}
		select {
		case c.trails <- payload.Trail:
		default:
		}

	default:
		// Pings are handled by the websocket layer; anything else is
		// a protocol extension this client does not track.
	}
}

// FetchTrail pulls the full trail over the REST API. Watch mode calls
// it once on startup so drawings made before connecting still render.
func FetchTrail(baseURL string) ([]sim.Point, error) {
	resp, err := httpc.Get(strings.TrimSuffix(baseURL, "/") + "/api/trail")
	if err != nil {
		return nil, fmt.Errorf("trail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trail request returned %s", resp.Status)
	}

	var body struct {
		Trail []sim.Point `json:"trail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode trail: %w", err)
	}
	return body.Trail, nil
}
