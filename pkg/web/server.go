// Package web exposes the plotter engine over HTTP and websocket. The
// server owns the tick loop: it is the single goroutine that advances
// the sequencer, so handlers hand work over under a mutex and the loop
// broadcasts the resulting state to subscribers.
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/terrapen/go-terrapen/internal/log"
	"github.com/terrapen/go-terrapen/pkg/hub"
	"github.com/terrapen/go-terrapen/pkg/motion"
	"github.com/terrapen/go-terrapen/pkg/protocol"
	"github.com/terrapen/go-terrapen/pkg/sim"
)

// Server drives a sequencer from a ticker and serves its state.
type Server struct {
	app  *fiber.App
	addr string

	// Engine access is serialized: handlers and the tick loop both
	// take mu before touching the sequencer.
	mu  sync.Mutex
	seq *motion.Sequencer
	cfg sim.Config

	stateHub *hub.Hub

	// OnSequenceDone, when set, receives the final state after a
	// sequence drains. The serve command uses it to mirror finished
	// drawings onto real hardware.
	OnSequenceDone func(protocol.StateData)

	// wasBusy is only touched by the tick loop goroutine.
	wasBusy bool

	done chan struct{}
	once sync.Once
}

// NewServer builds a server around a fresh simulator.
func NewServer(cfg sim.Config, addr string) (*Server, error) {
	simulator, err := sim.New(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:     addr,
		seq:      motion.NewSequencer(simulator),
		cfg:      cfg,
		stateHub: hub.New("state"),
		done:     make(chan struct{}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "terrapen",
		DisableStartupMessage: true,
	})

	// CORS for local dashboards.
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/trail", s.handleTrail)
	api.Post("/command", s.handleCommand)
	api.Post("/reset", s.handleReset)

	// WebSocket upgrade middleware.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))

	s.app = app
	return s, nil
}

// Start runs the hub, the tick loop, and the HTTP listener. It blocks
// until the listener stops.
func (s *Server) Start() error {
	go s.stateHub.Run()
	go s.tickLoop()

	log.Info("plotter server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown stops the tick loop and the HTTP listener.
func (s *Server) Shutdown() error {
	s.once.Do(func() { close(s.done) })
	return s.app.Shutdown()
}

// tickLoop advances the engine at the configured animation rate and
// broadcasts state while work is in flight.
func (s *Server) tickLoop() {
	fps := s.cfg.AnimationFPS
	if fps <= 0 {
		fps = 12
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.step(now)
		}
	}
}

// step advances the engine one tick and publishes the outcome. A
// completed tick always broadcasts and fires the completion hook, even
// when the whole sequence fit inside a single tick (pen-only commands,
// short moves at low frame rates).
func (s *Server) step(now time.Time) {
	s.mu.Lock()
	status := s.seq.Tick(now)
	state := s.stateData(now)
	s.mu.Unlock()

	if status == sim.TickIdle && !s.wasBusy {
		return
	}

	s.broadcastState(state)
	if status == sim.TickCompleted {
		s.broadcastTrail()
		if s.OnSequenceDone != nil {
			s.OnSequenceDone(state)
		}
	}
	s.wasBusy = status == sim.TickRunning
}

// stateData assembles the snapshot broadcast on every active tick.
// Trail points travel separately; per-tick frames stay small.
func (s *Server) stateData(now time.Time) protocol.StateData {
	state := s.seq.Simulator().Snapshot(now)
	state.Trail = nil
	return protocol.StateData{
		State:          state,
		JobID:          s.seq.JobID(),
		QueueLength:    s.seq.QueueLength(),
		QueueRemaining: s.seq.Remaining(now).Seconds(),
	}
}

func (s *Server) broadcastState(state protocol.StateData) {
	msg, err := protocol.NewMessage(protocol.TypeState, state)
	if err != nil {
		log.Error("failed to build state message", "err", err)
		return
	}
	data, err := msg.Bytes()
	if err != nil {
		log.Error("failed to encode state message", "err", err)
		return
	}
	s.stateHub.Broadcast(data)
}

func (s *Server) broadcastTrail() {
	s.mu.Lock()
	trail := s.seq.Simulator().Trail()
	s.mu.Unlock()

	msg, err := protocol.NewMessage(protocol.TypeTrail, fiber.Map{"trail": trail})
	if err != nil {
		log.Error("failed to build trail message", "err", err)
		return
	}
	data, err := msg.Bytes()
	if err != nil {
		log.Error("failed to encode trail message", "err", err)
		return
	}
	s.stateHub.Broadcast(data)
}
