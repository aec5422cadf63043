// Package tui renders the plotter workspace in the terminal. Local
// mode owns an engine and drives it from key presses; watch mode
// follows a running server's telemetry stream instead.
package tui

import (
	"context"
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/terrapen/go-terrapen/pkg/motion"
	"github.com/terrapen/go-terrapen/pkg/paths"
	"github.com/terrapen/go-terrapen/pkg/protocol"
	"github.com/terrapen/go-terrapen/pkg/sim"
	"github.com/terrapen/go-terrapen/pkg/telemetry"
)

// Key-driven motion increments.
const (
	nudgeDistanceMM = 10.0
	nudgeAngleDeg   = 15.0
	demoSizeMM      = 60.0
)

// TickMsg drives the local engine at the animation rate.
type TickMsg time.Time

type stateMsg protocol.StateData
type trailMsg []sim.Point
type streamClosedMsg struct{}

// shared holds state every Bubble Tea model copy must see. The
// framework passes models by value, so mutable engine state lives
// behind this pointer.
type shared struct {
	seq    *motion.Sequencer
	gen    paths.Generator
	client *telemetry.Client
	cancel context.CancelFunc
}

// Model is the root Bubble Tea model.
type Model struct {
	width  int
	height int

	cfg       sim.Config
	watch     bool
	serverURL string

	shared *shared

	state protocol.StateData
	trail []sim.Point
	note  string
}

// NewLocal builds an interactive model around a fresh engine.
func NewLocal(cfg sim.Config) (Model, error) {
	simulator, err := sim.New(cfg)
	if err != nil {
		return Model{}, err
	}
	return Model{
		cfg: cfg,
		shared: &shared{
			seq: motion.NewSequencer(simulator),
			gen: paths.NewGenerator(cfg),
		},
	}, nil
}

// NewWatch builds a read-only model following a remote server.
func NewWatch(serverURL string) (Model, error) {
	client, err := telemetry.NewClient(serverURL)
	if err != nil {
		return Model{}, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	go client.Run(ctx)

	return Model{
		watch:     true,
		serverURL: serverURL,
		shared: &shared{
			client: client,
			cancel: cancel,
		},
	}, nil
}

func (m Model) Init() tea.Cmd {
	if m.watch {
		return tea.Batch(
			fetchTrailCmd(m.serverURL),
			waitState(m.shared.client),
			waitTrail(m.shared.client),
		)
	}
	return tickCmd(m.cfg.AnimationFPS)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		now := time.Time(msg)
		m.shared.seq.Tick(now)
		m.refreshLocal(now)
		return m, tickCmd(m.cfg.AnimationFPS)

	case stateMsg:
		m.state = protocol.StateData(msg)
		if m.state.PenDown && m.state.Busy {
			m.trail = append(m.trail, sim.Point{X: m.state.X, Y: m.state.Y})
		}
		return m, waitState(m.shared.client)

	case trailMsg:
		m.trail = []sim.Point(msg)
		return m, waitTrail(m.shared.client)

	case streamClosedMsg:
		m.note = "telemetry stream closed"
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.shared.cancel != nil {
			m.shared.cancel()
		}
		return m, tea.Quit
	}

	if m.watch {
		// Watch mode never issues commands.
		return m, nil
	}

	switch msg.String() {
	case "up":
		m.do(motion.Command{Type: motion.CommandMove, DistanceMM: nudgeDistanceMM, PenDown: m.penDown()})
	case "down":
		m.do(motion.Command{Type: motion.CommandMove, DistanceMM: -nudgeDistanceMM, PenDown: m.penDown()})
	case "left":
		// Counter-clockwise turns are negative rotation angles.
		m.do(motion.Command{Type: motion.CommandRotate, AngleDegrees: -nudgeAngleDeg})
	case "right":
		m.do(motion.Command{Type: motion.CommandRotate, AngleDegrees: nudgeAngleDeg})
	case "p":
		m.do(motion.Command{Type: motion.CommandSetPen, PenDown: !m.penDown()})
	case "g":
		m.do(motion.Command{Type: motion.CommandGoTo})
	case "s":
		m.enqueue(m.shared.gen.Square(demoSizeMM, motion.DefaultSpeed))
	case "t":
		m.enqueue(m.shared.gen.Triangle(demoSizeMM, motion.DefaultSpeed))
	case "c":
		m.enqueue(m.shared.gen.Circle(demoSizeMM/2, 16, motion.DefaultSpeed))
	case "i":
		m.enqueue(m.shared.gen.Spiral(3, demoSizeMM, motion.DefaultSpeed))
	case "w":
		segs, err := m.shared.gen.Text("HI", demoSizeMM/2, motion.DefaultSpeed)
		if err != nil {
			m.note = err.Error()
			break
		}
		m.enqueue(segs)
	case " ", "space", "esc":
		m.shared.seq.Stop()
		m.note = "stopped"
	case "r":
		m.shared.seq.Reset()
		m.shared.seq.Simulator().ClearTrail()
		m.trail = nil
		m.note = "reset"
	}

	m.refreshLocal(time.Now())
	return m, nil
}

// do issues a single command against the local engine.
func (m *Model) do(cmd motion.Command) {
	if _, err := m.shared.seq.Do(cmd, time.Now()); err != nil {
		m.note = err.Error()
		return
	}
	m.note = ""
}

// enqueue starts a pre-built segment sequence.
func (m *Model) enqueue(segs []sim.Segment) {
	if _, err := m.shared.seq.Enqueue(segs, time.Now()); err != nil {
		m.note = err.Error()
		return
	}
	m.note = ""
}

func (m *Model) penDown() bool {
	return m.shared.seq.Simulator().PenDown()
}

// refreshLocal snapshots the local engine into the display state.
func (m *Model) refreshLocal(now time.Time) {
	seq := m.shared.seq
	state := seq.Simulator().Snapshot(now)
	m.trail = state.Trail
	state.Trail = nil
	m.state = protocol.StateData{
		State:          state,
		JobID:          seq.JobID(),
		QueueLength:    seq.QueueLength(),
		QueueRemaining: seq.Remaining(now).Seconds(),
	}
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing plotter view..."
	}

	menuH := 1
	statusH := 1
	bodyH := m.height - menuH - statusH
	if bodyH < 5 {
		bodyH = 5
	}

	innerW := m.width - 2
	innerH := bodyH - 2
	if innerW < 10 {
		innerW = 10
	}
	if innerH < 5 {
		innerH = 5
	}

	menu := renderMenuBar(m.width, m.watch)
	body := stylePanel.Width(m.width - 2).Render(
		render(innerW, innerH, m.trail, m.state.X, m.state.Y, m.state.Heading))
	status := renderStatusBar(m.width, m.state, m.note)

	return menu + "\n" + body + "\n" + status
}

func tickCmd(fps int) tea.Cmd {
	if fps <= 0 {
		fps = 12
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func waitState(c *telemetry.Client) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-c.States()
		if !ok {
			return streamClosedMsg{}
		}
		return stateMsg(state)
	}
}

func waitTrail(c *telemetry.Client) tea.Cmd {
	return func() tea.Msg {
		trail, ok := <-c.Trails()
		if !ok {
			return streamClosedMsg{}
		}
		return trailMsg(trail)
	}
}

func fetchTrailCmd(baseURL string) tea.Cmd {
	return func() tea.Msg {
		trail, err := telemetry.FetchTrail(baseURL)
		if err != nil {
			return streamClosedMsg{}
		}
		return trailMsg(trail)
	}
}

// headingDegrees converts the engine's radians for display.
func headingDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Run starts the program in the alternate screen.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited: %w", err)
	}
	return nil
}
