package motion

import (
	"time"

	"github.com/google/uuid"

	"github.com/terrapen/go-terrapen/internal/log"
	"github.com/terrapen/go-terrapen/pkg/paths"
	"github.com/terrapen/go-terrapen/pkg/sim"
)

// Sequencer owns the segment queue and drives the simulator through
// it. The simulator executes one segment at a time; the sequencer
// starts the next one on each completion. Like the simulator it is
// single-threaded and tick-driven.
type Sequencer struct {
	sim *sim.Simulator
	gen paths.Generator

	queue  []sim.Segment
	cursor int
	jobID  string
}

// NewSequencer wraps a simulator.
func NewSequencer(s *sim.Simulator) *Sequencer {
	return &Sequencer{
		sim: s,
		gen: paths.NewGenerator(s.Config()),
	}
}

// Simulator exposes the wrapped engine for read access.
func (q *Sequencer) Simulator() *sim.Simulator {
	return q.sim
}

// Enqueue replaces the queue with the given sequence and immediately
// starts its first segment. It returns a job ID for telemetry.
// Callers must check Busy first: enqueuing while a segment executes
// fails with sim.ErrBusy and leaves the running work untouched.
func (q *Sequencer) Enqueue(segs []sim.Segment, now time.Time) (string, error) {
	if len(segs) == 0 {
		return "", nil
	}
	if q.sim.Busy() {
		return "", sim.ErrBusy
	}

	q.queue = segs
	q.cursor = 0
	q.jobID = uuid.NewString()

	if err := q.sim.Start(segs[0], now); err != nil {
		q.clear()
		return "", err
	}

	log.Info("sequence started",
		"job_id", q.jobID,
		"segments", len(segs),
		"total_duration", paths.TotalDuration(segs))
	return q.jobID, nil
}

// Do compiles a command and enqueues the result. Stop commands abort
// the current work instead.
func (q *Sequencer) Do(cmd Command, now time.Time) (string, error) {
	if cmd.Type == CommandStop {
		q.Stop()
		return "", nil
	}
	segs, err := compile(cmd, q.gen, q.sim)
	if err != nil {
		return "", err
	}
	return q.Enqueue(segs, now)
}

// Tick advances the simulator and chains queued segments. It returns
// TickCompleted only when the whole queue has drained; completions of
// intermediate segments report as TickRunning.
func (q *Sequencer) Tick(now time.Time) sim.TickStatus {
	status := q.sim.Tick(now)
	if status != sim.TickCompleted {
		return status
	}
	if len(q.queue) == 0 {
		// A manually started segment finished; nothing to chain.
		return sim.TickCompleted
	}

	q.cursor++
	if q.cursor < len(q.queue) {
		if err := q.sim.Start(q.queue[q.cursor], now); err != nil {
			// Cannot happen from idle, but never strand the queue.
			log.Error("failed to start queued segment", "err", err)
			q.clear()
			return sim.TickCompleted
		}
		return sim.TickRunning
	}

	log.Info("sequence completed", "job_id", q.jobID)
	q.clear()
	return sim.TickCompleted
}

// Stop aborts the current segment and discards the queue. The pose
// stays wherever interpolation left it.
func (q *Sequencer) Stop() {
	q.sim.Stop()
	q.clear()
}

// Reset stops everything and returns the robot to the origin.
func (q *Sequencer) Reset() {
	q.sim.Reset()
	q.clear()
}

// Active reports whether queued segments remain.
func (q *Sequencer) Active() bool {
	return len(q.queue) > 0
}

// JobID returns the current sequence's ID, empty when idle.
func (q *Sequencer) JobID() string {
	return q.jobID
}

// QueueLength returns how many segments the current sequence holds.
func (q *Sequencer) QueueLength() int {
	return len(q.queue)
}

// Remaining estimates the time left for the whole queue: the rest of
// the current segment plus every segment not yet started.
func (q *Sequencer) Remaining(now time.Time) time.Duration {
	total := q.sim.TimeRemaining(now)
	for i := q.cursor + 1; i < len(q.queue); i++ {
		total += q.queue[i].Duration()
	}
	return total
}

func (q *Sequencer) clear() {
	q.queue = nil
	q.cursor = 0
	q.jobID = ""
}
