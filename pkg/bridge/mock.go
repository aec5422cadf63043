package bridge

import "sync"

// Ensure Mock implements Controller.
var _ Controller = (*Mock)(nil)

// Mock records every command for tests and offline development.
type Mock struct {
	mu sync.Mutex

	MoveCalls []MoveCall
	DrawCalls []DrawCall
	PenCalls  []bool // true = down
	HomeCount int
	StopCount int

	// StatusResult is returned by Status.
	StatusResult Status
	// Err, when set, is returned by every call.
	Err error
}

// MoveCall records one MoveTo invocation.
type MoveCall struct {
	X, Y    float64
	PenDown bool
}

// DrawCall records one DrawTo invocation.
type DrawCall struct {
	X, Y float64
}

func (m *Mock) MoveTo(x, y float64, penDown bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MoveCalls = append(m.MoveCalls, MoveCall{X: x, Y: y, PenDown: penDown})
	return m.Err
}

func (m *Mock) DrawTo(x, y float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DrawCalls = append(m.DrawCalls, DrawCall{X: x, Y: y})
	return m.Err
}

func (m *Mock) PenUp() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PenCalls = append(m.PenCalls, false)
	return m.Err
}

func (m *Mock) PenDown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PenCalls = append(m.PenCalls, true)
	return m.Err
}

func (m *Mock) Home() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HomeCount++
	return m.Err
}

func (m *Mock) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StopCount++
	return m.Err
}

func (m *Mock) Status() (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StatusResult, m.Err
}
