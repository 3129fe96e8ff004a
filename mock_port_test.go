package bk178x

import (
	"errors"
	"sync"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// readStep is one scripted Read result. delay is added to the clock before
// the data is returned.
type readStep struct {
	data  []byte
	delay time.Duration
	err   error
}

// mockPort is a scripted SerialPort. When no read step is queued, Read
// behaves like an expired read timeout: it advances the clock by the
// current timeout and returns (0, nil).
type mockPort struct {
	mu sync.Mutex

	clock *fakeClock

	writes   [][]byte
	writeErr error
	// writeChunk, when positive, caps the bytes accepted per Write call.
	writeChunk int

	reads    []readStep
	timeouts []time.Duration
	timeout  time.Duration

	// respond, if set, is called with every complete written frame and its
	// result is queued as read data.
	respond func(req Frame) []byte
	pending []byte

	closed    bool
	closeErr  error
	closeHits int

	dtr, rts bool
}

func newMockPort(clock *fakeClock) *mockPort {
	return &mockPort{clock: clock}
}

func (m *mockPort) queue(steps ...readStep) {
	m.mu.Lock()
	m.reads = append(m.reads, steps...)
	m.mu.Unlock()
}

func (m *mockPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, errors.New("mock: write on closed port")
	}
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	n := len(p)
	if m.writeChunk > 0 && n > m.writeChunk {
		n = m.writeChunk
	}
	m.pending = append(m.pending, p[:n]...)
	if len(m.pending) >= FrameSize {
		var req Frame
		copy(req[:], m.pending[:FrameSize])
		m.pending = m.pending[FrameSize:]
		m.writes = append(m.writes, append([]byte(nil), req[:]...))
		if m.respond != nil {
			if reply := m.respond(req); reply != nil {
				m.reads = append(m.reads, readStep{data: reply})
			}
		}
	}
	return n, nil
}

func (m *mockPort) Read(p []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, errors.New("mock: read on closed port")
	}
	if len(m.reads) == 0 {
		timeout := m.timeout
		m.mu.Unlock()
		if m.clock != nil {
			m.clock.Advance(timeout)
		}
		return 0, nil
	}
	step := m.reads[0]
	n := copy(p, step.data)
	if n < len(step.data) {
		m.reads[0] = readStep{data: step.data[n:]}
	} else {
		m.reads = m.reads[1:]
	}
	m.mu.Unlock()

	if m.clock != nil && step.delay > 0 {
		m.clock.Advance(step.delay)
	}
	return n, step.err
}

func (m *mockPort) SetReadTimeout(d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = d
	m.timeouts = append(m.timeouts, d)
	return nil
}

func (m *mockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeHits++
	m.closed = true
	return m.closeErr
}

func (m *mockPort) SetDTR(v bool) error {
	m.mu.Lock()
	m.dtr = v
	m.mu.Unlock()
	return nil
}

func (m *mockPort) SetRTS(v bool) error {
	m.mu.Lock()
	m.rts = v
	m.mu.Unlock()
	return nil
}

func (m *mockPort) writtenFrames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

// replyWith returns a respond func answering every command with code.
func replyWith(code byte) func(Frame) []byte {
	return func(req Frame) []byte {
		f := StatusReplyFrame(req.Address(), code)
		return f[:]
	}
}

func newTestDevice(port *mockPort, clock *fakeClock, opts ...Option) *Device {
	base := []Option{WithClock(clock.Now)}
	return New(port, append(base, opts...)...)
}
