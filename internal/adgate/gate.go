// Package adgate implements the simulated-ad countdown that gates a meal reveal.
//
// A Gate moves Idle → Counting(n) → ... → Counting(0) → Closed → Idle. Each
// completed countdown fires its callback exactly once, strictly after the
// count reaches zero. Starting again while counting replaces the running
// countdown; Stop cancels it. Both are safe to call repeatedly.
package adgate

import (
	"fmt"
	"sync"
	"time"
)

// State is the gate's phase.
type State int

const (
	Idle State = iota
	Counting
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Counting:
		return "counting"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// MarshalText renders the state by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = Idle
	case "counting":
		*s = Counting
	case "closed":
		*s = Closed
	default:
		return fmt.Errorf("adgate: unknown state %q", b)
	}
	return nil
}

// Ticker is the repeating tick source. *time.Ticker is adapted by realTicker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

// Snapshot is a point-in-time view of a gate.
type Snapshot struct {
	State     State `json:"state"`
	Remaining int   `json:"remaining"`
	Cycle     int   `json:"cycle"`
}

// Gate is one countdown. The zero value is not usable; call New.
type Gate struct {
	interval  time.Duration
	newTicker TickerFunc

	mu        sync.Mutex
	state     State
	remaining int
	cycle     int
	stop      chan struct{} // closed to cancel the running countdown; nil when none
}

// Option configures a Gate.
type Option func(*Gate)

// WithInterval sets the tick period (default one second).
func WithInterval(d time.Duration) Option {
	return func(g *Gate) { g.interval = d }
}

// WithTicker replaces the tick source, mainly for tests.
func WithTicker(f TickerFunc) Option {
	return func(g *Gate) { g.newTicker = f }
}

// New returns an idle gate.
func New(opts ...Option) *Gate {
	g := &Gate{interval: time.Second, newTicker: NewRealTicker}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Start begins a countdown of n ticks and calls onClosed once it reaches zero.
// A countdown already in progress is cancelled first and its callback never
// fires. Returns the cycle number of the new countdown.
func (g *Gate) Start(n int, onClosed func()) int {
	if n < 0 {
		n = 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cancelLocked()
	g.cycle++
	g.state = Counting
	g.remaining = n
	stop := make(chan struct{})
	g.stop = stop

	var t Ticker
	if n > 0 {
		t = g.newTicker(g.interval)
	}
	go g.run(stop, t, onClosed)
	return g.cycle
}

// Stop cancels a running countdown and returns the gate to Idle. Calling it on
// an idle or already-stopped gate is a no-op.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stop == nil {
		return
	}
	g.cancelLocked()
	g.state = Idle
	g.remaining = 0
}

// Snapshot returns the current state.
func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{State: g.state, Remaining: g.remaining, Cycle: g.cycle}
}

// Counting reports whether a countdown is in progress.
func (g *Gate) Counting() bool {
	return g.Snapshot().State == Counting
}

func (g *Gate) cancelLocked() {
	if g.stop != nil {
		close(g.stop)
		g.stop = nil
	}
}

// run drives one countdown. It exits without touching the gate once stop is
// closed, so a superseded countdown can never decrement or fire.
func (g *Gate) run(stop chan struct{}, t Ticker, onClosed func()) {
	if t != nil {
		defer t.Stop()
	}
	for {
		g.mu.Lock()
		if g.stop != stop {
			g.mu.Unlock()
			return
		}
		if g.remaining == 0 {
			g.state = Closed
			g.stop = nil
			cycle := g.cycle
			g.mu.Unlock()

			if onClosed != nil {
				onClosed()
			}

			g.mu.Lock()
			// A Start during the callback owns the gate now.
			if g.cycle == cycle && g.state == Closed {
				g.state = Idle
			}
			g.mu.Unlock()
			return
		}
		g.mu.Unlock()

		select {
		case <-stop:
			return
		case <-t.C():
			g.mu.Lock()
			if g.stop == stop && g.remaining > 0 {
				g.remaining--
			}
			g.mu.Unlock()
		}
	}
}
