package auction

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TimerController runs the per-auction countdown. It ticks once per
// second while running, invoking onTick with the remaining seconds and
// onExpired once when the countdown hits zero. It never mutates
// auction state itself; both callbacks only enqueue notifications, so
// single-writer semantics are preserved.
type TimerController struct {
	clock     clockwork.Clock
	duration  int
	onTick    func(remaining int)
	onExpired func()

	mu        sync.Mutex
	remaining int
	running   bool
	stop      chan struct{}
	ticker    clockwork.Ticker
}

func NewTimerController(clock clockwork.Clock, durationSeconds int, onTick func(int), onExpired func()) *TimerController {
	return &TimerController{
		clock:     clock,
		duration:  durationSeconds,
		onTick:    onTick,
		onExpired: onExpired,
		remaining: durationSeconds,
	}
}

// Start begins (or restarts) the countdown from the full duration.
func (t *TimerController) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remaining = t.duration
	t.startLocked()
}

// Reset restarts the countdown from the full duration. Called on every
// accepted bid.
func (t *TimerController) Reset() {
	t.Start()
}

// Pause freezes the countdown and returns the remaining seconds.
func (t *TimerController) Pause() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	return t.remaining
}

// Resume continues from the frozen value, not a full reset.
func (t *TimerController) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remaining <= 0 {
		return
	}
	t.startLocked()
}

// Stop halts the countdown for teardown.
func (t *TimerController) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Remaining returns the seconds left on the clock.
func (t *TimerController) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// startLocked creates the ticker before returning so that a caller
// observing Start/Reset/Resume complete is guaranteed the new ticker is
// already subscribed to the clock; the replaced goroutine's ticker is
// stopped in the same critical section so it can no longer consume a
// clock advance meant for the new one.
func (t *TimerController) startLocked() {
	t.stopLocked()
	t.running = true
	t.stop = make(chan struct{})
	t.ticker = t.clock.NewTicker(time.Second)
	go t.run(t.stop, t.ticker)
}

func (t *TimerController) stopLocked() {
	if t.running {
		close(t.stop)
		t.ticker.Stop()
		t.running = false
	}
}

func (t *TimerController) run(stop chan struct{}, ticker clockwork.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			t.mu.Lock()
			if !t.running || t.stop != stop {
				t.mu.Unlock()
				return
			}
			t.remaining--
			remaining := t.remaining
			expired := remaining <= 0
			if expired {
				t.running = false
			}
			t.mu.Unlock()

			if remaining >= 0 && t.onTick != nil {
				t.onTick(remaining)
			}
			if expired {
				if t.onExpired != nil {
					t.onExpired()
				}
				return
			}
		}
	}
}
