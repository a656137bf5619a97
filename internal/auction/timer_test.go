package auction_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/auction-arena/internal/auction"
)

// tickRecorder collects tick and expiry callbacks for assertions.
type tickRecorder struct {
	mu      sync.Mutex
	ticks   []int
	expired int
	tickCh  chan int
	expCh   chan struct{}
}

func newTickRecorder() *tickRecorder {
	return &tickRecorder{
		tickCh: make(chan int, 100),
		expCh:  make(chan struct{}, 10),
	}
}

func (r *tickRecorder) onTick(remaining int) {
	r.mu.Lock()
	r.ticks = append(r.ticks, remaining)
	r.mu.Unlock()
	r.tickCh <- remaining
}

func (r *tickRecorder) onExpired() {
	r.mu.Lock()
	r.expired++
	r.mu.Unlock()
	r.expCh <- struct{}{}
}

func (r *tickRecorder) waitTick(t *testing.T) int {
	t.Helper()
	select {
	case v := <-r.tickCh:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tick")
		return 0
	}
}

func (r *tickRecorder) waitExpired(t *testing.T) {
	t.Helper()
	select {
	case <-r.expCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for expiry")
	}
}

func TestTimerController_CountsDownAndExpires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newTickRecorder()
	timer := auction.NewTimerController(clock, 3, rec.onTick, rec.onExpired)

	timer.Start()
	clock.BlockUntil(1)

	clock.Advance(time.Second)
	assert.Equal(t, 2, rec.waitTick(t))
	clock.Advance(time.Second)
	assert.Equal(t, 1, rec.waitTick(t))
	clock.Advance(time.Second)
	assert.Equal(t, 0, rec.waitTick(t))
	rec.waitExpired(t)

	assert.Equal(t, 0, timer.Remaining())
}

func TestTimerController_ResetRestoresFullDuration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newTickRecorder()
	timer := auction.NewTimerController(clock, 10, rec.onTick, rec.onExpired)

	timer.Start()
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	assert.Equal(t, 9, rec.waitTick(t))

	// A reset (accepted bid) starts the countdown over.
	timer.Reset()
	assert.Equal(t, 10, timer.Remaining())
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	assert.Equal(t, 9, rec.waitTick(t))
}

func TestTimerController_PauseFreezesAndResumeContinues(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newTickRecorder()
	timer := auction.NewTimerController(clock, 10, rec.onTick, rec.onExpired)

	timer.Start()
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	assert.Equal(t, 9, rec.waitTick(t))

	remaining := timer.Pause()
	assert.Equal(t, 9, remaining)

	// Time passing while paused must not move the clock.
	clock.Advance(5 * time.Second)
	assert.Equal(t, 9, timer.Remaining())

	// Resume continues from the frozen value, not a full reset.
	timer.Resume()
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	assert.Equal(t, 8, rec.waitTick(t))
}

func TestTimerController_ResumeAfterExpiryIsNoop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newTickRecorder()
	timer := auction.NewTimerController(clock, 1, rec.onTick, rec.onExpired)

	timer.Start()
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	rec.waitExpired(t)

	timer.Resume()
	clock.Advance(5 * time.Second)

	rec.mu.Lock()
	expired := rec.expired
	rec.mu.Unlock()
	require.Equal(t, 1, expired, "an expired timer must not fire again")
}

func TestTimerController_StopHaltsCallbacks(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := newTickRecorder()
	timer := auction.NewTimerController(clock, 10, rec.onTick, rec.onExpired)

	timer.Start()
	clock.BlockUntil(1)
	timer.Stop()

	clock.Advance(3 * time.Second)

	select {
	case v := <-rec.tickCh:
		t.Fatalf("unexpected tick %d after stop", v)
	case <-time.After(100 * time.Millisecond):
	}
}
