package websocket_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/auction-arena/internal/auction"
	"github.com/nikhil/auction-arena/internal/websocket"
)

func TestHub_PublishNeverBlocksEngine(t *testing.T) {
	// The hub loop is deliberately not running, so nothing drains the
	// event queue. Publishing past its capacity must drop events
	// instead of stalling the caller, which holds the engine's loop.
	h := websocket.NewHub()
	auctionID := uuid.New()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1024; i++ {
			h.Publish(auctionID, auction.Event{
				Type:      auction.EventTimerTick,
				AuctionID: auctionID,
				At:        time.Now(),
			})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "publish blocked on a full event queue")
	}
}
