package auction

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/domain"
)

type EventType string

const (
	EventAuctionUpdated EventType = "auction-updated"
	EventBidPlaced      EventType = "bid-placed"
	EventTeamUpdated    EventType = "team-updated"
	EventTimerTick      EventType = "timer-tick"
	EventTimerExpired   EventType = "timer-expired"
)

// Event is one committed state change broadcast to observers. Events
// are published only after the change is durable.
type Event struct {
	Type      EventType   `json:"type"`
	AuctionID uuid.UUID   `json:"auctionId"`
	At        time.Time   `json:"at"`
	Payload   interface{} `json:"payload,omitempty"`
}

// BidPlacedPayload accompanies bid-placed events.
type BidPlacedPayload struct {
	Bid   *domain.Bid    `json:"bid"`
	State *StateSnapshot `json:"state"`
}

// TeamUpdatedPayload accompanies team-updated events after a sale or
// reversal changes a team's balance.
type TeamUpdatedPayload struct {
	Teams []TeamState    `json:"teams"`
	State *StateSnapshot `json:"state"`
}

// TimerTickPayload carries the countdown value.
type TimerTickPayload struct {
	Remaining int `json:"remaining"`
}

// Notifier broadcasts committed transitions to observers. Any
// transport that delivers order-preserving, at-least-once
// notifications per auction id satisfies the contract.
type Notifier interface {
	Publish(auctionID uuid.UUID, event Event)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) Publish(uuid.UUID, Event) {}
