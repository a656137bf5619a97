package auction

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/domain"
)

// ChangeSet is everything one committed transition needs persisted.
// The store applies it atomically: either every record lands or none
// do, so the engine can roll back its in-memory state on failure and
// never diverge from durable state.
type ChangeSet struct {
	Auction      *domain.Auction
	Teams        []*domain.Team
	Players      []*domain.Player
	NewBid       *domain.Bid
	UndoneBidIDs []uuid.UUID
	ClearBids    bool
}

// Store is the narrow persistence contract the engine consumes. The
// durable engine behind it is not the core's concern.
type Store interface {
	LoadAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error)
	LoadTeams(ctx context.Context, auctionID uuid.UUID) ([]*domain.Team, error)
	LoadPlayers(ctx context.Context, auctionID uuid.UUID) ([]*domain.Player, error)
	LoadBids(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error)
	Apply(ctx context.Context, cs *ChangeSet) error
}
