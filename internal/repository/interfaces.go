package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserSession, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type AuctionRepository interface {
	Create(ctx context.Context, auction *domain.Auction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error)
	Update(ctx context.Context, auction *domain.Auction) error
	GetByHostID(ctx context.Context, hostID uuid.UUID, limit, offset int) ([]*domain.Auction, error)
}

type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error)
	GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*domain.Team, error)
	GetByCaptain(ctx context.Context, auctionID, captainID uuid.UUID) (*domain.Team, error)
	Update(ctx context.Context, team *domain.Team) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PlayerRepository interface {
	Create(ctx context.Context, player *domain.Player) error
	CreateMany(ctx context.Context, players []*domain.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error)
	GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*domain.Player, error)
	Update(ctx context.Context, player *domain.Player) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type BidRepository interface {
	Create(ctx context.Context, bid *domain.Bid) error
	GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error)
	GetByPlayerID(ctx context.Context, playerID uuid.UUID) ([]*domain.Bid, error)
	MarkUndone(ctx context.Context, ids []uuid.UUID) error
	MarkAllUndone(ctx context.Context, auctionID uuid.UUID) error
}

type SetupDraftRepository interface {
	Upsert(ctx context.Context, draft *domain.SetupDraft) error
	GetByHostID(ctx context.Context, hostID uuid.UUID) (*domain.SetupDraft, error)
	DeleteByHostID(ctx context.Context, hostID uuid.UUID) error
}

type Repositories struct {
	User       UserRepository
	Session    SessionRepository
	Auction    AuctionRepository
	Team       TeamRepository
	Player     PlayerRepository
	Bid        BidRepository
	SetupDraft SetupDraftRepository
}
