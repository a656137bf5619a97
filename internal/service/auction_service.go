package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nikhil/auction-arena/internal/auction"
	"github.com/nikhil/auction-arena/internal/domain"
	"github.com/nikhil/auction-arena/internal/repository"
)

// AuctionService is the host-facing application layer over the auction
// engines. It owns authorization (who may host, who may bid) and
// entity lifecycle; every live mutation goes through the per-auction
// engine, never directly to the store.
type AuctionService struct {
	auctionRepo repository.AuctionRepository
	teamRepo    repository.TeamRepository
	playerRepo  repository.PlayerRepository
	bidRepo     repository.BidRepository
	manager     *auction.Manager
}

func NewAuctionService(
	auctionRepo repository.AuctionRepository,
	teamRepo repository.TeamRepository,
	playerRepo repository.PlayerRepository,
	bidRepo repository.BidRepository,
	manager *auction.Manager,
) *AuctionService {
	return &AuctionService{
		auctionRepo: auctionRepo,
		teamRepo:    teamRepo,
		playerRepo:  playerRepo,
		bidRepo:     bidRepo,
		manager:     manager,
	}
}

type CreateAuctionInput struct {
	HostID              uuid.UUID
	Name                string
	MaxTokensPerCaptain int64
	MinBidAmount        int64
	MinIncrement        int64
	UseFixedIncrements  bool
	IncrementRanges     *domain.IncrementRanges
	UseBasePrice        bool
	TimerSeconds        int
	PlayerOrderType     domain.PlayerOrderType
}

func (in *CreateAuctionInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: auction name is required", domain.ErrValidation)
	}
	if in.MaxTokensPerCaptain <= 0 {
		return fmt.Errorf("%w: max tokens per captain must be positive", domain.ErrValidation)
	}
	if in.MinBidAmount <= 0 {
		return fmt.Errorf("%w: minimum bid must be positive", domain.ErrValidation)
	}
	if in.UseFixedIncrements && in.MinIncrement <= 0 {
		return fmt.Errorf("%w: minimum increment must be positive", domain.ErrValidation)
	}
	if !in.UseFixedIncrements {
		r := in.IncrementRanges
		if r == nil {
			return fmt.Errorf("%w: increment ranges are required for tiered increments", domain.ErrValidation)
		}
		if r.Boundary1 <= 0 || r.Boundary2 <= r.Boundary1 {
			return fmt.Errorf("%w: increment boundaries must be ascending", domain.ErrValidation)
		}
		if r.Increment1 <= 0 || r.Increment2 <= 0 || r.Increment3 <= 0 {
			return fmt.Errorf("%w: increments must be positive", domain.ErrValidation)
		}
	}
	if in.TimerSeconds <= 0 {
		return fmt.Errorf("%w: timer duration must be positive", domain.ErrValidation)
	}
	switch in.PlayerOrderType {
	case domain.PlayerOrderBasePriceDesc, domain.PlayerOrderBasePriceAsc,
		domain.PlayerOrderAlphabetical, domain.PlayerOrderAlphabeticalDesc,
		domain.PlayerOrderRandom:
	default:
		return fmt.Errorf("%w: unknown player order type %q", domain.ErrValidation, in.PlayerOrderType)
	}
	return nil
}

// CreateAuction creates a draft-stage auction from a finalized
// configuration.
func (s *AuctionService) CreateAuction(ctx context.Context, input CreateAuctionInput) (*domain.Auction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	a := &domain.Auction{
		ID:                  uuid.New(),
		HostID:              input.HostID,
		Name:                input.Name,
		Status:              domain.AuctionStatusDraft,
		TimerSeconds:        input.TimerSeconds,
		MaxTokensPerCaptain: input.MaxTokensPerCaptain,
		MinBidAmount:        input.MinBidAmount,
		MinIncrement:        input.MinIncrement,
		UseFixedIncrements:  input.UseFixedIncrements,
		UseBasePrice:        input.UseBasePrice,
		PlayerOrderType:     input.PlayerOrderType,
	}
	if input.IncrementRanges != nil {
		rangesJSON, err := json.Marshal(input.IncrementRanges)
		if err != nil {
			return nil, err
		}
		a.CustomIncrementRanges = rangesJSON
	}

	if err := s.auctionRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AuctionService) GetAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	return s.auctionRepo.GetByID(ctx, id)
}

func (s *AuctionService) ListByHost(ctx context.Context, hostID uuid.UUID, limit, offset int) ([]*domain.Auction, error) {
	return s.auctionRepo.GetByHostID(ctx, hostID, limit, offset)
}

// GetState returns the live snapshot when an engine is running, or a
// store-derived snapshot for auctions with no live engine.
func (s *AuctionService) GetState(ctx context.Context, auctionID uuid.UUID) (*auction.StateSnapshot, error) {
	a, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !a.Status.IsTerminal() {
		eng, err := s.manager.Engine(ctx, auctionID)
		if err == nil {
			return eng.State(ctx)
		}
	}
	return s.storedState(ctx, a)
}

func (s *AuctionService) storedState(ctx context.Context, a *domain.Auction) (*auction.StateSnapshot, error) {
	teams, err := s.teamRepo.GetByAuctionID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	players, err := s.playerRepo.GetByAuctionID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	bids, err := s.bidRepo.GetByAuctionID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	m, err := auction.NewMachine(a, teams, players, bids, clockwork.NewRealClock())
	if err != nil {
		return nil, err
	}
	snap := m.State()
	snap.TimerRemaining = a.TimerSeconds
	return snap, nil
}

// --- command surface ---

func (s *AuctionService) requireHost(ctx context.Context, auctionID, userID uuid.UUID) error {
	a, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return err
	}
	if a.HostID != userID {
		return domain.ErrNotHost
	}
	return nil
}

func (s *AuctionService) submit(ctx context.Context, auctionID uuid.UUID, cmd auction.Command) (*auction.StateSnapshot, error) {
	eng, err := s.manager.Engine(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return eng.Submit(ctx, cmd)
}

// StartAuction begins bidding. Host only.
func (s *AuctionService) StartAuction(ctx context.Context, auctionID, hostID uuid.UUID) (*auction.StateSnapshot, error) {
	if err := s.requireHost(ctx, auctionID, hostID); err != nil {
		return nil, err
	}
	return s.submit(ctx, auctionID, auction.Command{Action: auction.ActionStart})
}

// PlaceBid bids on the current player for the captain's team.
func (s *AuctionService) PlaceBid(ctx context.Context, auctionID, captainID uuid.UUID, amount int64) (*auction.StateSnapshot, error) {
	team, err := s.teamRepo.GetByCaptain(ctx, auctionID, captainID)
	if err != nil {
		return nil, domain.ErrNotCaptain
	}
	return s.submit(ctx, auctionID, auction.Command{
		Action: auction.ActionBid,
		TeamID: team.ID,
		Amount: amount,
	})
}

// MarkSold commits the current player to the highest bidder. Host only.
func (s *AuctionService) MarkSold(ctx context.Context, auctionID, hostID uuid.UUID) (*auction.StateSnapshot, error) {
	if err := s.requireHost(ctx, auctionID, hostID); err != nil {
		return nil, err
	}
	return s.submit(ctx, auctionID, auction.Command{Action: auction.ActionSold})
}

// AdvancePlayer moves to the next player. Host only.
func (s *AuctionService) AdvancePlayer(ctx context.Context, auctionID, hostID uuid.UUID) (*auction.StateSnapshot, error) {
	if err := s.requireHost(ctx, auctionID, hostID); err != nil {
		return nil, err
	}
	return s.submit(ctx, auctionID, auction.Command{Action: auction.ActionNext})
}

// RetreatPlayer walks back to the previous player. Host only.
func (s *AuctionService) RetreatPlayer(ctx context.Context, auctionID, hostID uuid.UUID) (*auction.StateSnapshot, error) {
	if err := s.requireHost(ctx, auctionID, hostID); err != nil {
		return nil, err
	}
	return s.submit(ctx, auctionID, auction.Command{Action: auction.ActionPrevious})
}

// UndoLastBid retracts the latest bid on the current player. Host only.
func (s *AuctionService) UndoLastBid(ctx context.Context, auctionID, hostID uuid.UUID) (*auction.StateSnapshot, error) {
	if err := s.requireHost(ctx, auctionID, hostID); err != nil {
		return nil, err
	}
	return s.submit(ctx, auctionID, auction.Command{Action: auction.ActionUndoBid})
}

// PauseTimer suspends bidding. Host only.
func (s *AuctionService) PauseTimer(ctx context.Context, auctionID, hostID uuid.UUID) (*auction.StateSnapshot, error) {
	if err := s.requireHost(ctx, auctionID, hostID); err != nil {
		return nil, err
	}
	return s.submit(ctx, auctionID, auction.Command{Action: auction.ActionPause})
}

// ResumeTimer resumes from a pause. Host only.
func (s *AuctionService) ResumeTimer(ctx context.Context, auctionID, hostID uuid.UUID) (*auction.StateSnapshot, error) {
	if err := s.requireHost(ctx, auctionID, hostID); err != nil {
		return nil, err
	}
	return s.submit(ctx, auctionID, auction.Command{Action: auction.ActionResume})
}

// ResetAuction clears bids, restores purses, and recomputes the player
// order. Host only.
func (s *AuctionService) ResetAuction(ctx context.Context, auctionID, hostID uuid.UUID) (*auction.StateSnapshot, error) {
	if err := s.requireHost(ctx, auctionID, hostID); err != nil {
		return nil, err
	}
	return s.submit(ctx, auctionID, auction.Command{Action: auction.ActionReset})
}

// CancelAuction terminates the auction. Host only.
func (s *AuctionService) CancelAuction(ctx context.Context, auctionID, hostID uuid.UUID) (*auction.StateSnapshot, error) {
	if err := s.requireHost(ctx, auctionID, hostID); err != nil {
		return nil, err
	}
	return s.submit(ctx, auctionID, auction.Command{Action: auction.ActionCancel})
}

// CompleteAuction force-completes an active auction. Host only.
func (s *AuctionService) CompleteAuction(ctx context.Context, auctionID, hostID uuid.UUID) (*auction.StateSnapshot, error) {
	if err := s.requireHost(ctx, auctionID, hostID); err != nil {
		return nil, err
	}
	return s.submit(ctx, auctionID, auction.Command{Action: auction.ActionComplete})
}
