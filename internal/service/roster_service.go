package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/domain"
	"github.com/nikhil/auction-arena/internal/repository"
)

// RosterService manages teams and players for a draft-stage auction.
// Rosters freeze once the auction starts; mid-auction the engine is
// the only writer.
type RosterService struct {
	auctionRepo repository.AuctionRepository
	teamRepo    repository.TeamRepository
	playerRepo  repository.PlayerRepository
}

func NewRosterService(
	auctionRepo repository.AuctionRepository,
	teamRepo repository.TeamRepository,
	playerRepo repository.PlayerRepository,
) *RosterService {
	return &RosterService{
		auctionRepo: auctionRepo,
		teamRepo:    teamRepo,
		playerRepo:  playerRepo,
	}
}

func (s *RosterService) requireDraftStage(ctx context.Context, auctionID, hostID uuid.UUID) (*domain.Auction, error) {
	a, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if a.HostID != hostID {
		return nil, domain.ErrNotHost
	}
	if a.Status != domain.AuctionStatusDraft && a.Status != domain.AuctionStatusPending {
		return nil, domain.ErrAuctionStarted
	}
	return a, nil
}

type AddTeamInput struct {
	AuctionID uuid.UUID
	HostID    uuid.UUID
	CaptainID uuid.UUID
	TeamName  string
}

func (s *RosterService) AddTeam(ctx context.Context, input AddTeamInput) (*domain.Team, error) {
	if input.TeamName == "" {
		return nil, fmt.Errorf("%w: team name is required", domain.ErrValidation)
	}
	a, err := s.requireDraftStage(ctx, input.AuctionID, input.HostID)
	if err != nil {
		return nil, err
	}
	if existing, err := s.teamRepo.GetByCaptain(ctx, input.AuctionID, input.CaptainID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: captain already leads a team in this auction", domain.ErrValidation)
	}

	team := &domain.Team{
		ID:        uuid.New(),
		AuctionID: input.AuctionID,
		CaptainID: input.CaptainID,
		TeamName:  input.TeamName,
		Purse:     a.MaxTokensPerCaptain,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *RosterService) ListTeams(ctx context.Context, auctionID uuid.UUID) ([]*domain.Team, error) {
	return s.teamRepo.GetByAuctionID(ctx, auctionID)
}

func (s *RosterService) RemoveTeam(ctx context.Context, auctionID, hostID, teamID uuid.UUID) error {
	if _, err := s.requireDraftStage(ctx, auctionID, hostID); err != nil {
		return err
	}
	return s.teamRepo.Delete(ctx, teamID)
}

type AddPlayerInput struct {
	AuctionID   uuid.UUID
	HostID      uuid.UUID
	DisplayName string
	BasePrice   *int64
}

func (s *RosterService) AddPlayer(ctx context.Context, input AddPlayerInput) (*domain.Player, error) {
	if input.DisplayName == "" {
		return nil, fmt.Errorf("%w: player name is required", domain.ErrValidation)
	}
	if input.BasePrice != nil && *input.BasePrice < 0 {
		return nil, fmt.Errorf("%w: base price cannot be negative", domain.ErrValidation)
	}
	if _, err := s.requireDraftStage(ctx, input.AuctionID, input.HostID); err != nil {
		return nil, err
	}

	player := &domain.Player{
		ID:          uuid.New(),
		AuctionID:   input.AuctionID,
		DisplayName: input.DisplayName,
		BasePrice:   input.BasePrice,
		Status:      domain.PlayerStatusAvailable,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *RosterService) ListPlayers(ctx context.Context, auctionID uuid.UUID) ([]*domain.Player, error) {
	return s.playerRepo.GetByAuctionID(ctx, auctionID)
}

func (s *RosterService) RemovePlayer(ctx context.Context, auctionID, hostID, playerID uuid.UUID) error {
	if _, err := s.requireDraftStage(ctx, auctionID, hostID); err != nil {
		return err
	}
	return s.playerRepo.Delete(ctx, playerID)
}
