package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/domain"
	"github.com/nikhil/auction-arena/internal/repository"
	"gorm.io/gorm"
)

// SetupService persists the multi-step configuration wizard. Each host
// has at most one in-progress setup; finalizing turns it into a real
// auction and discards the draft record.
type SetupService struct {
	setupRepo      repository.SetupDraftRepository
	auctionService *AuctionService
}

func NewSetupService(setupRepo repository.SetupDraftRepository, auctionService *AuctionService) *SetupService {
	return &SetupService{
		setupRepo:      setupRepo,
		auctionService: auctionService,
	}
}

// SetupPayload is the wizard's working configuration.
type SetupPayload struct {
	Name                string                  `json:"name"`
	MaxTokensPerCaptain int64                   `json:"maxTokensPerCaptain"`
	MinBidAmount        int64                   `json:"minBidAmount"`
	MinIncrement        int64                   `json:"minIncrement"`
	UseFixedIncrements  bool                    `json:"useFixedIncrements"`
	IncrementRanges     *domain.IncrementRanges `json:"incrementRanges,omitempty"`
	UseBasePrice        bool                    `json:"useBasePrice"`
	TimerSeconds        int                     `json:"timerSeconds"`
	PlayerOrderType     domain.PlayerOrderType  `json:"playerOrderType"`
}

// Save upserts the host's wizard state at the given step.
func (s *SetupService) Save(ctx context.Context, hostID uuid.UUID, step int, payload SetupPayload) (*domain.SetupDraft, error) {
	if step < 0 {
		return nil, fmt.Errorf("%w: step cannot be negative", domain.ErrValidation)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	draft := &domain.SetupDraft{
		ID:        uuid.New(),
		HostID:    hostID,
		Step:      step,
		Payload:   raw,
		UpdatedAt: time.Now(),
	}
	if err := s.setupRepo.Upsert(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Get returns the host's in-progress setup, or nil when none exists.
func (s *SetupService) Get(ctx context.Context, hostID uuid.UUID) (*domain.SetupDraft, error) {
	draft, err := s.setupRepo.GetByHostID(ctx, hostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return draft, nil
}

// Discard removes the host's in-progress setup.
func (s *SetupService) Discard(ctx context.Context, hostID uuid.UUID) error {
	return s.setupRepo.DeleteByHostID(ctx, hostID)
}

// Finalize turns the wizard state into a draft-stage auction and
// deletes the setup record.
func (s *SetupService) Finalize(ctx context.Context, hostID uuid.UUID) (*domain.Auction, error) {
	draft, err := s.setupRepo.GetByHostID(ctx, hostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no setup in progress", domain.ErrValidation)
		}
		return nil, err
	}

	var payload SetupPayload
	if err := json.Unmarshal(draft.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: corrupt setup payload", domain.ErrValidation)
	}

	a, err := s.auctionService.CreateAuction(ctx, CreateAuctionInput{
		HostID:              hostID,
		Name:                payload.Name,
		MaxTokensPerCaptain: payload.MaxTokensPerCaptain,
		MinBidAmount:        payload.MinBidAmount,
		MinIncrement:        payload.MinIncrement,
		UseFixedIncrements:  payload.UseFixedIncrements,
		IncrementRanges:     payload.IncrementRanges,
		UseBasePrice:        payload.UseBasePrice,
		TimerSeconds:        payload.TimerSeconds,
		PlayerOrderType:     payload.PlayerOrderType,
	})
	if err != nil {
		return nil, err
	}

	if err := s.setupRepo.DeleteByHostID(ctx, hostID); err != nil {
		return nil, err
	}
	return a, nil
}
