package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuctionStatus string

const (
	AuctionStatusDraft     AuctionStatus = "draft"
	AuctionStatusPending   AuctionStatus = "pending"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusPaused    AuctionStatus = "paused"
	AuctionStatusCompleted AuctionStatus = "completed"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are permitted.
func (s AuctionStatus) IsTerminal() bool {
	return s == AuctionStatusCompleted || s == AuctionStatusCancelled
}

type PlayerOrderType string

const (
	PlayerOrderBasePriceDesc    PlayerOrderType = "base_price_desc"
	PlayerOrderBasePriceAsc     PlayerOrderType = "base_price_asc"
	PlayerOrderAlphabetical     PlayerOrderType = "alphabetical"
	PlayerOrderAlphabeticalDesc PlayerOrderType = "alphabetical_desc"
	PlayerOrderRandom           PlayerOrderType = "random"
)

// IncrementRanges is the tiered increment schedule used when an auction
// is not configured with fixed increments. Bids below Boundary1 step by
// Increment1, bids in [Boundary1, Boundary2) step by Increment2, and
// bids at or above Boundary2 step by Increment3.
type IncrementRanges struct {
	Boundary1  int64 `json:"boundary1"`
	Boundary2  int64 `json:"boundary2"`
	Increment1 int64 `json:"increment1"`
	Increment2 int64 `json:"increment2"`
	Increment3 int64 `json:"increment3"`
}

// AuctionConfig is immutable once the auction starts.
type AuctionConfig struct {
	MaxTokensPerCaptain int64           `json:"maxTokensPerCaptain"`
	MinBidAmount        int64           `json:"minBidAmount"`
	MinIncrement        int64           `json:"minIncrement"`
	UseFixedIncrements  bool            `json:"useFixedIncrements"`
	IncrementRanges     IncrementRanges `json:"incrementRanges"`
	UseBasePrice        bool            `json:"useBasePrice"`
	TimerSeconds        int             `json:"timerSeconds"`
	PlayerOrderType     PlayerOrderType `json:"playerOrderType"`
}

type Auction struct {
	ID                         uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	HostID                     uuid.UUID       `json:"hostId" gorm:"type:uuid;not null;index"`
	Name                       string          `json:"name" gorm:"not null"`
	Status                     AuctionStatus   `json:"status" gorm:"not null;default:'draft'"`
	CurrentPlayerIndex         int             `json:"currentPlayerIndex" gorm:"not null;default:0"`
	CurrentPlayerID            *uuid.UUID      `json:"currentPlayerId" gorm:"type:uuid"`
	CurrentBid                 int64           `json:"currentBid" gorm:"not null;default:0"`
	CurrentHighestBidderTeamID *uuid.UUID      `json:"currentHighestBidderTeamId" gorm:"type:uuid"`
	TimerSeconds               int             `json:"timerSeconds" gorm:"not null;default:30"`
	MaxTokensPerCaptain        int64           `json:"maxTokensPerCaptain" gorm:"not null"`
	MinBidAmount               int64           `json:"minBidAmount" gorm:"not null"`
	MinIncrement               int64           `json:"minIncrement" gorm:"not null"`
	UseFixedIncrements         bool            `json:"useFixedIncrements" gorm:"not null;default:true"`
	CustomIncrementRanges      datatypes.JSON  `json:"customIncrementRanges" gorm:"type:jsonb"`
	UseBasePrice               bool            `json:"useBasePrice" gorm:"not null;default:false"`
	PlayerOrderType            PlayerOrderType `json:"playerOrderType" gorm:"not null;default:'random'"`
	PlayerOrder                datatypes.JSON  `json:"playerOrder" gorm:"type:jsonb;default:'[]'"`
	CreatedAt                  time.Time       `json:"createdAt"`
	StartedAt                  *time.Time      `json:"startedAt"`
	CompletedAt                *time.Time      `json:"completedAt"`

	// Relations
	Host *User `json:"host,omitempty" gorm:"foreignKey:HostID"`
}

// Config assembles the immutable bidding configuration from the
// auction record, decoding the custom increment schedule when fixed
// increments are disabled.
func (a *Auction) Config() (AuctionConfig, error) {
	cfg := AuctionConfig{
		MaxTokensPerCaptain: a.MaxTokensPerCaptain,
		MinBidAmount:        a.MinBidAmount,
		MinIncrement:        a.MinIncrement,
		UseFixedIncrements:  a.UseFixedIncrements,
		UseBasePrice:        a.UseBasePrice,
		TimerSeconds:        a.TimerSeconds,
		PlayerOrderType:     a.PlayerOrderType,
	}
	if !a.UseFixedIncrements && len(a.CustomIncrementRanges) > 0 {
		if err := json.Unmarshal(a.CustomIncrementRanges, &cfg.IncrementRanges); err != nil {
			return AuctionConfig{}, fmt.Errorf("decode increment ranges: %w", err)
		}
	}
	return cfg, nil
}

// TeamFormation is the derived view of a team's auction outcome. It is
// recomputed from committed sales, never edited directly.
type TeamFormation struct {
	TeamID         uuid.UUID `json:"teamId"`
	TeamName       string    `json:"teamName"`
	Players        []Player  `json:"players"`
	TotalSpent     int64     `json:"totalSpent"`
	RemainingPurse int64     `json:"remainingPurse"`
}
