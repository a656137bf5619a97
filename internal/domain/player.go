package domain

import (
	"time"

	"github.com/google/uuid"
)

type PlayerStatus string

const (
	PlayerStatusAvailable PlayerStatus = "available"
	PlayerStatusPending   PlayerStatus = "pending"
	PlayerStatusSold      PlayerStatus = "sold"
	PlayerStatusUnsold    PlayerStatus = "unsold"
)

type Player struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AuctionID   uuid.UUID    `json:"auctionId" gorm:"type:uuid;index;not null"`
	DisplayName string       `json:"displayName" gorm:"not null"`
	BasePrice   *int64       `json:"basePrice"`
	Status      PlayerStatus `json:"status" gorm:"not null;default:'available'"`
	SoldToTeam  *uuid.UUID   `json:"soldToTeam" gorm:"type:uuid"`
	SoldAmount  *int64       `json:"soldAmount"`
	CreatedAt   time.Time    `json:"createdAt"`
}
