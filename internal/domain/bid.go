package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bid is one entry in the append-only bid log. Undo never rewrites
// history: it marks the most recent entry Undone and recomputes derived
// state from the remaining active entries.
type Bid struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AuctionID uuid.UUID `json:"auctionId" gorm:"type:uuid;index;not null"`
	PlayerID  uuid.UUID `json:"playerId" gorm:"type:uuid;index;not null"`
	TeamID    uuid.UUID `json:"teamId" gorm:"type:uuid;not null"`
	Amount    int64     `json:"amount" gorm:"not null"`
	Undone    bool      `json:"undone" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}
