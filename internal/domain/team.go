package domain

import (
	"time"

	"github.com/google/uuid"
)

type Team struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AuctionID uuid.UUID `json:"auctionId" gorm:"type:uuid;index;not null"`
	CaptainID uuid.UUID `json:"captainId" gorm:"type:uuid;not null"`
	TeamName  string    `json:"teamName" gorm:"not null"`
	Purse     int64     `json:"purse" gorm:"not null"`
	Spent     int64     `json:"spent" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"createdAt"`

	// Relations
	Captain *User `json:"captain,omitempty" gorm:"foreignKey:CaptainID"`
}

// RemainingPurse is always Purse - Spent; the two stored columns are the
// source of truth and Spent never exceeds Purse.
func (t *Team) RemainingPurse() int64 {
	return t.Purse - t.Spent
}
