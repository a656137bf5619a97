package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an auction participant. The same account hosts the drafts it
// creates and captains a team in drafts it was invited to; there is no
// stored role. Identity is the display name alone, which is what the
// bid board shows, so it is unique across the instance.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PasswordHash string    `json:"-" gorm:"not null"`
	DisplayName  string    `json:"displayName" gorm:"uniqueIndex;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSession backs one refresh token. A participant holds at most one
// live session; logging in again or rotating the token replaces it, so
// a stale tab cannot keep minting access tokens mid-draft.
type UserSession struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           uuid.UUID `json:"userId" gorm:"type:uuid;not null"`
	RefreshTokenHash string    `json:"-" gorm:"not null"`
	ExpiresAt        time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Expired reports whether the session can no longer be refreshed.
func (s *UserSession) Expired(at time.Time) bool {
	return !at.Before(s.ExpiresAt)
}
