package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SetupDraft is the in-progress configuration a host builds in the
// multi-step setup wizard before finalizing it into an Auction. One
// record per host; it survives reloads because it lives in the store,
// not in the client.
type SetupDraft struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	HostID    uuid.UUID      `json:"hostId" gorm:"type:uuid;uniqueIndex;not null"`
	Step      int            `json:"step" gorm:"not null;default:0"`
	Payload   datatypes.JSON `json:"payload" gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
