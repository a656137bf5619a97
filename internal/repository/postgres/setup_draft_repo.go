package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type setupDraftRepository struct {
	db *gorm.DB
}

func NewSetupDraftRepository(db *gorm.DB) *setupDraftRepository {
	return &setupDraftRepository{db: db}
}

func (r *setupDraftRepository) Upsert(ctx context.Context, draft *domain.SetupDraft) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "host_id"}},
		UpdateAll: true,
	}).Create(draft).Error
}

func (r *setupDraftRepository) GetByHostID(ctx context.Context, hostID uuid.UUID) (*domain.SetupDraft, error) {
	var draft domain.SetupDraft
	err := r.db.WithContext(ctx).First(&draft, "host_id = ?", hostID).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *setupDraftRepository) DeleteByHostID(ctx context.Context, hostID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.SetupDraft{}, "host_id = ?", hostID).Error
}
