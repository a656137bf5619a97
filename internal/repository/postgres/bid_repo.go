package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/domain"
	"gorm.io/gorm"
)

type bidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) *bidRepository {
	return &bidRepository{db: db}
}

func (r *bidRepository) Create(ctx context.Context, bid *domain.Bid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

func (r *bidRepository) GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("created_at ASC").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *bidRepository) GetByPlayerID(ctx context.Context, playerID uuid.UUID) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("created_at ASC").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *bidRepository) MarkUndone(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.Bid{}).
		Where("id IN ?", ids).
		Update("undone", true).Error
}

func (r *bidRepository) MarkAllUndone(ctx context.Context, auctionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Bid{}).
		Where("auction_id = ?", auctionID).
		Update("undone", true).Error
}
