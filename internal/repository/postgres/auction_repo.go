package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/domain"
	"gorm.io/gorm"
)

type auctionRepository struct {
	db *gorm.DB
}

func NewAuctionRepository(db *gorm.DB) *auctionRepository {
	return &auctionRepository{db: db}
}

func (r *auctionRepository) Create(ctx context.Context, auction *domain.Auction) error {
	return r.db.WithContext(ctx).Create(auction).Error
}

func (r *auctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	var auction domain.Auction
	err := r.db.WithContext(ctx).
		Preload("Host").
		First(&auction, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return &auction, nil
}

func (r *auctionRepository) Update(ctx context.Context, auction *domain.Auction) error {
	return r.db.WithContext(ctx).Save(auction).Error
}

func (r *auctionRepository) GetByHostID(ctx context.Context, hostID uuid.UUID, limit, offset int) ([]*domain.Auction, error) {
	var auctions []*domain.Auction
	err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&auctions).Error
	if err != nil {
		return nil, err
	}
	return auctions, nil
}
