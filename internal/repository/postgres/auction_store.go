package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/auction"
	"github.com/nikhil/auction-arena/internal/domain"
	"gorm.io/gorm"
)

// auctionStore adapts gorm to the engine's Store contract. Apply runs
// the whole change set in one transaction so a committed transition is
// all-or-nothing; the engine relies on that to keep its in-memory
// state aligned with durable state.
type auctionStore struct {
	db *gorm.DB
}

func NewAuctionStore(db *gorm.DB) auction.Store {
	return &auctionStore{db: db}
}

func (s *auctionStore) LoadAuction(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	var a domain.Auction
	err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *auctionStore) LoadTeams(ctx context.Context, auctionID uuid.UUID) ([]*domain.Team, error) {
	var teams []*domain.Team
	err := s.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("created_at ASC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *auctionStore) LoadPlayers(ctx context.Context, auctionID uuid.UUID) ([]*domain.Player, error) {
	var players []*domain.Player
	err := s.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (s *auctionStore) LoadBids(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	err := s.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("created_at ASC").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

func (s *auctionStore) Apply(ctx context.Context, cs *auction.ChangeSet) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cs.Auction != nil {
			if err := tx.Save(cs.Auction).Error; err != nil {
				return err
			}
		}
		for _, t := range cs.Teams {
			if err := tx.Model(&domain.Team{}).
				Where("id = ?", t.ID).
				Update("spent", t.Spent).Error; err != nil {
				return err
			}
		}
		for _, p := range cs.Players {
			if err := tx.Model(&domain.Player{}).
				Where("id = ?", p.ID).
				Updates(map[string]interface{}{
					"status":       p.Status,
					"sold_to_team": p.SoldToTeam,
					"sold_amount":  p.SoldAmount,
				}).Error; err != nil {
				return err
			}
		}
		if cs.ClearBids {
			if err := tx.Model(&domain.Bid{}).
				Where("auction_id = ?", cs.Auction.ID).
				Update("undone", true).Error; err != nil {
				return err
			}
		}
		if len(cs.UndoneBidIDs) > 0 {
			if err := tx.Model(&domain.Bid{}).
				Where("id IN ?", cs.UndoneBidIDs).
				Update("undone", true).Error; err != nil {
				return err
			}
		}
		if cs.NewBid != nil {
			if err := tx.Create(cs.NewBid).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
