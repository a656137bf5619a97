package postgres

import (
	"github.com/nikhil/auction-arena/internal/domain"
	"github.com/nikhil/auction-arena/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.Auction{},
		&domain.Team{},
		&domain.Player{},
		&domain.Bid{},
		&domain.SetupDraft{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:       NewUserRepository(db),
		Session:    NewSessionRepository(db),
		Auction:    NewAuctionRepository(db),
		Team:       NewTeamRepository(db),
		Player:     NewPlayerRepository(db),
		Bid:        NewBidRepository(db),
		SetupDraft: NewSetupDraftRepository(db),
	}
}
