package service

import (
	"github.com/nikhil/auction-arena/internal/auction"
	"github.com/nikhil/auction-arena/internal/config"
	"github.com/nikhil/auction-arena/internal/repository"
)

type Services struct {
	Auth    *AuthService
	Auction *AuctionService
	Roster  *RosterService
	Setup   *SetupService
}

func NewServices(repos *repository.Repositories, manager *auction.Manager, cfg *config.Config) *Services {
	auctionService := NewAuctionService(repos.Auction, repos.Team, repos.Player, repos.Bid, manager)
	return &Services{
		Auth:    NewAuthService(repos.User, repos.Session, cfg),
		Auction: auctionService,
		Roster:  NewRosterService(repos.Auction, repos.Team, repos.Player),
		Setup:   NewSetupService(repos.SetupDraft, auctionService),
	}
}
