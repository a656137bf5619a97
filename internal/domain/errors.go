package domain

import "errors"

// Bidding and transition errors
var (
	ErrValidation        = errors.New("invalid command")
	ErrPlayerSold        = errors.New("player has already been sold")
	ErrStaleBid          = errors.New("bid amount does not match the expected next bid")
	ErrInsufficientFunds = errors.New("team cannot afford this bid")
	ErrNoBidder          = errors.New("no bid has been placed for this player")
	ErrNoBidToUndo       = errors.New("no bid to undo for this player")
	ErrNoHistory         = errors.New("already at the first player")
	ErrAuctionClosed     = errors.New("auction is completed or cancelled")
	ErrAuctionNotActive  = errors.New("auction is not active")
	ErrAuctionNotPaused  = errors.New("auction is not paused")
	ErrNotReady          = errors.New("auction needs at least one player and two teams")
	ErrPersistence       = errors.New("failed to persist auction state")
)

// Entity errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrTeamNotFound    = errors.New("team not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrNotHost         = errors.New("only the auction host can perform this action")
	ErrNotCaptain      = errors.New("only a team captain can place bids")
	ErrAuctionStarted  = errors.New("auction has already started")
)
