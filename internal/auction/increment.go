package auction

import "github.com/nikhil/auction-arena/internal/domain"

// NextMinimumBid returns the smallest legal bid that beats currentBid
// under the auction's increment rules.
func NextMinimumBid(currentBid int64, cfg domain.AuctionConfig) int64 {
	if cfg.UseFixedIncrements {
		next := currentBid + cfg.MinIncrement
		if next < cfg.MinBidAmount {
			next = cfg.MinBidAmount
		}
		return next
	}

	r := cfg.IncrementRanges
	var step int64
	switch {
	case currentBid < r.Boundary1:
		step = r.Increment1
	case currentBid < r.Boundary2:
		step = r.Increment2
	default:
		step = r.Increment3
	}

	next := currentBid + step
	if currentBid == 0 && next < cfg.MinBidAmount {
		next = cfg.MinBidAmount
	}
	return next
}

// FirstBid returns the opening ask for a player: the base price when
// the auction honors base prices and it exceeds the minimum bid,
// otherwise the minimum bid.
func FirstBid(player *domain.Player, cfg domain.AuctionConfig) int64 {
	if cfg.UseBasePrice && player.BasePrice != nil && *player.BasePrice > cfg.MinBidAmount {
		return *player.BasePrice
	}
	return cfg.MinBidAmount
}
