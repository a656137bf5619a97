package auction

import (
	"math/rand"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/domain"
)

// ComputeOrder produces the fixed sequence of player ids for one
// auction run. The order is computed once at start (or reset) and then
// only walked, never recomputed mid-auction. The seed only matters for
// the random policy; resets pass a fresh seed so reruns reshuffle,
// while tests can pin it for reproducibility.
func ComputeOrder(players []*domain.Player, orderType domain.PlayerOrderType, seed int64) []uuid.UUID {
	sorted := make([]*domain.Player, len(players))
	copy(sorted, players)

	// Canonical input order so the result depends only on the player
	// set, the policy, and the seed.
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	switch orderType {
	case domain.PlayerOrderBasePriceDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return basePriceDescLess(sorted[i], sorted[j])
		})
	case domain.PlayerOrderBasePriceAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return basePriceLess(sorted[i], sorted[j])
		})
	case domain.PlayerOrderAlphabetical:
		sort.SliceStable(sorted, func(i, j int) bool {
			return nameLess(sorted[i], sorted[j])
		})
	case domain.PlayerOrderAlphabeticalDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return nameLess(sorted[j], sorted[i])
		})
	case domain.PlayerOrderRandom:
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(sorted), func(i, j int) {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		})
	}

	order := make([]uuid.UUID, len(sorted))
	for i, p := range sorted {
		order[i] = p.ID
	}
	return order
}

// basePriceLess orders by base price ascending; players without a base
// price sort after every priced player regardless of direction.
func basePriceLess(a, b *domain.Player) bool {
	switch {
	case a.BasePrice == nil && b.BasePrice == nil:
		return false
	case a.BasePrice == nil:
		return false
	case b.BasePrice == nil:
		return true
	case *a.BasePrice != *b.BasePrice:
		return *a.BasePrice < *b.BasePrice
	}
	return false
}

func basePriceDescLess(a, b *domain.Player) bool {
	switch {
	case a.BasePrice == nil:
		return false
	case b.BasePrice == nil:
		return true
	}
	return *a.BasePrice > *b.BasePrice
}

func nameLess(a, b *domain.Player) bool {
	an := strings.ToLower(a.DisplayName)
	bn := strings.ToLower(b.DisplayName)
	if an != bn {
		return an < bn
	}
	return false
}
