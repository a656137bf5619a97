package auction_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/auction-arena/internal/auction"
	"github.com/nikhil/auction-arena/internal/domain"
)

func price(v int64) *int64 { return &v }

func namedPlayer(name string, basePrice *int64) *domain.Player {
	return &domain.Player{
		ID:          uuid.New(),
		DisplayName: name,
		BasePrice:   basePrice,
	}
}

func orderedNames(players []*domain.Player, order []uuid.UUID) []string {
	byID := make(map[uuid.UUID]*domain.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	names := make([]string, len(order))
	for i, id := range order {
		names[i] = byID[id].DisplayName
	}
	return names
}

func TestComputeOrder_BasePriceDesc(t *testing.T) {
	players := []*domain.Player{
		namedPlayer("cheap", price(10)),
		namedPlayer("unpriced", nil),
		namedPlayer("expensive", price(500)),
		namedPlayer("mid", price(100)),
	}

	order := auction.ComputeOrder(players, domain.PlayerOrderBasePriceDesc, 0)
	assert.Equal(t, []string{"expensive", "mid", "cheap", "unpriced"}, orderedNames(players, order))
}

func TestComputeOrder_BasePriceAsc(t *testing.T) {
	players := []*domain.Player{
		namedPlayer("expensive", price(500)),
		namedPlayer("unpriced", nil),
		namedPlayer("cheap", price(10)),
	}

	order := auction.ComputeOrder(players, domain.PlayerOrderBasePriceAsc, 0)
	// Unpriced players go last in both directions.
	assert.Equal(t, []string{"cheap", "expensive", "unpriced"}, orderedNames(players, order))
}

func TestComputeOrder_Alphabetical(t *testing.T) {
	players := []*domain.Player{
		namedPlayer("charlie", nil),
		namedPlayer("Alice", nil),
		namedPlayer("bob", nil),
	}

	asc := auction.ComputeOrder(players, domain.PlayerOrderAlphabetical, 0)
	assert.Equal(t, []string{"Alice", "bob", "charlie"}, orderedNames(players, asc))

	desc := auction.ComputeOrder(players, domain.PlayerOrderAlphabeticalDesc, 0)
	assert.Equal(t, []string{"charlie", "bob", "Alice"}, orderedNames(players, desc))
}

func TestComputeOrder_RandomIsSeedDeterministic(t *testing.T) {
	players := make([]*domain.Player, 20)
	for i := range players {
		players[i] = namedPlayer(uuid.New().String(), nil)
	}

	a := auction.ComputeOrder(players, domain.PlayerOrderRandom, 42)
	b := auction.ComputeOrder(players, domain.PlayerOrderRandom, 42)
	assert.Equal(t, a, b, "same seed must reproduce the same order")

	c := auction.ComputeOrder(players, domain.PlayerOrderRandom, 43)
	assert.NotEqual(t, a, c, "different seed should reshuffle")
}

func TestComputeOrder_ContainsEveryPlayerOnce(t *testing.T) {
	players := make([]*domain.Player, 10)
	for i := range players {
		players[i] = namedPlayer(uuid.New().String(), nil)
	}

	for _, orderType := range []domain.PlayerOrderType{
		domain.PlayerOrderBasePriceDesc,
		domain.PlayerOrderBasePriceAsc,
		domain.PlayerOrderAlphabetical,
		domain.PlayerOrderAlphabeticalDesc,
		domain.PlayerOrderRandom,
	} {
		order := auction.ComputeOrder(players, orderType, 7)
		require.Len(t, order, len(players), "policy %s", orderType)

		seen := make(map[uuid.UUID]bool, len(order))
		for _, id := range order {
			assert.False(t, seen[id], "policy %s repeated player %s", orderType, id)
			seen[id] = true
		}
	}
}

func TestComputeOrder_InputOrderIrrelevant(t *testing.T) {
	players := []*domain.Player{
		namedPlayer("a", price(1)),
		namedPlayer("b", price(2)),
		namedPlayer("c", price(3)),
	}
	reversed := []*domain.Player{players[2], players[1], players[0]}

	a := auction.ComputeOrder(players, domain.PlayerOrderRandom, 99)
	b := auction.ComputeOrder(reversed, domain.PlayerOrderRandom, 99)
	assert.Equal(t, a, b, "order must depend on the player set, not slice order")
}
