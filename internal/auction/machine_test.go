package auction_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/auction-arena/internal/auction"
	"github.com/nikhil/auction-arena/internal/domain"
)

type machineFixture struct {
	auction *domain.Auction
	teams   []*domain.Team
	players []*domain.Player
	clock   *clockwork.FakeClock
}

func newMachineFixture() *machineFixture {
	hostID := uuid.New()
	a := &domain.Auction{
		ID:                  uuid.New(),
		HostID:              hostID,
		Name:                "Sunday League Draft",
		Status:              domain.AuctionStatusDraft,
		TimerSeconds:        30,
		MaxTokensPerCaptain: 1000,
		MinBidAmount:        10,
		MinIncrement:        5,
		UseFixedIncrements:  true,
		PlayerOrderType:     domain.PlayerOrderAlphabetical,
	}

	teams := []*domain.Team{
		{ID: uuid.New(), AuctionID: a.ID, CaptainID: uuid.New(), TeamName: "Reds", Purse: 1000},
		{ID: uuid.New(), AuctionID: a.ID, CaptainID: uuid.New(), TeamName: "Blues", Purse: 1000},
	}
	players := []*domain.Player{
		{ID: uuid.New(), AuctionID: a.ID, DisplayName: "Alice", Status: domain.PlayerStatusAvailable},
		{ID: uuid.New(), AuctionID: a.ID, DisplayName: "Bob", Status: domain.PlayerStatusAvailable},
		{ID: uuid.New(), AuctionID: a.ID, DisplayName: "Carol", Status: domain.PlayerStatusAvailable},
	}

	return &machineFixture{auction: a, teams: teams, players: players, clock: clockwork.NewFakeClock()}
}

func (f *machineFixture) build(t *testing.T) *auction.Machine {
	t.Helper()
	m, err := auction.NewMachine(f.auction, f.teams, f.players, nil, f.clock)
	require.NoError(t, err)
	return m
}

func (f *machineFixture) buildStarted(t *testing.T) *auction.Machine {
	t.Helper()
	m := f.build(t)
	require.NoError(t, m.Start(1))
	return m
}

func TestMachine_Start(t *testing.T) {
	f := newMachineFixture()
	m := f.build(t)

	require.NoError(t, m.Start(1))

	assert.Equal(t, domain.AuctionStatusActive, m.Status())
	assert.Len(t, m.Order(), 3)
	require.NotNil(t, m.CurrentPlayer())
	assert.Equal(t, "Alice", m.CurrentPlayer().DisplayName)
	assert.Equal(t, domain.PlayerStatusPending, m.CurrentPlayer().Status)
	assert.Equal(t, int64(10), m.CurrentBid(), "opening ask is the minimum bid")
	assert.Nil(t, m.HighestBidder())

	// Starting again is rejected.
	assert.ErrorIs(t, m.Start(1), domain.ErrAuctionStarted)
}

func TestMachine_Start_NotReady(t *testing.T) {
	t.Run("too few teams", func(t *testing.T) {
		f := newMachineFixture()
		f.teams = f.teams[:1]
		m := f.build(t)
		assert.ErrorIs(t, m.Start(1), domain.ErrNotReady)
	})

	t.Run("no players", func(t *testing.T) {
		f := newMachineFixture()
		f.players = nil
		m := f.build(t)
		assert.ErrorIs(t, m.Start(1), domain.ErrNotReady)
	})
}

func TestMachine_Bid(t *testing.T) {
	f := newMachineFixture()
	m := f.buildStarted(t)
	reds, blues := f.teams[0].ID, f.teams[1].ID

	// First bid must equal the opening ask exactly.
	_, err := m.Bid(reds, 15)
	assert.ErrorIs(t, err, domain.ErrStaleBid)

	bid, err := m.Bid(reds, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), bid.Amount)
	assert.Equal(t, int64(10), m.CurrentBid())
	require.NotNil(t, m.HighestBidder())
	assert.Equal(t, reds, *m.HighestBidder())

	// The same amount is now stale; only the incremented amount wins.
	_, err = m.Bid(blues, 10)
	assert.ErrorIs(t, err, domain.ErrStaleBid)

	_, err = m.Bid(blues, 15)
	require.NoError(t, err)
	assert.Equal(t, blues, *m.HighestBidder())
	assert.Equal(t, int64(20), m.ExpectedBid())
}

func TestMachine_Bid_Validation(t *testing.T) {
	f := newMachineFixture()
	m := f.buildStarted(t)
	reds := f.teams[0].ID

	_, err := m.Bid(reds, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = m.Bid(uuid.New(), 10)
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)

	require.NoError(t, m.Pause())
	_, err = m.Bid(reds, 10)
	assert.ErrorIs(t, err, domain.ErrAuctionNotActive)
}

func TestMachine_Bid_ReserveConstraint(t *testing.T) {
	f := newMachineFixture()
	f.auction.MaxTokensPerCaptain = 30
	for i := range f.teams {
		f.teams[i].Purse = 30
	}
	m := f.buildStarted(t)
	reds := f.teams[0].ID

	blues := f.teams[1].ID

	// 3 players, 2 teams: after the current player, 2 remain, so each
	// team must reserve ceil(2/2)=1 slot at the 10-token minimum.
	// Remaining 30 - reserve 10 caps any bid at 20.
	_, err := m.Bid(reds, 10)
	require.NoError(t, err)
	_, err = m.Bid(blues, 15)
	require.NoError(t, err)
	_, err = m.Bid(reds, 20)
	require.NoError(t, err)

	_, err = m.Bid(blues, 25)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestMachine_Sold(t *testing.T) {
	f := newMachineFixture()
	m := f.buildStarted(t)
	reds := f.teams[0].ID

	// No bidder yet.
	_, err := m.Sold()
	assert.ErrorIs(t, err, domain.ErrNoBidder)

	_, err = m.Bid(reds, 10)
	require.NoError(t, err)

	sale, err := m.Sold()
	require.NoError(t, err)
	assert.Equal(t, reds, sale.TeamID)
	assert.Equal(t, int64(10), sale.Amount)

	p := m.CurrentPlayer()
	assert.Equal(t, domain.PlayerStatusSold, p.Status)
	require.NotNil(t, p.SoldToTeam)
	assert.Equal(t, reds, *p.SoldToTeam)

	acct, _ := m.Ledger().Account(reds)
	assert.Equal(t, int64(10), acct.Spent)

	// Selling the same player twice is rejected.
	_, err = m.Sold()
	assert.ErrorIs(t, err, domain.ErrPlayerSold)

	// So is bidding on a sold player before the host advances.
	_, err = m.Bid(reds, 15)
	assert.ErrorIs(t, err, domain.ErrPlayerSold)
}

func TestMachine_NextPlayer(t *testing.T) {
	f := newMachineFixture()
	m := f.buildStarted(t)

	first := m.CurrentPlayer()
	require.NoError(t, m.NextPlayer())

	// Leaving without a sale marks the player unsold.
	assert.Equal(t, domain.PlayerStatusUnsold, first.Status)
	assert.Equal(t, "Bob", m.CurrentPlayer().DisplayName)
	assert.Equal(t, int64(10), m.CurrentBid(), "fresh round opens at the ask")
	assert.Nil(t, m.HighestBidder())

	require.NoError(t, m.NextPlayer())
	require.NoError(t, m.NextPlayer())
	assert.Equal(t, domain.AuctionStatusCompleted, m.Status())

	// Advancing past the end stays completed without error.
	require.NoError(t, m.NextPlayer())
	assert.Equal(t, domain.AuctionStatusCompleted, m.Status())
}

func TestMachine_PreviousPlayer(t *testing.T) {
	f := newMachineFixture()
	m := f.buildStarted(t)
	reds := f.teams[0].ID

	// At the first player there is nothing to walk back to.
	_, err := m.PreviousPlayer()
	assert.ErrorIs(t, err, domain.ErrNoHistory)

	// Sell Alice to the Reds, then advance to Bob.
	_, err = m.Bid(reds, 10)
	require.NoError(t, err)
	_, err = m.Sold()
	require.NoError(t, err)
	require.NoError(t, m.NextPlayer())
	assert.Equal(t, "Bob", m.CurrentPlayer().DisplayName)

	res, err := m.PreviousPlayer()
	require.NoError(t, err)

	// The committed sale is reversed and the bid invalidated.
	require.Len(t, res.Reversed, 1)
	assert.Equal(t, reds, res.Reversed[0].TeamID)
	assert.Equal(t, int64(10), res.Reversed[0].Amount)
	assert.Len(t, res.UndoneBidIDs, 1)

	alice := m.CurrentPlayer()
	assert.Equal(t, "Alice", alice.DisplayName)
	assert.Equal(t, domain.PlayerStatusPending, alice.Status)
	assert.Nil(t, alice.SoldToTeam)
	assert.Equal(t, int64(10), m.CurrentBid())
	assert.Nil(t, m.HighestBidder())

	acct, _ := m.Ledger().Account(reds)
	assert.Equal(t, int64(0), acct.Spent, "refund restores the purse")
}

func TestMachine_PreviousPlayer_ReversesLeavingSaleToo(t *testing.T) {
	f := newMachineFixture()
	m := f.buildStarted(t)
	reds, blues := f.teams[0].ID, f.teams[1].ID

	// Alice to Reds, advance, Bob to Blues, then walk back while Bob's
	// sale is committed.
	_, err := m.Bid(reds, 10)
	require.NoError(t, err)
	_, err = m.Sold()
	require.NoError(t, err)
	require.NoError(t, m.NextPlayer())
	_, err = m.Bid(blues, 10)
	require.NoError(t, err)
	_, err = m.Sold()
	require.NoError(t, err)

	res, err := m.PreviousPlayer()
	require.NoError(t, err)
	assert.Len(t, res.Reversed, 2, "both the leaving and landing sales are reversed")

	redsAcct, _ := m.Ledger().Account(reds)
	bluesAcct, _ := m.Ledger().Account(blues)
	assert.Equal(t, int64(0), redsAcct.Spent)
	assert.Equal(t, int64(0), bluesAcct.Spent)
}

func TestMachine_PreviousPlayer_UnchangedWhenReversalFails(t *testing.T) {
	// Rehydrate from records where Alice is marked sold to Reds for 50
	// but Reds' spent balance is 0, so reversing that sale must fail.
	f := newMachineFixture()
	reds, blues := f.teams[0].ID, f.teams[1].ID
	alice, bob := f.players[0], f.players[1]

	soldAmount := int64(50)
	alice.Status = domain.PlayerStatusSold
	alice.SoldToTeam = &reds
	alice.SoldAmount = &soldAmount
	bob.Status = domain.PlayerStatusPending

	order := []uuid.UUID{f.players[0].ID, f.players[1].ID, f.players[2].ID}
	orderJSON, err := json.Marshal(order)
	require.NoError(t, err)
	f.auction.Status = domain.AuctionStatusActive
	f.auction.PlayerOrder = orderJSON
	f.auction.CurrentPlayerIndex = 1
	f.auction.CurrentBid = 10
	f.auction.CurrentHighestBidderTeamID = &blues

	bids := []*domain.Bid{
		{ID: uuid.New(), AuctionID: f.auction.ID, PlayerID: bob.ID, TeamID: blues, Amount: 10},
	}
	m, err := auction.NewMachine(f.auction, f.teams, f.players, bids, f.clock)
	require.NoError(t, err)

	_, err = m.PreviousPlayer()
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// The failed walk-back left nothing behind: the round in progress
	// and Alice's committed sale both look exactly as before.
	assert.Equal(t, 1, m.CurrentPlayerIndex())
	require.NotNil(t, m.CurrentPlayer())
	assert.Equal(t, "Bob", m.CurrentPlayer().DisplayName)
	assert.Equal(t, domain.PlayerStatusPending, m.CurrentPlayer().Status)
	assert.Equal(t, int64(10), m.CurrentBid())
	require.NotNil(t, m.HighestBidder())
	assert.Equal(t, blues, *m.HighestBidder())
	assert.Equal(t, int64(15), m.ExpectedBid())

	for _, p := range m.Players() {
		if p.ID != alice.ID {
			continue
		}
		assert.Equal(t, domain.PlayerStatusSold, p.Status)
		require.NotNil(t, p.SoldToTeam)
		assert.Equal(t, reds, *p.SoldToTeam)
		require.NotNil(t, p.SoldAmount)
		assert.Equal(t, int64(50), *p.SoldAmount)
	}
}

func TestMachine_UndoBid(t *testing.T) {
	f := newMachineFixture()
	m := f.buildStarted(t)
	reds, blues := f.teams[0].ID, f.teams[1].ID

	_, err := m.UndoBid()
	assert.ErrorIs(t, err, domain.ErrNoBidToUndo)

	_, err = m.Bid(reds, 10)
	require.NoError(t, err)
	_, err = m.Bid(blues, 15)
	require.NoError(t, err)

	undone, err := m.UndoBid()
	require.NoError(t, err)
	assert.Equal(t, blues, undone.TeamID)
	assert.True(t, undone.Undone)
	assert.Equal(t, int64(10), m.CurrentBid(), "previous bid restored")
	assert.Equal(t, reds, *m.HighestBidder())

	// Undoing the only remaining bid restores the opening ask.
	_, err = m.UndoBid()
	require.NoError(t, err)
	assert.Equal(t, int64(10), m.CurrentBid())
	assert.Nil(t, m.HighestBidder())

	// A sale blocks further undo; that path is PreviousPlayer's.
	_, err = m.Bid(reds, 10)
	require.NoError(t, err)
	_, err = m.Sold()
	require.NoError(t, err)
	_, err = m.UndoBid()
	assert.ErrorIs(t, err, domain.ErrPlayerSold)
}

func TestMachine_PauseResume(t *testing.T) {
	f := newMachineFixture()
	m := f.buildStarted(t)

	assert.ErrorIs(t, m.Resume(), domain.ErrAuctionNotPaused)

	require.NoError(t, m.Pause())
	assert.Equal(t, domain.AuctionStatusPaused, m.Status())
	assert.ErrorIs(t, m.Pause(), domain.ErrAuctionNotActive)

	require.NoError(t, m.Resume())
	assert.Equal(t, domain.AuctionStatusActive, m.Status())
}

func TestMachine_Reset(t *testing.T) {
	f := newMachineFixture()
	m := f.buildStarted(t)
	reds := f.teams[0].ID

	_, err := m.Bid(reds, 10)
	require.NoError(t, err)
	_, err = m.Sold()
	require.NoError(t, err)
	require.NoError(t, m.NextPlayer())

	require.NoError(t, m.Reset(2))

	assert.Equal(t, domain.AuctionStatusPending, m.Status())
	assert.Equal(t, 0, m.CurrentPlayerIndex())
	assert.Equal(t, int64(0), m.CurrentBid())
	assert.Nil(t, m.HighestBidder())

	acct, _ := m.Ledger().Account(reds)
	assert.Equal(t, int64(0), acct.Spent)

	snap := m.State()
	for _, formation := range snap.Formations {
		assert.Empty(t, formation.Players)
	}

	// A reset auction can be started again.
	require.NoError(t, m.Start(3))
	assert.Equal(t, domain.AuctionStatusActive, m.Status())
}

func TestMachine_CancelIsTerminal(t *testing.T) {
	f := newMachineFixture()
	m := f.buildStarted(t)

	require.NoError(t, m.Cancel())
	assert.Equal(t, domain.AuctionStatusCancelled, m.Status())

	_, err := m.Bid(f.teams[0].ID, 10)
	assert.ErrorIs(t, err, domain.ErrAuctionClosed)
	assert.ErrorIs(t, m.Reset(1), domain.ErrAuctionClosed)
	assert.ErrorIs(t, m.Start(1), domain.ErrAuctionClosed)
	assert.ErrorIs(t, m.Cancel(), domain.ErrAuctionClosed)
}

func TestMachine_CompleteForcesFinish(t *testing.T) {
	f := newMachineFixture()
	m := f.buildStarted(t)

	require.NoError(t, m.Complete())
	assert.Equal(t, domain.AuctionStatusCompleted, m.Status())

	// Idempotent once completed.
	require.NoError(t, m.Complete())
}

func TestMachine_StateSnapshot(t *testing.T) {
	f := newMachineFixture()
	m := f.buildStarted(t)
	reds := f.teams[0].ID

	_, err := m.Bid(reds, 10)
	require.NoError(t, err)

	snap := m.State()
	assert.Equal(t, f.auction.ID, snap.AuctionID)
	assert.Equal(t, domain.AuctionStatusActive, snap.Status)
	assert.Equal(t, int64(10), snap.CurrentBid)
	assert.Equal(t, int64(15), snap.NextMinimumBid)
	assert.Equal(t, 3, snap.PlayersTotal)
	require.NotNil(t, snap.HighestBidderTeamID)
	assert.Equal(t, reds, *snap.HighestBidderTeamID)
	assert.Len(t, snap.Teams, 2)

	// Snapshots are copies; mutating one never reaches the machine.
	snap.CurrentPlayer.DisplayName = "mutated"
	assert.Equal(t, "Alice", m.CurrentPlayer().DisplayName)
}

func TestMachine_State_MaxAffordableReservesFuturePlayersOnly(t *testing.T) {
	f := newMachineFixture()
	f.auction.MaxTokensPerCaptain = 30
	for i := range f.teams {
		f.teams[i].Purse = 30
	}
	m := f.buildStarted(t)

	// Alice is on the block with Bob and Carol still to come. Each of
	// the 2 teams reserves ceil(2/2)=1 future slot at the 10-token
	// minimum, capping the bid at 30-10=20; the player on the block is
	// paid for by the bid itself, not the reserve.
	snap := m.State()
	require.Len(t, snap.Teams, 2)
	for _, ts := range snap.Teams {
		assert.Equal(t, int64(20), ts.MaxAffordable)
	}

	// On the final player nothing is reserved.
	require.NoError(t, m.NextPlayer())
	require.NoError(t, m.NextPlayer())
	snap = m.State()
	for _, ts := range snap.Teams {
		assert.Equal(t, int64(30), ts.MaxAffordable)
	}
}

func TestMachine_RehydrateMidAuction(t *testing.T) {
	f := newMachineFixture()
	m := f.buildStarted(t)
	reds := f.teams[0].ID

	_, err := m.Bid(reds, 10)
	require.NoError(t, err)
	_, err = m.Sold()
	require.NoError(t, err)
	require.NoError(t, m.NextPlayer())

	// Persist the machine's view and rebuild from records, as the
	// manager does after a restart.
	record := m.Record()
	teams := m.Teams()
	players := m.Players()

	restored, err := auction.NewMachine(record, teams, players, nil, f.clock)
	require.NoError(t, err)

	assert.Equal(t, domain.AuctionStatusActive, restored.Status())
	assert.Equal(t, 1, restored.CurrentPlayerIndex())
	assert.Equal(t, "Bob", restored.CurrentPlayer().DisplayName)

	acct, _ := restored.Ledger().Account(reds)
	assert.Equal(t, int64(10), acct.Spent, "spent balances survive rehydration")
}
