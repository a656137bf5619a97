package service_test

import (
	"context"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/auction-arena/internal/auction"
	"github.com/nikhil/auction-arena/internal/domain"
	"github.com/nikhil/auction-arena/internal/repository/postgres"
	"github.com/nikhil/auction-arena/internal/service"
	"github.com/nikhil/auction-arena/internal/testutil"
)

func newAuctionService(t *testing.T) (*service.Services, *testutil.TestDB) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	cfg := testutil.TestConfig()

	store := postgres.NewAuctionStore(testDB.DB)
	manager := auction.NewManager(store, auction.NopNotifier{}, clockwork.NewRealClock(), zerolog.Nop())
	t.Cleanup(manager.Shutdown)

	return service.NewServices(repos, manager, cfg), testDB
}

func TestAuctionService_CreateAuction(t *testing.T) {
	services, testDB := newAuctionService(t)
	ctx := context.Background()
	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	valid := service.CreateAuctionInput{
		HostID:              host.ID,
		Name:                "City League",
		MaxTokensPerCaptain: 1000,
		MinBidAmount:        10,
		MinIncrement:        5,
		UseFixedIncrements:  true,
		TimerSeconds:        30,
		PlayerOrderType:     domain.PlayerOrderAlphabetical,
	}

	tests := []struct {
		name    string
		mutate  func(in *service.CreateAuctionInput)
		wantErr error
	}{
		{name: "valid input"},
		{
			name:    "missing name",
			mutate:  func(in *service.CreateAuctionInput) { in.Name = "" },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "non-positive budget",
			mutate:  func(in *service.CreateAuctionInput) { in.MaxTokensPerCaptain = 0 },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "non-positive timer",
			mutate:  func(in *service.CreateAuctionInput) { in.TimerSeconds = 0 },
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown order type",
			mutate:  func(in *service.CreateAuctionInput) { in.PlayerOrderType = "by_vibes" },
			wantErr: domain.ErrValidation,
		},
		{
			name: "tiered increments require a schedule",
			mutate: func(in *service.CreateAuctionInput) {
				in.UseFixedIncrements = false
				in.IncrementRanges = nil
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "descending boundaries rejected",
			mutate: func(in *service.CreateAuctionInput) {
				in.UseFixedIncrements = false
				in.IncrementRanges = &domain.IncrementRanges{
					Boundary1: 500, Boundary2: 100,
					Increment1: 5, Increment2: 10, Increment3: 20,
				}
			},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			a, err := services.Auction.CreateAuction(ctx, in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.AuctionStatusDraft, a.Status)
			assert.Equal(t, host.ID, a.HostID)

			found, err := services.Auction.GetAuction(ctx, a.ID)
			require.NoError(t, err)
			assert.Equal(t, a.Name, found.Name)
		})
	}
}

func TestAuctionService_HostOnlyCommands(t *testing.T) {
	services, testDB := newAuctionService(t)
	ctx := context.Background()
	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	a := testutil.NewAuctionBuilder().WithHost(host).Build(t, testDB.DB)
	testutil.SeedTeam(t, testDB.DB, a, "Reds")
	testutil.SeedTeam(t, testDB.DB, a, "Blues")
	testutil.SeedPlayers(t, testDB.DB, a, 3)

	_, err := services.Auction.StartAuction(ctx, a.ID, stranger.ID)
	assert.ErrorIs(t, err, domain.ErrNotHost)

	state, err := services.Auction.StartAuction(ctx, a.ID, host.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AuctionStatusActive, state.Status)

	_, err = services.Auction.PauseTimer(ctx, a.ID, stranger.ID)
	assert.ErrorIs(t, err, domain.ErrNotHost)
}

func TestAuctionService_PlaceBid(t *testing.T) {
	services, testDB := newAuctionService(t)
	ctx := context.Background()
	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	a := testutil.NewAuctionBuilder().WithHost(host).WithMinBid(10).Build(t, testDB.DB)
	reds := testutil.SeedTeam(t, testDB.DB, a, "Reds")
	blues := testutil.SeedTeam(t, testDB.DB, a, "Blues")
	testutil.SeedPlayers(t, testDB.DB, a, 3)

	_, err := services.Auction.StartAuction(ctx, a.ID, host.ID)
	require.NoError(t, err)

	// Only captains may bid.
	_, err = services.Auction.PlaceBid(ctx, a.ID, host.ID, 10)
	assert.ErrorIs(t, err, domain.ErrNotCaptain)

	state, err := services.Auction.PlaceBid(ctx, a.ID, reds.CaptainID, 10)
	require.NoError(t, err)
	require.NotNil(t, state.HighestBidderTeamID)
	assert.Equal(t, reds.ID, *state.HighestBidderTeamID)

	// The losing amount is stale once a bid lands.
	_, err = services.Auction.PlaceBid(ctx, a.ID, blues.CaptainID, 10)
	assert.ErrorIs(t, err, domain.ErrStaleBid)

	state, err = services.Auction.PlaceBid(ctx, a.ID, blues.CaptainID, state.NextMinimumBid)
	require.NoError(t, err)
	assert.Equal(t, blues.ID, *state.HighestBidderTeamID)
}

func TestAuctionService_SaleIsDurable(t *testing.T) {
	services, testDB := newAuctionService(t)
	ctx := context.Background()
	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	a := testutil.NewAuctionBuilder().WithHost(host).Build(t, testDB.DB)
	reds := testutil.SeedTeam(t, testDB.DB, a, "Reds")
	testutil.SeedTeam(t, testDB.DB, a, "Blues")
	testutil.SeedPlayers(t, testDB.DB, a, 2)

	_, err := services.Auction.StartAuction(ctx, a.ID, host.ID)
	require.NoError(t, err)
	_, err = services.Auction.PlaceBid(ctx, a.ID, reds.CaptainID, 10)
	require.NoError(t, err)
	_, err = services.Auction.MarkSold(ctx, a.ID, host.ID)
	require.NoError(t, err)

	// The sale landed in the database, not just in memory.
	var team domain.Team
	require.NoError(t, testDB.DB.First(&team, "id = ?", reds.ID).Error)
	assert.Equal(t, int64(10), team.Spent)

	var sold int64
	require.NoError(t, testDB.DB.Model(&domain.Player{}).
		Where("auction_id = ? AND status = ?", a.ID, domain.PlayerStatusSold).
		Count(&sold).Error)
	assert.Equal(t, int64(1), sold)
}

func TestAuctionService_GetStateWithoutEngine(t *testing.T) {
	services, testDB := newAuctionService(t)
	ctx := context.Background()
	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	a := testutil.NewAuctionBuilder().WithHost(host).Build(t, testDB.DB)
	testutil.SeedTeam(t, testDB.DB, a, "Reds")
	testutil.SeedTeam(t, testDB.DB, a, "Blues")

	// A draft auction has no engine yet; state is derived from the
	// stored records.
	state, err := services.Auction.GetState(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AuctionStatusDraft, state.Status)
	assert.Len(t, state.Teams, 2)
}

func TestAuctionService_CancelPersistsTerminalStatus(t *testing.T) {
	services, testDB := newAuctionService(t)
	ctx := context.Background()
	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	a := testutil.NewAuctionBuilder().WithHost(host).Build(t, testDB.DB)
	testutil.SeedTeam(t, testDB.DB, a, "Reds")
	testutil.SeedTeam(t, testDB.DB, a, "Blues")
	testutil.SeedPlayers(t, testDB.DB, a, 2)

	_, err := services.Auction.StartAuction(ctx, a.ID, host.ID)
	require.NoError(t, err)
	state, err := services.Auction.CancelAuction(ctx, a.ID, host.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AuctionStatusCancelled, state.Status)

	stored, err := services.Auction.GetAuction(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AuctionStatusCancelled, stored.Status)

	// No further commands are accepted on a cancelled auction.
	_, err = services.Auction.StartAuction(ctx, a.ID, host.ID)
	assert.ErrorIs(t, err, domain.ErrAuctionClosed)
}

func TestRosterService_DraftStageOnly(t *testing.T) {
	services, testDB := newAuctionService(t)
	ctx := context.Background()
	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	captain, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	a := testutil.NewAuctionBuilder().WithHost(host).Build(t, testDB.DB)

	team, err := services.Roster.AddTeam(ctx, service.AddTeamInput{
		AuctionID: a.ID,
		HostID:    host.ID,
		CaptainID: captain.ID,
		TeamName:  "Reds",
	})
	require.NoError(t, err)
	assert.Equal(t, a.MaxTokensPerCaptain, team.Purse, "teams start with the full purse")

	// The same captain cannot lead two teams in one auction.
	_, err = services.Roster.AddTeam(ctx, service.AddTeamInput{
		AuctionID: a.ID,
		HostID:    host.ID,
		CaptainID: captain.ID,
		TeamName:  "Reds Again",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	testutil.SeedTeam(t, testDB.DB, a, "Blues")
	testutil.SeedPlayers(t, testDB.DB, a, 2)
	_, err = services.Auction.StartAuction(ctx, a.ID, host.ID)
	require.NoError(t, err)

	// Roster edits are rejected once the auction is underway.
	_, err = services.Roster.AddPlayer(ctx, service.AddPlayerInput{
		AuctionID:   a.ID,
		HostID:      host.ID,
		DisplayName: "Latecomer",
	})
	assert.ErrorIs(t, err, domain.ErrAuctionStarted)
}

func TestSetupService_Lifecycle(t *testing.T) {
	services, testDB := newAuctionService(t)
	ctx := context.Background()
	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	// Nothing saved yet.
	draft, err := services.Setup.Get(ctx, host.ID)
	require.NoError(t, err)
	assert.Nil(t, draft)

	payload := service.SetupPayload{
		Name:                "Winter Cup",
		MaxTokensPerCaptain: 500,
		MinBidAmount:        10,
		MinIncrement:        5,
		UseFixedIncrements:  true,
		TimerSeconds:        20,
		PlayerOrderType:     domain.PlayerOrderRandom,
	}

	_, err = services.Setup.Save(ctx, host.ID, 1, payload)
	require.NoError(t, err)

	// Saving again replaces the single in-progress record.
	payload.TimerSeconds = 45
	_, err = services.Setup.Save(ctx, host.ID, 2, payload)
	require.NoError(t, err)

	draft, err = services.Setup.Get(ctx, host.ID)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, 2, draft.Step)

	a, err := services.Setup.Finalize(ctx, host.ID)
	require.NoError(t, err)
	assert.Equal(t, "Winter Cup", a.Name)
	assert.Equal(t, 45, a.TimerSeconds)
	assert.Equal(t, domain.AuctionStatusDraft, a.Status)

	// Finalize consumes the wizard state.
	draft, err = services.Setup.Get(ctx, host.ID)
	require.NoError(t, err)
	assert.Nil(t, draft)
}
