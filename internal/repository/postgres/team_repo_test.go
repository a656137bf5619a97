package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/domain"
	"github.com/nikhil/auction-arena/internal/repository/postgres"
	"github.com/nikhil/auction-arena/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRepository_GetByID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewTeamRepository(testDB.DB)
	ctx := context.Background()

	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	a := testutil.NewAuctionBuilder().WithHost(host).Build(t, testDB.DB)
	team := testutil.SeedTeam(t, testDB.DB, a, "Thunder")

	got, err := repo.GetByID(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thunder", got.TeamName)
	assert.Equal(t, a.MaxTokensPerCaptain, got.Purse)
	require.NotNil(t, got.Captain, "captain relation should be preloaded")
	assert.Equal(t, team.CaptainID, got.Captain.ID)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
}

func TestTeamRepository_GetByCaptain(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewTeamRepository(testDB.DB)
	ctx := context.Background()

	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	a := testutil.NewAuctionBuilder().WithHost(host).Build(t, testDB.DB)
	team := testutil.SeedTeam(t, testDB.DB, a, "Lightning")

	got, err := repo.GetByCaptain(ctx, a.ID, team.CaptainID)
	require.NoError(t, err)
	assert.Equal(t, team.ID, got.ID)

	// Same captain, different auction
	other := testutil.NewAuctionBuilder().WithHost(host).Build(t, testDB.DB)
	_, err = repo.GetByCaptain(ctx, other.ID, team.CaptainID)
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
}

func TestTeamRepository_GetByAuctionID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewTeamRepository(testDB.DB)
	ctx := context.Background()

	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	a := testutil.NewAuctionBuilder().WithHost(host).Build(t, testDB.DB)
	testutil.SeedTeam(t, testDB.DB, a, "First")
	testutil.SeedTeam(t, testDB.DB, a, "Second")

	teams, err := repo.GetByAuctionID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "First", teams[0].TeamName)
	assert.Equal(t, "Second", teams[1].TeamName)
}

func TestTeamRepository_Delete(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewTeamRepository(testDB.DB)
	ctx := context.Background()

	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	a := testutil.NewAuctionBuilder().WithHost(host).Build(t, testDB.DB)
	team := testutil.SeedTeam(t, testDB.DB, a, "Doomed")

	require.NoError(t, repo.Delete(ctx, team.ID))

	_, err := repo.GetByID(ctx, team.ID)
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
}
