package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikhil/auction-arena/internal/domain"
	"github.com/nikhil/auction-arena/internal/repository/postgres"
	"github.com/nikhil/auction-arena/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	host := &domain.User{
		ID:           uuid.New(),
		DisplayName:  "marta_hosts",
		PasswordHash: "not-a-real-hash",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(ctx, host))

	// Display names are the public identity on the bid board, so the
	// unique index must hold even with a different ID.
	impostor := &domain.User{
		ID:           uuid.New(),
		DisplayName:  "marta_hosts",
		PasswordHash: "another-hash",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	assert.Error(t, repo.Create(ctx, impostor))
}

func TestUserRepository_Lookups(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	captain, _ := testutil.NewUserBuilder().
		WithDisplayName("reds_captain").
		Build(t, testDB.DB)

	tests := []struct {
		name   string
		lookup func() (*domain.User, error)
		found  bool
	}{
		{
			name:   "by ID",
			lookup: func() (*domain.User, error) { return repo.GetByID(ctx, captain.ID) },
			found:  true,
		},
		{
			name:   "by display name",
			lookup: func() (*domain.User, error) { return repo.GetByDisplayName(ctx, "reds_captain") },
			found:  true,
		},
		{
			name:   "unknown ID",
			lookup: func() (*domain.User, error) { return repo.GetByID(ctx, uuid.New()) },
		},
		{
			name:   "unknown display name",
			lookup: func() (*domain.User, error) { return repo.GetByDisplayName(ctx, "greens_captain") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.lookup()
			if !tt.found {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, captain.ID, got.ID)
			assert.Equal(t, captain.DisplayName, got.DisplayName)
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	captain, _ := testutil.NewUserBuilder().
		WithDisplayName("provisional_captain").
		Build(t, testDB.DB)

	// A captain renaming themselves before the draft keeps the same
	// account; only the board name changes.
	captain.DisplayName = "blues_captain"
	require.NoError(t, repo.Update(ctx, captain))

	got, err := repo.GetByID(ctx, captain.ID)
	require.NoError(t, err)
	assert.Equal(t, "blues_captain", got.DisplayName)
}
