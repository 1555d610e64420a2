package services

import (
	"context"
	"testing"

	"ecotrace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	env.logActivity(t, alice.ID, "car", 10)
	env.logActivity(t, alice.ID, "bus", 5)
	env.logActivity(t, alice.ID, "rocket", 3)

	dashboard, err := env.sc.AggregationService.GetDashboard(ctx, alice.ID)
	require.NoError(t, err)

	assert.Equal(t, alice.ID, dashboard.UserID)
	assert.Equal(t, []string{"car", "bus", "rocket"}, dashboard.ActivityLabels)
	require.Len(t, dashboard.EmissionValues, 3)
	assert.InDelta(t, 2.1, dashboard.EmissionValues[0], 1e-9)
	assert.InDelta(t, 0.5, dashboard.EmissionValues[1], 1e-9)
	assert.Equal(t, 0.0, dashboard.EmissionValues[2])
	assert.InDelta(t, 2.6, dashboard.TotalEmissions, 1e-9)
	require.Len(t, dashboard.Badges, 2)
	for _, b := range dashboard.Badges {
		assert.Equal(t, models.BadgeEcoWarrior, b.BadgeName)
	}

	again, err := env.sc.AggregationService.GetDashboard(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, dashboard, again)
}

func TestGetDashboardEmptyAndUnknown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.register(t, "bob")

	dashboard, err := env.sc.AggregationService.GetDashboard(ctx, bob.ID)
	require.NoError(t, err)
	assert.NotNil(t, dashboard.ActivityLabels)
	assert.Empty(t, dashboard.ActivityLabels)
	assert.Empty(t, dashboard.EmissionValues)
	assert.NotNil(t, dashboard.Badges)
	assert.Equal(t, 0.0, dashboard.TotalEmissions)

	_, err = env.sc.AggregationService.GetDashboard(ctx, 999)
	assert.True(t, IsNotFoundError(err))
}

func TestGetDashboardTotalIsRounded(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	for i := 0; i < 3; i++ {
		env.logActivity(t, alice.ID, "car", 1)
	}

	dashboard, err := env.sc.AggregationService.GetDashboard(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.63, dashboard.TotalEmissions)
}

func TestGetLeaderboardRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	env.logActivity(t, alice.ID, "car", 10)
	env.logActivity(t, alice.ID, "bus", 1)

	row, err := env.sc.AggregationService.GetLeaderboardRow(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", row.Username)
	assert.InDelta(t, 2.2, row.TotalEmission, 1e-9)
	assert.Equal(t, 1, row.BadgeCount)
	assert.Zero(t, row.Rank)

	_, err = env.sc.AggregationService.GetLeaderboardRow(ctx, 999)
	assert.True(t, IsNotFoundError(err))
}

func TestGetLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	// carol ties with alice and stays behind alice
	env.logActivity(t, alice.ID, "meat", 2)
	env.logActivity(t, bob.ID, "train", 10)
	env.logActivity(t, carol.ID, "meat", 2)

	rows, err := env.sc.AggregationService.GetLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"bob", "alice", "carol"}, []string{rows[0].Username, rows[1].Username, rows[2].Username})
	for i, r := range rows {
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, 1, rows[0].BadgeCount)
}

func TestGetLeaderboardEmpty(t *testing.T) {
	env := newTestEnv(t)

	rows, err := env.sc.AggregationService.GetLeaderboard(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGetLeaderboardCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	rows, err := env.sc.AggregationService.GetLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// a user created behind the service's back is not seen until the entry
	// is invalidated
	require.NoError(t, env.store.Repos().Users.Create(ctx, &models.User{Username: "bob", Email: "bob@example.com"}))

	cached, err := env.sc.AggregationService.GetLeaderboard(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	env.logActivity(t, alice.ID, "car", 10)

	fresh, err := env.sc.AggregationService.GetLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "bob", fresh[0].Username)
	assert.InDelta(t, 2.1, fresh[1].TotalEmission, 1e-9)
}

func TestGetLeaderboardIncludesNewlyRegisteredUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	rows, err := env.sc.AggregationService.GetLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	env.register(t, "bob")

	rows, err = env.sc.AggregationService.GetLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"alice", "bob"}, []string{rows[0].Username, rows[1].Username})
	assert.Equal(t, 2, rows[1].Rank)
}
