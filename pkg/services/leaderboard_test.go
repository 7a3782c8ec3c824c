package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmail-inject/ctf-control-plane/pkg/models"
	"github.com/llmail-inject/ctf-control-plane/pkg/services"
)

func TestLeaderboardService_Get_ReturnsEmptySnapshotWhenNeverBuilt(t *testing.T) {
	svc := services.NewLeaderboardService(newFakeTeamStore(), newFakeScenarioStore(), newFakeLeaderboardStore(), 1, time.Minute, testLogger())

	board, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, board.Phase)
	assert.Empty(t, board.TeamIDs)
}

func TestLeaderboardService_BuildOnce_OrdersAndExcludesDeletedTeams(t *testing.T) {
	teams := newFakeTeamStore()
	scenarios := newFakeScenarioStore()
	boards := newFakeLeaderboardStore()
	ctx := context.Background()

	require.NoError(t, scenarios.Upsert(ctx, &models.Scenario{ScenarioID: "level1a", Phase: 1}))
	require.NoError(t, teams.Upsert(ctx, &models.Team{
		TeamID: "winner", SolutionDetails: map[string]string{"level1a": "2026-01-01T00:01:00Z"},
	}))
	require.NoError(t, teams.Upsert(ctx, &models.Team{
		TeamID: "late", SolutionDetails: map[string]string{"level1a": "2026-01-01T00:02:00Z"},
	}))
	require.NoError(t, teams.Upsert(ctx, &models.Team{TeamID: "gone", Deleted: true}))

	svc := services.NewLeaderboardService(teams, scenarios, boards, 1, time.Minute, testLogger())
	require.NoError(t, svc.BuildOnce(ctx))

	board, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"winner", "late"}, board.TeamIDs)
}

func TestLeaderboardService_BuildOnce_ScopesToItsOwnPhase(t *testing.T) {
	teams := newFakeTeamStore()
	scenarios := newFakeScenarioStore()
	boards := newFakeLeaderboardStore()
	ctx := context.Background()

	require.NoError(t, scenarios.Upsert(ctx, &models.Scenario{ScenarioID: "level1a", Phase: 1}))
	require.NoError(t, scenarios.Upsert(ctx, &models.Scenario{ScenarioID: "level2a", Phase: 2}))
	require.NoError(t, teams.Upsert(ctx, &models.Team{TeamID: "t1"}))

	svc := services.NewLeaderboardService(teams, scenarios, boards, 2, time.Minute, testLogger())
	require.NoError(t, svc.BuildOnce(ctx))

	_, err := boards.Get(ctx, 1)
	assert.Error(t, err, "only the configured phase's board is written")
	board2, err := boards.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, board2.Phase)
}

func TestLeaderboardService_StartStop_BuildsImmediatelyThenCanStop(t *testing.T) {
	teams := newFakeTeamStore()
	scenarios := newFakeScenarioStore()
	boards := newFakeLeaderboardStore()
	require.NoError(t, teams.Upsert(context.Background(), &models.Team{TeamID: "t1"}))

	svc := services.NewLeaderboardService(teams, scenarios, boards, 1, time.Hour, testLogger())
	svc.Start(context.Background())
	svc.Stop()

	board, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, board.TeamIDs, "Start builds once immediately rather than waiting a full interval")
}
