package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmail-inject/ctf-control-plane/pkg/models"
)

func newTeam(id string, solutions map[string]string) *models.Team {
	return &models.Team{TeamID: id, SolutionDetails: solutions}
}

func TestOrder_FirstToSolveWins(t *testing.T) {
	catalog := []*models.Scenario{{ScenarioID: "level1k"}}
	teamA := newTeam("A", map[string]string{"level1k": "2026-01-01T00:01:00Z"})
	teamB := newTeam("B", map[string]string{"level1k": "2026-01-01T00:02:00Z"})

	ordered := Order([]*models.Team{teamB, teamA}, catalog, DefaultParams)
	require.Len(t, ordered, 2)
	assert.Equal(t, "A", ordered[0].TeamID)
	assert.Equal(t, "B", ordered[1].TeamID)
	assert.Equal(t, 34000, teamA.Score)
	assert.Equal(t, 32300, teamB.Score)
}

// X scores 34000+34000, Y 32300+32300 (second on both shared scenarios),
// and Z 40000 for its unshared solve: two shared solves still outrank one
// solo solve.
func TestOrder_TwoSharedSolvesOutrankOneSoloSolve(t *testing.T) {
	catalog := []*models.Scenario{{ScenarioID: "level1k"}, {ScenarioID: "level1l"}, {ScenarioID: "level2v"}}
	x := newTeam("X", map[string]string{
		"level1k": "2026-01-01T00:01:00Z",
		"level1l": "2026-01-01T00:02:00Z",
	})
	y := newTeam("Y", map[string]string{
		"level1k": "2026-01-01T00:03:00Z",
		"level1l": "2026-01-01T00:04:00Z",
	})
	z := newTeam("Z", map[string]string{
		"level2v": "2026-01-01T00:05:00Z",
	})

	ordered := Order([]*models.Team{x, y, z}, catalog, DefaultParams)
	assert.Equal(t, []string{"X", "Y", "Z"}, []string{ordered[0].TeamID, ordered[1].TeamID, ordered[2].TeamID})
}

func TestOrder_DeterministicAcrossInputOrder(t *testing.T) {
	catalog := []*models.Scenario{{ScenarioID: "level1k"}}
	teams := func() []*models.Team {
		return []*models.Team{
			newTeam("A", map[string]string{"level1k": "2026-01-01T00:01:00Z"}),
			newTeam("B", map[string]string{"level1k": "2026-01-01T00:02:00Z"}),
			newTeam("C", map[string]string{}),
		}
	}

	first := Order(teams(), catalog, DefaultParams)
	reversed := teams()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	second := Order(reversed, catalog, DefaultParams)

	var firstIDs, secondIDs []string
	for _, t := range first {
		firstIDs = append(firstIDs, t.TeamID)
	}
	for _, t := range second {
		secondIDs = append(secondIDs, t.TeamID)
	}
	assert.Equal(t, firstIDs, secondIDs)
}

func TestOrder_TieBreaksOnTeamIDWhenIdentical(t *testing.T) {
	catalog := []*models.Scenario{{ScenarioID: "level1k"}}
	teamZ := newTeam("zzz", map[string]string{"level1k": "2026-01-01T00:01:00Z"})
	teamA := newTeam("aaa", map[string]string{"level1k": "2026-01-01T00:01:00Z"})

	ordered := Order([]*models.Team{teamZ, teamA}, catalog, DefaultParams)
	assert.Equal(t, "aaa", ordered[0].TeamID, "identical score and avg solve time breaks on team_id")
}

func TestOrder_MonotoneInSolvedScenarios(t *testing.T) {
	catalog := []*models.Scenario{{ScenarioID: "level1k"}, {ScenarioID: "level1l"}}
	before := newTeam("A", map[string]string{"level1k": "2026-01-01T00:01:00Z"})
	after := newTeam("A", map[string]string{
		"level1k": "2026-01-01T00:01:00Z",
		"level1l": "2026-01-01T00:02:00Z",
	})

	Order([]*models.Team{before}, catalog, DefaultParams)
	Order([]*models.Team{after}, catalog, DefaultParams)
	assert.GreaterOrEqual(t, after.Score, before.Score)
}

func TestOrder_ExcludesScenariosNotInCatalog(t *testing.T) {
	catalog := []*models.Scenario{{ScenarioID: "level1k"}}
	team := newTeam("A", map[string]string{
		"level1k":     "2026-01-01T00:01:00Z",
		"retired-lvl": "2026-01-01T00:02:00Z",
	})
	Order([]*models.Team{team}, catalog, DefaultParams)
	assert.Equal(t, 40000, team.Score, "a solve for a scenario outside the active catalog contributes nothing")
}

func TestOrder_MalformedTimestampIgnored(t *testing.T) {
	catalog := []*models.Scenario{{ScenarioID: "level1k"}}
	team := newTeam("A", map[string]string{"level1k": "not-a-timestamp"})
	ordered := Order([]*models.Team{team}, catalog, DefaultParams)
	assert.Equal(t, 0, ordered[0].Score)
}

func TestOrder_SetsTransientFields(t *testing.T) {
	catalog := []*models.Scenario{{ScenarioID: "level1k"}}
	team := newTeam("A", map[string]string{"level1k": "2026-01-01T00:01:00Z"})
	Order([]*models.Team{team}, catalog, DefaultParams)
	assert.True(t, team.Scored)

	parsed, err := time.Parse(time.RFC3339Nano, "2026-01-01T00:01:00Z")
	require.NoError(t, err)
	assert.InDelta(t, unixSeconds(parsed), team.AvgSolveTime, 0.001)
}
