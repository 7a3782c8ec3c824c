// Package scoring computes a deterministic, tie-free ordering of teams
// from their solve history, porting the original's
// BasicScoringModelCutoff (original_source/src/api/services/scoring.py).
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/llmail-inject/ctf-control-plane/pkg/models"
)

// Params holds the scoring model's tunable constants. DefaultParams
// matches BasicScoringModelCutoff's defaults.
type Params struct {
	BaseScore            float64
	MinDecayedScore      float64
	DifficultyMultiplier float64
	OrderMultiplier      float64
}

// DefaultParams are the original's documented defaults.
var DefaultParams = Params{
	BaseScore:            40000,
	MinDecayedScore:      30000,
	DifficultyMultiplier: 0.85,
	OrderMultiplier:      0.95,
}

type solve struct {
	teamID    string
	scenario  string
	timestamp float64 // Unix seconds
}

// Order returns teams sorted best-first: highest total score, ties
// broken by earliest average solve time, remaining ties broken by
// team_id lexicographic order to guarantee a total order even when two
// teams share an identical solve set and timestamp (the spec's Open
// Question on scoring ties).
//
// It also sets each team's transient Score/AvgSolveTime/Scored fields
// so API projections can surface them without a second pass.
func Order(teams []*models.Team, catalog []*models.Scenario, params Params) []*models.Team {
	validScenarios := make(map[string]bool, len(catalog))
	for _, sc := range catalog {
		validScenarios[sc.ScenarioID] = true
	}

	var solves []solve
	for _, t := range teams {
		for scenario, iso := range t.SolutionDetails {
			if !validScenarios[scenario] {
				continue
			}
			ts, err := time.Parse(time.RFC3339Nano, iso)
			if err != nil {
				continue
			}
			solves = append(solves, solve{teamID: t.TeamID, scenario: scenario, timestamp: unixSeconds(ts)})
		}
	}

	levelTimes := make(map[string][]float64)
	for _, s := range solves {
		levelTimes[s.scenario] = append(levelTimes[s.scenario], s.timestamp)
	}
	for scenario := range levelTimes {
		sort.Float64s(levelTimes[scenario])
	}

	solvesByTeam := make(map[string][]solve)
	for _, s := range solves {
		solvesByTeam[s.teamID] = append(solvesByTeam[s.teamID], s)
	}

	for _, t := range teams {
		teamSolves := solvesByTeam[t.TeamID]

		var total float64
		var sumTimestamps float64
		for _, s := range teamSolves {
			rank := rankOf(levelTimes[s.scenario], s.timestamp)
			levelSolves := len(levelTimes[s.scenario])

			score := params.BaseScore * math.Pow(params.OrderMultiplier, float64(rank))
			score = math.Max(score, params.MinDecayedScore)
			score *= math.Pow(params.DifficultyMultiplier, float64(levelSolves-1))

			total += score
			sumTimestamps += s.timestamp
		}

		avg := 0.0
		if len(teamSolves) > 0 {
			avg = sumTimestamps / float64(len(teamSolves))
		}

		t.Score = int(total)
		t.AvgSolveTime = avg
		t.Scored = true
	}

	ordered := make([]*models.Team, len(teams))
	copy(ordered, teams)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.AvgSolveTime != b.AvgSolveTime {
			return a.AvgSolveTime < b.AvgSolveTime
		}
		return a.TeamID < b.TeamID
	})
	return ordered
}

// rankOf returns the index of the first occurrence of ts in the sorted
// slice, matching the original's list.index(timestamp) semantics —
// simultaneous solves of the same scenario collapse to the same rank.
func rankOf(sorted []float64, ts float64) int {
	for i, v := range sorted {
		if v == ts {
			return i
		}
	}
	return len(sorted) - 1
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
