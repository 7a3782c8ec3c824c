package models

import (
	"time"

	"github.com/google/uuid"
)

// Team is a competing group of users. It is addressed by TeamID for both
// partition and row key, matching the flat per-entity table layout.
type Team struct {
	TeamID          string            `json:"team_id"`
	Name            string            `json:"name"`
	Members         []string          `json:"members"`
	SolvedScenarios []string          `json:"solved_scenarios"`
	Deleted         bool              `json:"deleted"`
	SolutionDetails map[string]string `json:"solution_details"`

	RateLimitWatermark *float64 `json:"rate_limit_watermark,omitempty"`
	RateLimitSustained *float64 `json:"rate_limit_sustained,omitempty"`
	RateLimitBurst     *int     `json:"rate_limit_burst,omitempty"`
	RateLimitTotal     *int     `json:"rate_limit_total,omitempty"`
	RateLimitCounter   int      `json:"rate_limit_counter"`
	IsEnabled          bool     `json:"is_enabled"`

	// Score is never persisted — it is computed by the scoring package
	// each time a leaderboard is built and attached only for API
	// projection.
	Score int `json:"-"`

	// AvgSolveTime backs the scoring tiebreaker and, like Score, is
	// transient.
	AvgSolveTime float64 `json:"-"`

	// Scored is set by scoring.Order once Score has been computed, so
	// APIView only surfaces the field when it is meaningful.
	Scored bool `json:"-"`
}

// NewTeam constructs a Team with a generated id and the defaults a newly
// registered team starts with.
func NewTeam(name string) *Team {
	return &Team{
		TeamID:          uuid.NewString(),
		Name:            name,
		Members:         []string{},
		SolvedScenarios: []string{},
		SolutionDetails: map[string]string{},
		IsEnabled:       true,
	}
}

func (t *Team) PartitionKey() string { return t.TeamID }
func (t *Team) RowKey() string       { return t.TeamID }

func (t *Team) Enable()  { t.IsEnabled = true }
func (t *Team) Disable() { t.IsEnabled = false }

// UpdateRateLimitWatermark stores the new watermark as Unix seconds.
func (t *Team) UpdateRateLimitWatermark(ts time.Time) {
	w := float64(ts.UnixNano()) / 1e9
	t.RateLimitWatermark = &w
}

// APIViewPublic is the narrower projection shown to anonymous callers
// listing teams: just enough to identify a team, nothing about its
// roster or standing.
func (t *Team) APIViewPublic() map[string]any {
	return map[string]any{
		"team_id": t.TeamID,
		"name":    t.Name,
	}
}

// APIView returns the subset of the team's fields exposed over the API,
// matching the original's __api_fields__ projection.
func (t *Team) APIView() map[string]any {
	view := map[string]any{
		"team_id":          t.TeamID,
		"name":             t.Name,
		"members":          t.Members,
		"is_enabled":       t.IsEnabled,
		"solved_scenarios": t.SolvedScenarios,
	}
	if t.Scored {
		view["score"] = t.Score
	}
	return view
}
