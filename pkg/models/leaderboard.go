package models

import (
	"fmt"
	"time"
)

// Leaderboard holds the last team ordering the builder computed for one
// competition phase. Readers never recompute it; they read whatever the
// builder last persisted.
type Leaderboard struct {
	Phase       int       `json:"phase"`
	TeamIDs     []string  `json:"team_ids"`
	LastUpdated time.Time `json:"last_updated"`
}

// LeaderboardRowKey returns the row key a Leaderboard for the given phase
// is stored and retrieved under.
func LeaderboardRowKey(phase int) string {
	return fmt.Sprintf("leaderboard_phase%d", phase)
}

func (l *Leaderboard) PartitionKey() string { return "leaderboard" }
func (l *Leaderboard) RowKey() string       { return LeaderboardRowKey(l.Phase) }

// APIView returns the subset of fields exposed over the API.
func (l *Leaderboard) APIView() map[string]any {
	return map[string]any{
		"team_ids":     l.TeamIDs,
		"last_updated": l.LastUpdated,
	}
}
