package storage

import (
	"context"
	"database/sql"

	"github.com/llmail-inject/ctf-control-plane/pkg/models"
)

// LeaderboardStore is the durable port for Leaderboard records.
type LeaderboardStore interface {
	Upsert(ctx context.Context, l *models.Leaderboard) error
	Get(ctx context.Context, phase int) (*models.Leaderboard, error)
}

// PostgresLeaderboardStore implements LeaderboardStore over the
// leaderboards table.
type PostgresLeaderboardStore struct {
	store *store[models.Leaderboard, *models.Leaderboard]
}

func NewLeaderboardStore(db *sql.DB) *PostgresLeaderboardStore {
	return &PostgresLeaderboardStore{store: newStore[models.Leaderboard, *models.Leaderboard](db, "leaderboards")}
}

func (s *PostgresLeaderboardStore) Upsert(ctx context.Context, l *models.Leaderboard) error {
	return s.store.upsert(ctx, l)
}

func (s *PostgresLeaderboardStore) Get(ctx context.Context, phase int) (*models.Leaderboard, error) {
	return s.store.get(ctx, "leaderboard", models.LeaderboardRowKey(phase))
}
