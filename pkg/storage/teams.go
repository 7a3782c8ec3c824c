package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/llmail-inject/ctf-control-plane/pkg/models"
)

// TeamStore is the durable port for Team records.
type TeamStore interface {
	Upsert(ctx context.Context, t *models.Team) error
	Get(ctx context.Context, teamID string) (*models.Team, error)
	GetByName(ctx context.Context, name string) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	Delete(ctx context.Context, teamID string) error
}

// PostgresTeamStore implements TeamStore over the teams table.
type PostgresTeamStore struct {
	store *store[models.Team, *models.Team]
	db    *sql.DB
}

func NewTeamStore(db *sql.DB) *PostgresTeamStore {
	return &PostgresTeamStore{store: newStore[models.Team, *models.Team](db, "teams"), db: db}
}

func (s *PostgresTeamStore) Upsert(ctx context.Context, t *models.Team) error {
	return s.store.upsert(ctx, t)
}

func (s *PostgresTeamStore) Get(ctx context.Context, teamID string) (*models.Team, error) {
	return s.store.get(ctx, teamID, teamID)
}

func (s *PostgresTeamStore) List(ctx context.Context) ([]*models.Team, error) {
	return s.store.list(ctx)
}

func (s *PostgresTeamStore) Delete(ctx context.Context, teamID string) error {
	return s.store.delete(ctx, teamID, teamID)
}

// GetByName looks a team up by its unique name using the generated,
// indexed name column — a parameterized query, never a string-
// concatenated filter.
func (s *PostgresTeamStore) GetByName(ctx context.Context, name string) (*models.Team, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM teams WHERE name = $1`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get team by name: %w", err)
	}
	return decode[models.Team](raw, "teams")
}
