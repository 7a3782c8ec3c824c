package storage

import (
	"context"
	"database/sql"

	"github.com/llmail-inject/ctf-control-plane/pkg/models"
)

// ScenarioStore is the durable port for Scenario records.
type ScenarioStore interface {
	Upsert(ctx context.Context, s *models.Scenario) error
	Get(ctx context.Context, scenarioID string) (*models.Scenario, error)
	List(ctx context.Context) ([]*models.Scenario, error)
	ListByPhase(ctx context.Context, phase int) ([]*models.Scenario, error)
}

// PostgresScenarioStore implements ScenarioStore over the scenarios table.
type PostgresScenarioStore struct {
	store *store[models.Scenario, *models.Scenario]
}

func NewScenarioStore(db *sql.DB) *PostgresScenarioStore {
	return &PostgresScenarioStore{store: newStore[models.Scenario, *models.Scenario](db, "scenarios")}
}

func (s *PostgresScenarioStore) Upsert(ctx context.Context, sc *models.Scenario) error {
	return s.store.upsert(ctx, sc)
}

func (s *PostgresScenarioStore) Get(ctx context.Context, scenarioID string) (*models.Scenario, error) {
	return s.store.get(ctx, scenarioID, scenarioID)
}

func (s *PostgresScenarioStore) List(ctx context.Context) ([]*models.Scenario, error) {
	return s.store.list(ctx)
}

// ListByPhase filters the catalog by phase at read time, matching the
// original's read-time `int(phase) == active` filter rather than a
// second indexed table — the catalog is small enough that this never
// needs its own index.
func (s *PostgresScenarioStore) ListByPhase(ctx context.Context, phase int) ([]*models.Scenario, error) {
	all, err := s.store.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Scenario, 0, len(all))
	for _, sc := range all {
		if sc.Phase == phase {
			out = append(out, sc)
		}
	}
	return out, nil
}
