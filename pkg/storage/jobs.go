package storage

import (
	"context"
	"database/sql"

	"github.com/llmail-inject/ctf-control-plane/pkg/models"
)

// JobStore is the durable port for JobRecord records.
type JobStore interface {
	Upsert(ctx context.Context, j *models.JobRecord) error
	Get(ctx context.Context, teamID, jobID string) (*models.JobRecord, error)
	ListByTeam(ctx context.Context, teamID string) ([]*models.JobRecord, error)
}

// PostgresJobStore implements JobStore over the jobs table.
type PostgresJobStore struct {
	store *store[models.JobRecord, *models.JobRecord]
}

func NewJobStore(db *sql.DB) *PostgresJobStore {
	return &PostgresJobStore{store: newStore[models.JobRecord, *models.JobRecord](db, "jobs")}
}

func (s *PostgresJobStore) Upsert(ctx context.Context, j *models.JobRecord) error {
	return s.store.upsert(ctx, j)
}

func (s *PostgresJobStore) Get(ctx context.Context, teamID, jobID string) (*models.JobRecord, error) {
	return s.store.get(ctx, teamID, jobID)
}

func (s *PostgresJobStore) ListByTeam(ctx context.Context, teamID string) ([]*models.JobRecord, error) {
	return s.store.listByPartition(ctx, teamID)
}
