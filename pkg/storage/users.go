package storage

import (
	"context"
	"database/sql"

	"github.com/llmail-inject/ctf-control-plane/pkg/models"
)

// UserStore is the durable port for User records.
type UserStore interface {
	Upsert(ctx context.Context, u *models.User) error
	Get(ctx context.Context, login string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, login string) error
}

// PostgresUserStore implements UserStore over the users table.
type PostgresUserStore struct {
	store *store[models.User, *models.User]
}

func NewUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{store: newStore[models.User, *models.User](db, "users")}
}

func (s *PostgresUserStore) Upsert(ctx context.Context, u *models.User) error {
	return s.store.upsert(ctx, u)
}

func (s *PostgresUserStore) Get(ctx context.Context, login string) (*models.User, error) {
	return s.store.get(ctx, login, login)
}

func (s *PostgresUserStore) List(ctx context.Context) ([]*models.User, error) {
	return s.store.list(ctx)
}

func (s *PostgresUserStore) Delete(ctx context.Context, login string) error {
	return s.store.delete(ctx, login, login)
}
