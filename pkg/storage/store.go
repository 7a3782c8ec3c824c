// Package storage implements the control plane's entity ports over
// Postgres. Every entity is addressed by (partition_key, row_key) and
// stored as a single JSONB payload column, mirroring the partition-key/
// row-key table model the entities were originally designed around —
// the static Go type already knows which fields are nested collections,
// so the whole entity round-trips as one JSON blob instead of a
// per-field dance.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by entity lookups that find nothing. Every
// port's Get (and TeamStore.GetByName) returns it as is on a miss — see
// storage.TeamStore.Get.
var ErrNotFound = errors.New("entity not found")

// entity is the shape every stored model's pointer type satisfies. Models
// hold PartitionKey/RowKey on pointer receivers, so the store is generic
// over a value type T plus its pointer type PT, the standard pattern for
// pairing a JSON-marshalable value with pointer-receiver methods.
type entity[T any] interface {
	*T
	PartitionKey() string
	RowKey() string
}

// store is the generic CRUD implementation shared by every entity-typed
// repository in this package. It is not exported: callers use the
// entity-specific repositories below, which add the indexed lookups
// each entity actually needs.
type store[T any, PT entity[T]] struct {
	db    *sql.DB
	table string
}

func newStore[T any, PT entity[T]](db *sql.DB, table string) *store[T, PT] {
	return &store[T, PT]{db: db, table: table}
}

func (s *store[T, PT]) get(ctx context.Context, partitionKey, rowKey string) (*T, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE partition_key = $1 AND row_key = $2`, s.table)
	var raw []byte
	err := s.db.QueryRowContext(ctx, query, partitionKey, rowKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.table, err)
	}
	return decode[T](raw, s.table)
}

func (s *store[T, PT]) upsert(ctx context.Context, e PT) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.table, err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (partition_key, row_key, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (partition_key, row_key)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`, s.table)
	if _, err := s.db.ExecContext(ctx, query, e.PartitionKey(), e.RowKey(), payload); err != nil {
		return fmt.Errorf("upsert %s: %w", s.table, err)
	}
	return nil
}

func (s *store[T, PT]) delete(ctx context.Context, partitionKey, rowKey string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE partition_key = $1 AND row_key = $2`, s.table)
	res, err := s.db.ExecContext(ctx, query, partitionKey, rowKey)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *store[T, PT]) list(ctx context.Context) ([]*T, error) {
	return s.query(ctx, fmt.Sprintf(`SELECT payload FROM %s ORDER BY partition_key, row_key`, s.table))
}

func (s *store[T, PT]) listByPartition(ctx context.Context, partitionKey string) ([]*T, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE partition_key = $1 ORDER BY row_key`, s.table)
	return s.query(ctx, query, partitionKey)
}

func (s *store[T, PT]) query(ctx context.Context, query string, args ...any) ([]*T, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.table, err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		e, err := decode[T](raw, s.table)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func decode[T any](raw []byte, table string) (*T, error) {
	var e T
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", table, err)
	}
	return &e, nil
}
