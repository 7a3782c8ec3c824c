package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DeadLetterQueueName is the terminal queue Consumer escalates
// repeatedly-failing messages to.
const DeadLetterQueueName = "dead-letter"

// PostgresQueue implements Queue over the queue_messages table, claiming
// work with SELECT ... FOR UPDATE SKIP LOCKED — the same claim idiom
// tarsy's Worker.claimNextSession uses against its sessions table,
// generalized here to an opaque JSON envelope instead of an AlertSession
// row.
type PostgresQueue struct {
	db *sql.DB
}

func NewPostgresQueue(db *sql.DB) *PostgresQueue {
	return &PostgresQueue{db: db}
}

func (q *PostgresQueue) Send(ctx context.Context, queueName string, body []byte) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO queue_messages (queue_name, body) VALUES ($1, $2)`,
		queueName, body)
	if err != nil {
		return fmt.Errorf("send to %s: %w", queueName, err)
	}
	return nil
}

func (q *PostgresQueue) Receive(ctx context.Context, queueName string, visibilityTimeout time.Duration) (*Message, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("receive from %s: begin: %w", queueName, err)
	}
	defer tx.Rollback()

	var msg Message
	var body []byte
	err = tx.QueryRowContext(ctx, `
		SELECT id, body, dequeue_count
		FROM queue_messages
		WHERE queue_name = $1 AND deleted_at IS NULL AND visible_at <= now()
		ORDER BY id
		LIMIT 1
		FOR UPDATE SKIP LOCKED`,
		queueName,
	).Scan(&msg.ID, &body, &msg.DequeueCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("receive from %s: claim: %w", queueName, err)
	}

	msg.DequeueCount++
	_, err = tx.ExecContext(ctx,
		`UPDATE queue_messages SET visible_at = now() + make_interval(secs => $1), dequeue_count = $2 WHERE id = $3`,
		visibilityTimeout.Seconds(), msg.DequeueCount, msg.ID)
	if err != nil {
		return nil, fmt.Errorf("receive from %s: extend visibility: %w", queueName, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("receive from %s: commit: %w", queueName, err)
	}

	msg.QueueName = queueName
	msg.Body = body
	return &msg, nil
}

func (q *PostgresQueue) Delete(ctx context.Context, m *Message) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE queue_messages SET deleted_at = now() WHERE id = $1`, m.ID)
	if err != nil {
		return fmt.Errorf("delete message %d: %w", m.ID, err)
	}
	return nil
}

func (q *PostgresQueue) DeadLetter(ctx context.Context, m *Message) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deadletter message %d: begin: %w", m.ID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO queue_messages (queue_name, body) VALUES ($1, $2)`,
		DeadLetterQueueName, m.Body,
	); err != nil {
		return fmt.Errorf("deadletter message %d: insert: %w", m.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE queue_messages SET deleted_at = now() WHERE id = $1`, m.ID,
	); err != nil {
		return fmt.Errorf("deadletter message %d: ack original: %w", m.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("deadletter message %d: commit: %w", m.ID, err)
	}
	return nil
}
