// Package queue implements the named work-queue port over a single
// Postgres table, the relational analogue of the Azure Queue Storage
// visibility-timeout semantics the original system relied on, and a
// generic poll-loop consumer generalized from tarsy's
// Worker.run/pollAndProcess loop (pkg/queue/worker.go).
package queue

import (
	"context"
	"errors"
	"time"
)

// ErrNoMessages names the empty-queue condition. Neither PostgresQueue
// nor Consumer returns it: Queue.Receive reports an empty queue as
// (nil, nil).
var ErrNoMessages = errors.New("no messages available")

// Message is an envelope claimed from a queue. ID is opaque to callers
// and only meaningful to Delete/DeadLetter on the same Queue instance.
type Message struct {
	ID           int64
	QueueName    string
	Body         []byte
	DequeueCount int
}

// Queue is the named work-queue port. Queue names used by the control
// plane are "dispatch", "dispatch-tasktracker" (scenario-chosen, send
// only — workers consume these), "results", and "dead-letter".
type Queue interface {
	Send(ctx context.Context, queueName string, body []byte) error
	// Receive claims the oldest visible message on queueName, hiding it
	// for visibilityTimeout. It returns (nil, nil) when the queue has
	// nothing currently visible.
	Receive(ctx context.Context, queueName string, visibilityTimeout time.Duration) (*Message, error)
	// Delete acknowledges a message, removing it permanently.
	Delete(ctx context.Context, m *Message) error
	// DeadLetter forwards a message's body onto the dead-letter queue
	// and acknowledges the original. Callers invoke this themselves once
	// a message's DequeueCount exceeds the configured threshold — the
	// queue never dead-letters on its own.
	DeadLetter(ctx context.Context, m *Message) error
}
