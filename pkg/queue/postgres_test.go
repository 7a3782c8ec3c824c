package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmail-inject/ctf-control-plane/pkg/queue"
	testdatabase "github.com/llmail-inject/ctf-control-plane/test/database"
)

func TestPostgresQueue_SendReceiveDelete(t *testing.T) {
	client := testdatabase.NewTestClient(t)
	q := queue.NewPostgresQueue(client.DB())
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, "results", []byte(`{"job_id":"1"}`)))

	msg, err := q.Receive(ctx, "results", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, []byte(`{"job_id":"1"}`), msg.Body)
	assert.Equal(t, 1, msg.DequeueCount)

	// hidden for the visibility timeout, so a second receive sees nothing
	again, err := q.Receive(ctx, "results", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, again)

	require.NoError(t, q.Delete(ctx, msg))
}

func TestPostgresQueue_Receive_EmptyQueueReturnsNilNil(t *testing.T) {
	client := testdatabase.NewTestClient(t)
	q := queue.NewPostgresQueue(client.DB())

	msg, err := q.Receive(context.Background(), "results", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestPostgresQueue_Receive_VisibilityTimeoutExpires(t *testing.T) {
	client := testdatabase.NewTestClient(t)
	q := queue.NewPostgresQueue(client.DB())
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, "results", []byte("payload")))
	msg, err := q.Receive(ctx, "results", 0)
	require.NoError(t, err)
	require.NotNil(t, msg)

	redelivered, err := q.Receive(ctx, "results", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, redelivered)
	assert.Equal(t, 2, redelivered.DequeueCount)
}

func TestPostgresQueue_DeadLetter_ForwardsAndAcks(t *testing.T) {
	client := testdatabase.NewTestClient(t)
	q := queue.NewPostgresQueue(client.DB())
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, "results", []byte("poison")))
	msg, err := q.Receive(ctx, "results", time.Minute)
	require.NoError(t, err)

	require.NoError(t, q.DeadLetter(ctx, msg))

	onDeadLetter, err := q.Receive(ctx, queue.DeadLetterQueueName, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, onDeadLetter)
	assert.Equal(t, []byte("poison"), onDeadLetter.Body)

	onOriginal, err := q.Receive(ctx, "results", 0)
	require.NoError(t, err)
	assert.Nil(t, onOriginal, "the original message was acked, not just copied")
}
