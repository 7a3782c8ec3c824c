package queue

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// Step processes one message body. A non-nil return re-delivers the
// message after its visibility timeout expires — consumers never
// swallow unexpected failures, matching the spec's propagation policy
// for queue triggers.
type Step func(ctx context.Context, body []byte) error

// Consumer is a poll loop over a single named queue, generalized from
// tarsy's Worker.run/pollAndProcess (pkg/queue/worker.go): a jittered
// poll interval, a stop channel, and a claim-process-ack cycle. Where
// tarsy's worker claims an AlertSession row and hands it to a
// SessionExecutor, this claims a Message and hands its body to a Step.
type Consumer struct {
	queue              Queue
	queueName          string
	visibilityTimeout  time.Duration
	maxDequeueCount    int
	step               Step
	logger             *slog.Logger
	basePollInterval   time.Duration
	stopCh             chan struct{}
	stopOnce           sync.Once
	wg                 sync.WaitGroup
}

// NewConsumer builds a Consumer. maxDequeueCount is the number of
// receives a message tolerates before the consumer forwards it to the
// dead-letter queue instead of retrying again.
func NewConsumer(q Queue, queueName string, visibilityTimeout time.Duration, maxDequeueCount int, step Step, logger *slog.Logger) *Consumer {
	return &Consumer{
		queue:             q,
		queueName:         queueName,
		visibilityTimeout: visibilityTimeout,
		maxDequeueCount:   maxDequeueCount,
		step:              step,
		logger:            logger.With("queue", queueName),
		basePollInterval:  500 * time.Millisecond,
		stopCh:            make(chan struct{}),
	}
}

// Start begins polling in a background goroutine.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go c.run(ctx)
}

// Stop signals the poll loop to exit and waits for it to finish its
// current cycle.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

func (c *Consumer) run(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		processed, err := c.pollAndProcess(ctx)
		if err != nil {
			c.logger.Error("consumer cycle failed", "error", err)
		}
		if !processed {
			c.sleep(c.pollInterval())
		}
	}
}

func (c *Consumer) pollAndProcess(ctx context.Context) (processed bool, err error) {
	msg, err := c.queue.Receive(ctx, c.queueName, c.visibilityTimeout)
	if err != nil {
		return false, fmt.Errorf("receive: %w", err)
	}
	if msg == nil {
		return false, nil
	}

	if stepErr := c.step(ctx, msg.Body); stepErr != nil {
		if c.maxDequeueCount > 0 && msg.DequeueCount > c.maxDequeueCount {
			if dlErr := c.queue.DeadLetter(ctx, msg); dlErr != nil {
				return true, fmt.Errorf("step failed (%w) and deadletter forward failed: %w", stepErr, dlErr)
			}
			c.logger.Warn("forwarded to dead-letter after repeated failures",
				"dequeue_count", msg.DequeueCount, "error", stepErr)
			return true, nil
		}
		return true, fmt.Errorf("step: %w", stepErr)
	}

	if err := c.queue.Delete(ctx, msg); err != nil {
		return true, fmt.Errorf("ack: %w", err)
	}
	return true, nil
}

func (c *Consumer) sleep(d time.Duration) {
	select {
	case <-time.After(d):
	case <-c.stopCh:
	}
}

// pollInterval jitters the base interval, the same jittered-backoff
// idiom tarsy's Worker.pollInterval uses to avoid every replica waking
// in lockstep.
func (c *Consumer) pollInterval() time.Duration {
	jitter := time.Duration(rand.Int64N(int64(c.basePollInterval)))
	return c.basePollInterval + jitter
}
