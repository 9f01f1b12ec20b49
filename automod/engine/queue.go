package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
)

const (
	DefaultSpacing       = 1200 * time.Millisecond
	DefaultOutcomeBuffer = 64
)

type Classifier interface {
	Classify(ctx context.Context, text string) automod.Result
}

// Result of draining one message from the queue.
type Outcome struct {
	Message automod.Message
	Result  automod.Result
	// set if classification itself blew up (eg, a panic); Result is unset in that case
	Err error
	// when the classification call started
	StartedAt time.Time
}

type QueueConfig struct {
	// minimum time between the starts of two consecutive classification calls
	Spacing time.Duration
	// capacity of the outcome channel; a full channel stalls the drain loop
	OutcomeBuffer int
	Logger        *slog.Logger
}

// Throttled FIFO between ingestion and the classifier.
//
// At most one drain goroutine exists at a time. It is started by Enqueue when the queue is idle, and exits as soon as the queue is empty. Consecutive classification calls are spaced by at least Spacing, measured from call start to call start; the spacing sleep is not interrupted by shutdown. Every drained message produces exactly one Outcome on the Outcomes channel, in FIFO order.
type Queue struct {
	classifier Classifier
	spacing    time.Duration
	logger     *slog.Logger
	outcomes   chan Outcome

	mu       sync.Mutex
	items    []automod.Message
	draining bool
	closed   bool
	wg       sync.WaitGroup

	// only touched by the active drain goroutine; drains never overlap
	lastCall time.Time

	shutdownOnce sync.Once
	done         chan struct{}
}

func NewQueue(classifier Classifier, config QueueConfig) *Queue {
	if config.Spacing <= 0 {
		config.Spacing = DefaultSpacing
	}
	if config.OutcomeBuffer <= 0 {
		config.OutcomeBuffer = DefaultOutcomeBuffer
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		classifier: classifier,
		spacing:    config.Spacing,
		logger:     logger.With("component", "queue"),
		outcomes:   make(chan Outcome, config.OutcomeBuffer),
		done:       make(chan struct{}),
	}
}

// Appends a message to the tail of the queue, starting a drain if none is active. Returns false only once Shutdown has been called.
func (q *Queue) Enqueue(msg automod.Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		queueRejected.Inc()
		return false
	}
	q.items = append(q.items, msg)
	queueLength.Set(float64(len(q.items)))
	queueEnqueued.Inc()
	if !q.draining {
		q.draining = true
		q.wg.Add(1)
		go q.drain()
	}
	return true
}

// Channel of classification outcomes. Closed after Shutdown, once the last drain has finished.
func (q *Queue) Outcomes() <-chan Outcome {
	return q.outcomes
}

// Number of messages waiting (not counting one being classified).
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Whether a drain goroutine is currently active.
func (q *Queue) Processing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.draining
}

// Drops all pending messages, returning how many were dropped. A message already being classified still produces its outcome.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	q.items = nil
	queueLength.Set(0)
	if n > 0 {
		q.logger.Info("cleared pending messages", "count", n)
	}
	return n
}

// Stops accepting messages and waits for the active drain to finish the backlog, then closes the outcome channel.
//
// If ctx ends first, pending messages are dropped and ctx.Err() is returned; the channel is still closed once the in-flight message (if any) is done.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.shutdownOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		go func() {
			q.wg.Wait()
			close(q.outcomes)
			close(q.done)
		}()
	})

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		q.Clear()
		return ctx.Err()
	}
}

func (q *Queue) pop() (automod.Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		q.draining = false
		return automod.Message{}, false
	}
	msg := q.items[0]
	q.items[0] = automod.Message{}
	q.items = q.items[1:]
	queueLength.Set(float64(len(q.items)))
	return msg, true
}

func (q *Queue) drain() {
	defer q.wg.Done()
	q.logger.Debug("drain started")
	for {
		msg, ok := q.pop()
		if !ok {
			q.logger.Debug("drain finished, queue empty")
			return
		}

		if !q.lastCall.IsZero() {
			if wait := q.spacing - time.Since(q.lastCall); wait > 0 {
				queueSpacingWait.Observe(wait.Seconds())
				time.Sleep(wait)
			}
		}
		q.lastCall = time.Now()

		q.outcomes <- q.classify(msg, q.lastCall)
	}
}

func (q *Queue) classify(msg automod.Message, started time.Time) (out Outcome) {
	out = Outcome{Message: msg, StartedAt: started}
	// a misbehaving classifier must not take down the drain loop
	defer func() {
		if r := recover(); r != nil {
			queueItemErrors.Inc()
			out.Result = automod.Result{}
			out.Err = fmt.Errorf("classification panic: %v", r)
			q.logger.Error("classification panicked", "err", r, "chat", msg.ChatID, "message", msg.MessageID)
		}
	}()
	// the classifier enforces its own per-call deadline
	out.Result = q.classifier.Classify(context.Background(), msg.Text)
	return out
}
