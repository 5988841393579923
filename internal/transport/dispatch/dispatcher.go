// Package dispatch hands inbound messages to the router so that one user's
// messages are handled in arrival order while different users proceed in
// parallel.
package dispatch

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/hydrotrack-bot/server/internal/tracker/model"
	logx "github.com/hydrotrack-bot/server/pkg/logger"
)

// MaxQueuedPerUser bounds how many messages of one user may wait.
const MaxQueuedPerUser = 64

var (
	ErrClosed    = errors.New("dispatcher closed")
	ErrQueueFull = errors.New("user queue full")
)

// Job is one message plus the transport callback that delivers the reply.
type Job struct {
	Msg   model.InboundMessage
	Reply func(text string)
}

// Handler produces the reply text for a message.
type Handler func(ctx context.Context, msg model.InboundMessage) string

type queued struct {
	ctx context.Context
	job Job
}

// Dispatcher keeps a FIFO per user, drained by a goroutine that exists only
// while the user has pending messages. A weighted semaphore caps how many
// messages are handled at once across all users.
type Dispatcher struct {
	handler Handler
	sem     *semaphore.Weighted

	mu     sync.Mutex
	queues map[int64][]queued
	closed bool
	wg     sync.WaitGroup
}

func New(maxInFlight int, handler Handler) *Dispatcher {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &Dispatcher{
		handler: handler,
		sem:     semaphore.NewWeighted(int64(maxInFlight)),
		queues:  make(map[int64][]queued),
	}
}

// Submit queues job behind the user's earlier messages. ctx is handed to
// the handler; if it is done before a slot frees up the job is dropped.
func (d *Dispatcher) Submit(ctx context.Context, job Job) error {
	userID := job.Msg.UserID

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	q, draining := d.queues[userID]
	if len(q) >= MaxQueuedPerUser {
		return ErrQueueFull
	}
	d.queues[userID] = append(q, queued{ctx: ctx, job: job})
	if !draining {
		d.wg.Add(1)
		go d.drain(userID)
	}
	return nil
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

// Pending is the number of users with queued or running messages.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}

func (d *Dispatcher) drain(userID int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[userID]
		if len(q) == 0 {
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
		next := q[0]
		q[0] = queued{}
		d.queues[userID] = q[1:]
		d.mu.Unlock()

		d.run(next)
	}
}

func (d *Dispatcher) run(item queued) {
	if err := d.sem.Acquire(item.ctx, 1); err != nil {
		logx.Warn().Err(err).Int64("user_id", item.job.Msg.UserID).Msg("message dropped before handling")
		return
	}
	defer d.sem.Release(1)
	d.handle(item.ctx, item.job)
}

func (d *Dispatcher) handle(ctx context.Context, job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			logx.Error().Interface("panic", rec).Int64("user_id", job.Msg.UserID).Msg("handler panicked")
		}
	}()
	reply := d.handler(ctx, job.Msg)
	if job.Reply != nil && reply != "" {
		job.Reply(reply)
	}
}
