// Package workers runs jobs fetched from the queue adapter.
package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/defermq/defermq/internal/dedupe"
	"github.com/defermq/defermq/internal/queue"
)

const (
	// DefaultIdleInterval is how long the runner waits after draining the queue
	DefaultIdleInterval = time.Second
	// DefaultRetryBase is the first retry delay; later attempts double it
	DefaultRetryBase = 5 * time.Second
)

// Handler processes a single job.
type Handler func(ctx context.Context, job *queue.Job) error

// RunnerOptions configure a Runner.
type RunnerOptions struct {
	// IdleInterval is the pause between polls when the queue is empty.
	IdleInterval time.Duration
	// RetryBase is the delay before the first retry of a failed job;
	// each further attempt doubles it.
	RetryBase time.Duration
	// Guard optionally skips jobs whose ID was already processed.
	Guard *dedupe.Guard
}

// Runner polls a queue and dispatches jobs to registered handlers. Failed
// jobs are re-enqueued with an exponentially growing delay until their
// retry budget is spent, then rejected without requeue.
type Runner struct {
	queue    queue.JobQueue
	logger   *zap.Logger
	handlers map[string]Handler
	idle     time.Duration
	base     time.Duration
	guard    *dedupe.Guard
}

// NewRunner creates a runner over the given queue.
func NewRunner(q queue.JobQueue, logger *zap.Logger, opts RunnerOptions) *Runner {
	if opts.IdleInterval <= 0 {
		opts.IdleInterval = DefaultIdleInterval
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = DefaultRetryBase
	}
	return &Runner{
		queue:    q,
		logger:   logger,
		handlers: make(map[string]Handler),
		idle:     opts.IdleInterval,
		base:     opts.RetryBase,
		guard:    opts.Guard,
	}
}

// Register installs the handler for a job type. Later registrations for
// the same type replace earlier ones.
func (r *Runner) Register(jobType string, h Handler) {
	r.handlers[jobType] = h
}

// Run polls queueName (empty = default queue) until ctx is cancelled.
// Transient broker faults are already absorbed by the adapter's error
// reporter, so the loop simply moves on to the next poll.
func (r *Runner) Run(ctx context.Context, queueName string) error {
	r.logger.Info("Worker runner started", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Worker runner stopped")
			return ctx.Err()
		default:
		}

		msg, err := r.queue.Pop(ctx, queueName)
		if err != nil {
			r.logger.Error("Failed to pop job", zap.Error(err))
			continue
		}
		if msg == nil {
			// Queue drained; wait before polling again
			select {
			case <-ctx.Done():
				r.logger.Info("Worker runner stopped")
				return ctx.Err()
			case <-time.After(r.idle):
			}
			continue
		}

		r.process(ctx, msg)
	}
}

func (r *Runner) process(ctx context.Context, msg *queue.Message) {
	job := msg.GetJob()

	if r.guard != nil {
		first, err := r.guard.FirstSeen(ctx, job.ID.String())
		if err != nil {
			// The guard is best-effort; run the job anyway
			r.logger.Warn("Dedupe guard unavailable", zap.Error(err))
		} else if !first {
			r.logger.Debug("Skipping duplicate job",
				zap.String("job_id", job.ID.String()),
				zap.String("job_type", job.Type),
			)
			if err := msg.Ack(); err != nil {
				r.logger.Warn("Failed to ack duplicate job", zap.Error(err))
			}
			return
		}
	}

	handler, ok := r.handlers[job.Type]
	if !ok {
		r.logger.Error("No handler registered for job type",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", job.Type),
		)
		if err := msg.Reject(false); err != nil {
			r.logger.Warn("Failed to reject job", zap.Error(err))
		}
		return
	}

	if err := handler(ctx, job); err != nil {
		r.retry(ctx, msg, err)
		return
	}

	if err := msg.Ack(); err != nil {
		r.logger.Warn("Failed to ack job",
			zap.Error(err),
			zap.String("job_id", job.ID.String()),
		)
	}
}

// retry re-enqueues a failed job with a delay of base*2^(attempt-1), or
// rejects it for good once the retry budget is spent.
func (r *Runner) retry(ctx context.Context, msg *queue.Message, cause error) {
	job := msg.GetJob()

	if !job.CanRetry() {
		r.logger.Error("Job failed permanently",
			zap.Error(cause),
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", job.Type),
			zap.Int("retries", job.RetryCount),
		)
		if err := msg.Reject(false); err != nil {
			r.logger.Warn("Failed to reject job", zap.Error(err))
		}
		return
	}

	job.IncrementRetry()
	delay := r.base * time.Duration(1<<(job.RetryCount-1))

	result, err := r.queue.Later(ctx, delay, job, msg.Queue)
	if err != nil || result != queue.PushDelivered {
		r.logger.Error("Failed to re-enqueue job, requeueing in place",
			zap.Error(err),
			zap.String("job_id", job.ID.String()),
		)
		if rejectErr := msg.Reject(true); rejectErr != nil {
			r.logger.Warn("Failed to requeue job", zap.Error(rejectErr))
		}
		return
	}

	r.logger.Info("Job retry scheduled",
		zap.Error(cause),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", job.Type),
		zap.Int("attempt", job.RetryCount),
		zap.Duration("delay", delay),
	)
	if err := msg.Ack(); err != nil {
		r.logger.Warn("Failed to ack job after re-enqueue", zap.Error(err))
	}
}
