package queue

import (
	"context"
	"time"
)

// PushResult reports the outcome of a publish attempt. Callers get an
// explicit answer instead of a silently swallowed failure.
type PushResult int

const (
	// PushDelivered means the broker acknowledged the publish frame.
	PushDelivered PushResult = iota
	// PushTransient means the message was not delivered because of a
	// communication fault; the same publish may succeed after the cooldown.
	PushTransient
	// PushFailed means the message was not delivered and retrying will not
	// help, e.g. a topology conflict or an unserializable job.
	PushFailed
)

// String returns a human-readable result name.
func (r PushResult) String() string {
	switch r {
	case PushDelivered:
		return "delivered"
	case PushTransient:
		return "transient failure"
	case PushFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MessageInterface defines the interface for retrieved messages
// This enables better testability by allowing mock implementations
type MessageInterface interface {
	Ack() error
	Reject(requeue bool) error
	GetJob() *Job
}

// JobQueue is the interface for job queues
type JobQueue interface {
	// Push publishes a job for immediate or deferred delivery according
	// to opts. The result distinguishes delivered, transiently failed,
	// and permanently failed publishes.
	Push(ctx context.Context, job *Job, opts PushOptions) (PushResult, error)

	// Later publishes a job for delivery after delay on the named queue
	// (empty = default queue).
	Later(ctx context.Context, delay time.Duration, job *Job, queueName string) (PushResult, error)

	// Pop fetches the next available message from the named queue
	// (empty = default queue) without blocking.
	// Returns (nil, nil) when no message is available.
	// The caller is responsible for acknowledging the message.
	Pop(ctx context.Context, queueName string) (*Message, error)

	// Close closes the queue connection
	Close() error

	// HealthCheck verifies the queue connection is healthy
	HealthCheck(ctx context.Context) error
}
