package queue

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitMQQueue implements JobQueue using RabbitMQ. One connection and one
// channel are opened at construction and reused for the instance's
// lifetime; the channel is not safe for unsynchronized concurrent use, so
// callers needing concurrent push/pop run one instance per goroutine.
type RabbitMQQueue struct {
	conn       *amqp.Connection
	channel    Channel
	opts       Options
	serializer Serializer
	declarator *Declarator
	reporter   *ErrorReporter
	logger     *zap.Logger
}

// NewRabbitMQQueue connects to RabbitMQ and creates a queue adapter.
// Invalid configuration fails here, never inside a later push or pop.
func NewRabbitMQQueue(amqpURL string, opts Options, logger *zap.Logger) (*RabbitMQQueue, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid queue options: %w", err)
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			// Log but don't return the close error
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return newQueue(conn, ch, opts, logger), nil
}

// newQueue wires an adapter around an established channel. Tests inject a
// stub Channel through this path.
func newQueue(conn *amqp.Connection, ch Channel, opts Options, logger *zap.Logger) *RabbitMQQueue {
	return &RabbitMQQueue{
		conn:       conn,
		channel:    ch,
		opts:       opts,
		serializer: JSONSerializer{},
		declarator: NewDeclarator(ch, opts),
		reporter:   NewErrorReporter(logger, opts.ErrorCooldown),
		logger:     logger,
	}
}

// Push publishes a job. The effective queue name is resolved from opts,
// destination topology is ensured, and when a delay is requested the
// message is redirected into the per-delay queue whose TTL dead-letters it
// back to the destination.
func (q *RabbitMQQueue) Push(ctx context.Context, job *Job, opts PushOptions) (PushResult, error) {
	destination := q.opts.ResolveQueue(opts.Queue)

	if err := q.declarator.Declare(destination); err != nil {
		return q.pushFailure("declare topology", err)
	}

	target := destination
	if secs := opts.delaySeconds(time.Now()); secs > 0 {
		delayed, err := q.declarator.DeclareDelayed(destination, secs)
		if err != nil {
			return q.pushFailure("declare delayed queue", err)
		}
		target = delayed
	}

	body, err := q.serializer.Marshal(job)
	if err != nil {
		return PushFailed, err
	}

	priority := q.opts.Priority
	if opts.Priority != nil {
		priority = *opts.Priority
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent, // Make message persistent
		Priority:     priority,
		MessageId:    job.ID.String(),
		Timestamp:    job.CreatedAt,
	}

	// Exchange name and routing key coincide with the target queue name.
	if err := q.channel.PublishWithContext(ctx, target, target, false, false, publishing); err != nil {
		return q.pushFailure("publish", err)
	}

	return PushDelivered, nil
}

// Later publishes a job for delivery after delay on the named queue.
func (q *RabbitMQQueue) Later(ctx context.Context, delay time.Duration, job *Job, queueName string) (PushResult, error) {
	return q.Push(ctx, job, PushOptions{Queue: queueName, Delay: delay})
}

// pushFailure classifies a broker fault during Push: topology conflicts
// are fatal and propagate untouched, everything else is reported with a
// cooldown and marked transient.
func (q *RabbitMQQueue) pushFailure(action string, err error) (PushResult, error) {
	if IsTopologyConflict(err) {
		return PushFailed, err
	}
	q.reporter.Report(action, err)
	return PushTransient, fmt.Errorf("failed to %s: %w", action, err)
}

// Pop fetches the next available message from the named queue without
// blocking. An empty queue yields (nil, nil); so does a transient broker
// fault, after the error reporter has logged it and enforced the cooldown.
func (q *RabbitMQQueue) Pop(ctx context.Context, queueName string) (*Message, error) {
	name := q.opts.ResolveQueue(queueName)

	if err := q.declarator.Declare(name); err != nil {
		if IsTopologyConflict(err) {
			return nil, err
		}
		q.reporter.Report("declare topology", err)
		return nil, nil
	}

	delivery, ok, err := q.channel.Get(name, false) // manual ack
	if err != nil {
		q.reporter.Report("get", err)
		return nil, nil
	}
	if !ok {
		// No message available
		return nil, nil
	}

	job, err := q.serializer.Unmarshal(delivery.Body)
	if err != nil {
		// Invalid message; drop it rather than redeliver it forever
		_ = q.channel.Nack(delivery.DeliveryTag, false, false)
		return nil, err
	}

	return &Message{
		Job:         job,
		Queue:       name,
		Body:        delivery.Body,
		DeliveryTag: delivery.DeliveryTag,
		acker:       q.channel,
	}, nil
}

// Declare ensures destination topology for the named queue exists without
// publishing anything. Operators use this to pre-create topology.
func (q *RabbitMQQueue) Declare(queueName string) error {
	return q.declarator.Declare(q.opts.ResolveQueue(queueName))
}

// DeclareDelayed ensures the per-delay queue for (queueName, delay) exists
// and returns its derived name.
func (q *RabbitMQQueue) DeclareDelayed(queueName string, delay time.Duration) (string, error) {
	secs := PushOptions{Delay: delay}.delaySeconds(time.Now())
	return q.declarator.DeclareDelayed(queueName, secs)
}

// Close closes the channel and connection.
func (q *RabbitMQQueue) Close() error {
	var err error
	if q.channel != nil {
		err = q.channel.Close()
	}
	if q.conn != nil {
		if closeErr := q.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// HealthCheck verifies the connection and channel are still open.
func (q *RabbitMQQueue) HealthCheck(ctx context.Context) error {
	if q.conn != nil && q.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection is closed")
	}
	if q.channel == nil || q.channel.IsClosed() {
		return fmt.Errorf("rabbitmq channel is closed")
	}
	return nil
}
