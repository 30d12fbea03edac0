package queue

import (
	"fmt"
	"time"
)

const (
	// DefaultQueueName is used when no queue name is supplied and none is configured
	DefaultQueueName = "jobs"
	// DefaultExchangeType is the exchange type declared for destination queues
	DefaultExchangeType = "direct"
	// DefaultMaxPriority is the priority ceiling declared on new queues
	DefaultMaxPriority = 10
	// DefaultErrorCooldown is the pause enforced after a broker communication fault
	DefaultErrorCooldown = 5 * time.Second
)

// QueueDeclareOptions map to the AMQP queue.declare flags used for every
// queue this adapter creates.
type QueueDeclareOptions struct {
	Passive     bool
	Durable     bool
	Exclusive   bool
	AutoDelete  bool
	MaxPriority uint8
}

// ExchangeDeclareOptions map to the AMQP exchange.declare flags.
type ExchangeDeclareOptions struct {
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
}

// Options is the immutable configuration for a queue adapter instance.
// It is loaded once at startup and read-only afterwards.
type Options struct {
	// DefaultQueue is the queue used when callers do not name one.
	DefaultQueue string

	Queue    QueueDeclareOptions
	Exchange ExchangeDeclareOptions

	// DeclareExchange and DeclareBindQueue control whether this adapter
	// manages broker topology at all. Operators who pre-create topology
	// externally disable them; that includes the per-delay queues, which
	// must then exist for every delay value in use.
	DeclareExchange  bool
	DeclareBindQueue bool

	// Priority is the default message priority. It must not exceed
	// Queue.MaxPriority or the broker will reject publishes.
	Priority uint8

	// ErrorCooldown is how long the error reporter blocks after a broker
	// communication fault before the caller may retry.
	ErrorCooldown time.Duration
}

// DefaultOptions returns a ready-to-use configuration: a durable "jobs"
// queue with priority support and topology management enabled.
func DefaultOptions() Options {
	return Options{
		DefaultQueue: DefaultQueueName,
		Queue: QueueDeclareOptions{
			Durable:     true,
			MaxPriority: DefaultMaxPriority,
		},
		Exchange: ExchangeDeclareOptions{
			Type:    DefaultExchangeType,
			Durable: true,
		},
		DeclareExchange:  true,
		DeclareBindQueue: true,
		ErrorCooldown:    DefaultErrorCooldown,
	}
}

// Validate checks the configuration for mistakes that would otherwise
// surface as broker errors deep inside a push or pop call.
func (o Options) Validate() error {
	if o.DefaultQueue == "" {
		return fmt.Errorf("default queue name is required")
	}
	switch o.Exchange.Type {
	case "direct", "fanout", "topic", "headers":
	default:
		return fmt.Errorf("invalid exchange type %q", o.Exchange.Type)
	}
	if o.Priority > o.Queue.MaxPriority {
		return fmt.Errorf("priority %d exceeds max priority %d", o.Priority, o.Queue.MaxPriority)
	}
	if o.ErrorCooldown < 0 {
		return fmt.Errorf("error cooldown must not be negative")
	}
	return nil
}

// ResolveQueue returns name if non-empty, otherwise the configured default.
func (o Options) ResolveQueue(name string) string {
	if name != "" {
		return name
	}
	return o.DefaultQueue
}

// PushOptions control a single Push. The zero value publishes to the
// default queue for immediate delivery at the configured priority.
type PushOptions struct {
	// Queue is the target queue; empty means the configured default.
	Queue string
	// Delay defers delivery by a duration. Sub-second amounts are
	// truncated to whole seconds.
	Delay time.Duration
	// At defers delivery until an absolute instant and takes precedence
	// over Delay. Past instants mean immediate delivery, never an error.
	At time.Time
	// Priority overrides the configured default message priority.
	Priority *uint8
}

// delaySeconds normalizes the requested delay to whole seconds relative to
// now. The result is never negative.
func (p PushOptions) delaySeconds(now time.Time) int64 {
	d := p.Delay
	if !p.At.IsZero() {
		d = p.At.Sub(now)
	}
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}
