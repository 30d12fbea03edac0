package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Declarator idempotently ensures exchanges, queues, and bindings exist on
// the broker. Declarations already performed by this instance are skipped;
// the broker itself resolves concurrent declarations from other producers,
// so no cross-instance coordination is needed.
//
// Queue name, exchange name, and routing key coincide by convention in this
// design: each destination gets an exchange of the same name and a binding
// keyed by the name.
type Declarator struct {
	ch       Channel
	opts     Options
	declared map[string]struct{}
}

// NewDeclarator creates a declarator over an open channel.
func NewDeclarator(ch Channel, opts Options) *Declarator {
	return &Declarator{
		ch:       ch,
		opts:     opts,
		declared: make(map[string]struct{}),
	}
}

// Declare ensures the exchange, queue, and binding for name exist,
// honoring the DeclareExchange and DeclareBindQueue flags. Redeclaring an
// existing entity with identical parameters is a no-op; a parameter
// conflict is a broker-level error surfaced to the caller.
func (d *Declarator) Declare(name string) error {
	if _, ok := d.declared[name]; ok {
		return nil
	}

	if d.opts.DeclareExchange {
		if err := d.declareExchange(name); err != nil {
			return err
		}
	}

	if d.opts.DeclareBindQueue {
		if err := d.declareBindQueue(name, d.queueArgs()); err != nil {
			return err
		}
	}

	d.declared[name] = struct{}{}
	return nil
}

// DeclareDelayed ensures the delay-specific queue for (destination, delay)
// exists and returns its name. The derived queue holds messages until the
// per-queue TTL expires, at which point the broker dead-letters them back
// to the destination. One derived queue serves all messages sharing the
// same (destination, delay) pair.
func (d *Declarator) DeclareDelayed(destination string, delaySeconds int64) (string, error) {
	destination = d.opts.ResolveQueue(destination)
	name := DelayedQueueName(destination, delaySeconds)
	if _, ok := d.declared[name]; ok {
		return name, nil
	}

	if d.opts.DeclareExchange {
		if err := d.declareExchange(name); err != nil {
			return "", err
		}
	}

	if d.opts.DeclareBindQueue {
		args := d.queueArgs()
		args["x-dead-letter-exchange"] = destination
		args["x-dead-letter-routing-key"] = destination
		args["x-message-ttl"] = delaySeconds * 1000 // milliseconds
		if err := d.declareBindQueue(name, args); err != nil {
			return "", err
		}
	}

	d.declared[name] = struct{}{}
	return name, nil
}

// queueArgs builds the argument table shared by every queue declaration.
func (d *Declarator) queueArgs() amqp.Table {
	return amqp.Table{
		"x-max-priority": int32(d.opts.Queue.MaxPriority),
	}
}

func (d *Declarator) declareExchange(name string) error {
	ex := d.opts.Exchange
	var err error
	if ex.Passive {
		err = d.ch.ExchangeDeclarePassive(name, ex.Type, ex.Durable, ex.AutoDelete, false, false, nil)
	} else {
		err = d.ch.ExchangeDeclare(name, ex.Type, ex.Durable, ex.AutoDelete, false, false, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to declare exchange %q: %w", name, err)
	}
	return nil
}

func (d *Declarator) declareBindQueue(name string, args amqp.Table) error {
	q := d.opts.Queue
	var err error
	if q.Passive {
		_, err = d.ch.QueueDeclarePassive(name, q.Durable, q.AutoDelete, q.Exclusive, false, args)
	} else {
		_, err = d.ch.QueueDeclare(name, q.Durable, q.AutoDelete, q.Exclusive, false, args)
	}
	if err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", name, err)
	}

	if err := d.ch.QueueBind(name, name, name, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %q: %w", name, err)
	}
	return nil
}
