package queue

import (
	"context"
	"reflect"

	amqp "github.com/rabbitmq/amqp091-go"
)

// stubChannel is an in-memory broker standing in for *amqp.Channel. It
// enforces the broker behaviors the adapter relies on: idempotent
// redeclaration, parameter-conflict errors, and the per-queue priority
// bound.
type stubChannel struct {
	exchanges map[string]stubExchange
	queues    map[string]stubQueue
	bindings  []stubBinding
	published []stubPublish
	pending   []amqp.Delivery

	exchangeDeclares int
	queueDeclares    int

	publishErr error
	getErr     error

	acks   []uint64
	nacks  []stubNack
	closed bool
}

type stubExchange struct {
	kind       string
	durable    bool
	autoDelete bool
}

type stubQueue struct {
	durable    bool
	autoDelete bool
	exclusive  bool
	args       amqp.Table
}

type stubBinding struct {
	queue    string
	key      string
	exchange string
}

type stubPublish struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type stubNack struct {
	tag     uint64
	requeue bool
}

func newStubChannel() *stubChannel {
	return &stubChannel{
		exchanges: make(map[string]stubExchange),
		queues:    make(map[string]stubQueue),
	}
}

func preconditionFailed(reason string) *amqp.Error {
	return &amqp.Error{Code: amqp.PreconditionFailed, Reason: reason}
}

func (s *stubChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	s.exchangeDeclares++
	if existing, ok := s.exchanges[name]; ok {
		if existing.kind != kind || existing.durable != durable || existing.autoDelete != autoDelete {
			return preconditionFailed("exchange '" + name + "' parameters conflict")
		}
		return nil
	}
	s.exchanges[name] = stubExchange{kind: kind, durable: durable, autoDelete: autoDelete}
	return nil
}

func (s *stubChannel) ExchangeDeclarePassive(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	if _, ok := s.exchanges[name]; !ok {
		return &amqp.Error{Code: amqp.NotFound, Reason: "no exchange '" + name + "'"}
	}
	return s.ExchangeDeclare(name, kind, durable, autoDelete, internal, noWait, args)
}

func (s *stubChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	s.queueDeclares++
	if existing, ok := s.queues[name]; ok {
		if existing.durable != durable || existing.autoDelete != autoDelete ||
			existing.exclusive != exclusive || !reflect.DeepEqual(existing.args, args) {
			return amqp.Queue{}, preconditionFailed("queue '" + name + "' parameters conflict")
		}
		return amqp.Queue{Name: name}, nil
	}
	s.queues[name] = stubQueue{durable: durable, autoDelete: autoDelete, exclusive: exclusive, args: args}
	return amqp.Queue{Name: name}, nil
}

func (s *stubChannel) QueueDeclarePassive(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if _, ok := s.queues[name]; !ok {
		return amqp.Queue{}, &amqp.Error{Code: amqp.NotFound, Reason: "no queue '" + name + "'"}
	}
	return s.QueueDeclare(name, durable, autoDelete, exclusive, noWait, args)
}

func (s *stubChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	if _, ok := s.queues[name]; !ok {
		return &amqp.Error{Code: amqp.NotFound, Reason: "no queue '" + name + "'"}
	}
	if _, ok := s.exchanges[exchange]; !ok {
		return &amqp.Error{Code: amqp.NotFound, Reason: "no exchange '" + exchange + "'"}
	}
	s.bindings = append(s.bindings, stubBinding{queue: name, key: key, exchange: exchange})
	return nil
}

func (s *stubChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if s.publishErr != nil {
		return s.publishErr
	}
	if q, ok := s.queues[key]; ok {
		if max, ok := q.args["x-max-priority"].(int32); ok && int32(msg.Priority) > max {
			return preconditionFailed("priority exceeds x-max-priority")
		}
	}
	s.published = append(s.published, stubPublish{exchange: exchange, key: key, msg: msg})
	return nil
}

func (s *stubChannel) Get(queue string, autoAck bool) (amqp.Delivery, bool, error) {
	if s.getErr != nil {
		return amqp.Delivery{}, false, s.getErr
	}
	if len(s.pending) == 0 {
		return amqp.Delivery{}, false, nil
	}
	d := s.pending[0]
	s.pending = s.pending[1:]
	return d, true, nil
}

func (s *stubChannel) Ack(tag uint64, multiple bool) error {
	s.acks = append(s.acks, tag)
	return nil
}

func (s *stubChannel) Nack(tag uint64, multiple bool, requeue bool) error {
	s.nacks = append(s.nacks, stubNack{tag: tag, requeue: requeue})
	return nil
}

func (s *stubChannel) IsClosed() bool { return s.closed }

func (s *stubChannel) Close() error {
	s.closed = true
	return nil
}

// hasBinding reports whether queue is bound to exchange with key.
func (s *stubChannel) hasBinding(queue, key, exchange string) bool {
	for _, b := range s.bindings {
		if b.queue == queue && b.key == key && b.exchange == exchange {
			return true
		}
	}
	return false
}
