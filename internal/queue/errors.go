package queue

import (
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// IsTopologyConflict reports whether err is the broker rejecting a
// declaration because an entity of the same name already exists with
// different parameters. Such conflicts are fatal and must never be
// retried; redeclaring with identical parameters succeeds and never
// reaches this path.
func IsTopologyConflict(err error) bool {
	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		return amqpErr.Code == amqp.PreconditionFailed
	}
	return false
}
