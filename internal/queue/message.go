package queue

// Message wraps a retrieved Job with its delivery information. It owns the
// acknowledgement of that one delivery: exactly one of Ack or Reject should
// be called, and a Message must not be reused across deliveries.
type Message struct {
	Job         *Job
	Queue       string // queue the message was fetched from
	Body        []byte // raw payload as retrieved from the broker
	DeliveryTag uint64

	acker Acknowledger
}

// NewMessage builds a job handle bound to a single delivery. Collaborating
// packages use it to fabricate handles for their own tests.
func NewMessage(job *Job, queueName string, body []byte, deliveryTag uint64, acker Acknowledger) *Message {
	return &Message{
		Job:         job,
		Queue:       queueName,
		Body:        body,
		DeliveryTag: deliveryTag,
		acker:       acker,
	}
}

// Ack acknowledges the message, removing it from the queue.
func (m *Message) Ack() error {
	return m.acker.Ack(m.DeliveryTag, false)
}

// Reject negatively acknowledges the message. With requeue the broker
// redelivers it; without, it is dropped or dead-lettered if the queue is
// configured for that.
func (m *Message) Reject(requeue bool) error {
	return m.acker.Nack(m.DeliveryTag, false, requeue)
}

// GetJob returns the decoded job.
func (m *Message) GetJob() *Job {
	return m.Job
}
