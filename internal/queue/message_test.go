package queue

import "testing"

type fakeAcker struct {
	acks  []uint64
	nacks []stubNack
}

func (f *fakeAcker) Ack(tag uint64, multiple bool) error {
	f.acks = append(f.acks, tag)
	return nil
}

func (f *fakeAcker) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacks = append(f.nacks, stubNack{tag: tag, requeue: requeue})
	return nil
}

func TestMessage_Ack(t *testing.T) {
	t.Parallel()

	acker := &fakeAcker{}
	msg := &Message{Job: NewJob("echo", nil), Queue: "jobs", DeliveryTag: 42, acker: acker}

	if err := msg.Ack(); err != nil {
		t.Fatalf("Ack failed: %v", err)
	}
	if len(acker.acks) != 1 || acker.acks[0] != 42 {
		t.Errorf("Expected delivery tag 42 acked, got %v", acker.acks)
	}
}

func TestMessage_Reject(t *testing.T) {
	t.Parallel()

	acker := &fakeAcker{}
	msg := &Message{Job: NewJob("echo", nil), Queue: "jobs", DeliveryTag: 42, acker: acker}

	if err := msg.Reject(true); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if len(acker.nacks) != 1 || acker.nacks[0].tag != 42 || !acker.nacks[0].requeue {
		t.Errorf("Expected delivery tag 42 nacked with requeue, got %v", acker.nacks)
	}
}
