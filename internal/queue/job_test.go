package queue

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNewJob(t *testing.T) {
	t.Parallel()

	job := NewJob("send_email", json.RawMessage(`{"to":"ops@example.com"}`))

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != "send_email" {
		t.Errorf("Expected job type send_email, got %s", job.Type)
	}
	if job.Metadata == nil {
		t.Error("Expected metadata to be initialized")
	}
	if job.RetryCount != 0 {
		t.Errorf("Expected retry count to be 0, got %d", job.RetryCount)
	}
	if job.MaxRetries != 3 {
		t.Errorf("Expected max retries to be 3, got %d", job.MaxRetries)
	}
}

func TestJob_Retry(t *testing.T) {
	t.Parallel()

	job := NewJob("echo", nil)
	job.MaxRetries = 2

	if !job.CanRetry() {
		t.Error("Expected a fresh job to be retryable")
	}
	job.IncrementRetry()
	if !job.CanRetry() {
		t.Error("Expected job with 1 of 2 retries to be retryable")
	}
	job.IncrementRetry()
	if job.CanRetry() {
		t.Error("Expected exhausted job not to be retryable")
	}
}

func TestJSONSerializer_RoundTrip(t *testing.T) {
	t.Parallel()

	s := JSONSerializer{}
	job := NewJob("report", json.RawMessage(`{"week":12}`))

	body, err := s.Marshal(job)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	decoded, err := s.Unmarshal(body)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.ID != job.ID || decoded.Type != job.Type {
		t.Errorf("Expected job %s/%s back, got %s/%s", job.ID, job.Type, decoded.ID, decoded.Type)
	}
	if string(decoded.Payload) != `{"week":12}` {
		t.Errorf("Expected payload preserved, got %s", decoded.Payload)
	}
}

func TestJSONSerializer_InvalidBody(t *testing.T) {
	t.Parallel()

	if _, err := (JSONSerializer{}).Unmarshal([]byte("::")); err == nil {
		t.Error("Expected an error for an invalid body")
	}
}
