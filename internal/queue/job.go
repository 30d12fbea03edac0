package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Job represents a unit of work placed on the queue. The Payload is opaque
// to this package; the job-execution framework gives it meaning.
type Job struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"` // Job-specific data
	CreatedAt  time.Time       `json:"created_at"`
	RetryCount int             `json:"retry_count"`
	MaxRetries int             `json:"max_retries"`
}

// NewJob creates a new job of the given type carrying payload.
func NewJob(jobType string, payload json.RawMessage) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		Payload:    payload,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}

// Serializer turns jobs into wire payloads and back. It is the
// collaborator boundary with the host framework's payload format.
type Serializer interface {
	Marshal(job *Job) ([]byte, error)
	Unmarshal(body []byte) (*Job, error)
}

// JSONSerializer is the default Serializer, encoding jobs as JSON.
type JSONSerializer struct{}

// Marshal encodes the job as JSON.
func (JSONSerializer) Marshal(job *Job) ([]byte, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}
	return body, nil
}

// Unmarshal decodes a job from JSON.
func (JSONSerializer) Unmarshal(body []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}
