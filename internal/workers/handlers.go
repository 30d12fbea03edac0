package workers

import (
	"context"

	"go.uber.org/zap"

	"github.com/defermq/defermq/internal/queue"
)

// EchoJobType is the job type handled by NewEchoHandler.
const EchoJobType = "echo"

// NewEchoHandler returns a handler that logs the job payload. It serves as
// a smoke test for a deployed worker: push an echo job and watch the logs.
func NewEchoHandler(logger *zap.Logger) Handler {
	return func(ctx context.Context, job *queue.Job) error {
		logger.Info("Echo job",
			zap.String("job_id", job.ID.String()),
			zap.ByteString("payload", job.Payload),
		)
		return nil
	}
}
