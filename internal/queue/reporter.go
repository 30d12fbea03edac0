package queue

import (
	"time"

	"go.uber.org/zap"
)

// ErrorReporter logs broker communication faults and enforces a cooldown
// pause before the caller may retry. Without the pause a broker outage
// would make the surrounding pop/publish loop spin, flooding the logs.
// The sleep is a blocking delay, not a scheduled retry: the caller must
// re-invoke the failed operation itself afterwards.
type ErrorReporter struct {
	logger   *zap.Logger
	cooldown time.Duration
	sleep    func(time.Duration)
}

// NewErrorReporter creates a reporter with the given cooldown. A
// non-positive cooldown falls back to DefaultErrorCooldown.
func NewErrorReporter(logger *zap.Logger, cooldown time.Duration) *ErrorReporter {
	if cooldown <= 0 {
		cooldown = DefaultErrorCooldown
	}
	return &ErrorReporter{
		logger:   logger,
		cooldown: cooldown,
		sleep:    time.Sleep,
	}
}

// Report logs the failed action at error severity and then blocks the
// calling goroutine for the cooldown duration.
func (r *ErrorReporter) Report(action string, err error) {
	r.logger.Error("broker communication fault",
		zap.String("action", action),
		zap.Error(err),
		zap.Duration("cooldown", r.cooldown),
	)
	r.sleep(r.cooldown)
}
