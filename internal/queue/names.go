package queue

import "fmt"

// delayedQueueSuffix separates the destination name from the delay in
// derived queue names. Operators inspecting broker topology rely on the
// resulting "<destination>_deferred_<seconds>" pattern.
const delayedQueueSuffix = "_deferred_"

// DelayedQueueName derives the name of the delay-specific queue for a
// destination and a whole-second delay. The mapping is deterministic and
// distinct (destination, seconds) pairs never collide, so every caller
// requesting the same delay against the same destination shares one queue.
func DelayedQueueName(destination string, delaySeconds int64) string {
	return fmt.Sprintf("%s%s%d", destination, delayedQueueSuffix, delaySeconds)
}
