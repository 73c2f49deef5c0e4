// hkxconvert/progress.go

package hkxconvert

// EventState is the per-file or batch-level state carried by a ProgressEvent.
type EventState int

const (
	// StateStarted is emitted once when a file's task begins work.
	StateStarted EventState = iota
	// StateSucceeded is the terminal event of a successfully converted file.
	StateSucceeded
	// StateFailed is the terminal event of a failed (or cancelled) file.
	StateFailed
	// StateBatchCompleted is the batch terminal event after all tasks
	// resolved without the batch being cancelled.
	StateBatchCompleted
	// StateBatchCancelled is the batch terminal event when cancellation was
	// observed. Its counts are best-effort.
	StateBatchCancelled
)

func (s EventState) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateBatchCompleted:
		return "batch-completed"
	case StateBatchCancelled:
		return "batch-cancelled"
	}
	return "unknown"
}

// ProgressEvent is one entry of the batch's event stream. Events for the
// same file arrive in emission order (Started strictly before the terminal
// state); events of different files interleave arbitrarily. The batch
// terminal event is emitted exactly once, after every per-file task has
// resolved, and the stream is closed after it.
type ProgressEvent struct {
	State      EventState
	FileIndex  int
	FileName   string
	TotalFiles int
	// Message carries the failure reason for StateFailed and an advisory
	// warning, when any, for StateSucceeded.
	Message string
	// Succeeded and Total are set on the batch terminal events.
	Succeeded int
	Total     int
}
