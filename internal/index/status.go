package index

import "time"

// Status is the outcome of a single file task.
type Status int

const (
	// StatusOK means every line of the file was folded into the index.
	StatusOK Status = iota
	// StatusFileNotFound means the file could not be opened, missing or otherwise.
	StatusFileNotFound
	// StatusFailed means reading failed part way; words read so far stay indexed.
	StatusFailed
	// StatusCancelled means the batch deadline expired before the task finished or started.
	StatusCancelled
)

// String returns the status label used in logs and metrics.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFileNotFound:
		return "file_not_found"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Message returns the default result message for the status.
// StatusFailed results carry the error text instead.
func (s Status) Message() string {
	switch s {
	case StatusOK:
		return "File processed successfully"
	case StatusFileNotFound:
		return "File not exist"
	case StatusFailed:
		return "Failed to process file"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// TaskResult is the record of one file task. It is not modified after the task returns.
type TaskResult struct {
	TaskID    int           `json:"task_id"`
	FileName  string        `json:"file"`
	Processed int           `json:"processed"`
	Status    Status        `json:"-"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration_ns"`
}

// OK reports whether the task processed its whole file.
func (r TaskResult) OK() bool {
	return r.Status == StatusOK
}

// Finished reports whether the task ran to an outcome before the deadline.
func (r TaskResult) Finished() bool {
	return r.Status != StatusCancelled
}
