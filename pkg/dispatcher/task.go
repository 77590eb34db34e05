package dispatcher

import (
	"time"

	"github.com/google/uuid"

	"github.com/jvila/majordomo/pkg/errors"
)

// Status describes the lifecycle state of a dispatched task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Task is one unit of specialist work. Tasks carry no identity beyond
// their position in the request; the generated ID exists for logs and
// traces only.
type Task struct {
	Specialist string
	Goal       string
	Context    string
}

// Result is the settled outcome of one task. Exactly one of Output or Err
// is meaningful, selected by Status.
type Result struct {
	ID         string
	Specialist string
	Status     Status
	Output     string
	Err        *errors.MajordomoError
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed reports whether the task settled in failure.
func (r Result) Failed() bool {
	return r.Status == StatusFailed
}

// newResult stamps a fresh result in the pending state.
func newResult(task Task) Result {
	return Result{
		ID:         uuid.NewString(),
		Specialist: task.Specialist,
		Status:     StatusPending,
	}
}
