package stepworkflow

import (
	"errors"
	"time"
)

// ErrMissingCause stands in for a nil cause handed to [Failure], so a
// failed result never reports a nil error.
var ErrMissingCause = errors.New("workflow failed without a cause")

// StepStatus is the execution status of one step in a run.
type StepStatus string

const (
	StepStatusOK      StepStatus = "ok"
	StepStatusFailed  StepStatus = "failed"
	StepStatusSkipped StepStatus = "skipped"
)

// StepRecord is an immutable log entry for one step of a run.
type StepRecord struct {
	Name      string        `yaml:"name"`
	Status    StepStatus    `yaml:"status"`
	StartedAt time.Time     `yaml:"started_at,omitempty"`
	Duration  time.Duration `yaml:"duration"`
	Err       string        `yaml:"error,omitempty"`
}

// Result is the outcome of one workflow run: either a success carrying a
// value or a failure carrying the cause raised by the failing step.
//
// A Result is immutable once built. The zero value is a success holding
// the zero value of R.
type Result[R any] struct {
	value      R
	cause      error
	runID      string
	failedStep string
	records    []StepRecord
}

// Success returns a successful result holding value.
func Success[R any](value R) Result[R] {
	return Result[R]{value: value}
}

// Failure returns a failed result holding cause.
func Failure[R any](cause error) Result[R] {
	if cause == nil {
		cause = ErrMissingCause
	}
	return Result[R]{cause: cause}
}

// Succeeded reports whether the run completed every step.
func (r Result[R]) Succeeded() bool {
	return r.cause == nil
}

// Value returns the success value and true, or the zero value and false
// for a failure.
func (r Result[R]) Value() (R, bool) {
	if r.cause != nil {
		var zero R
		return zero, false
	}
	return r.value, true
}

// Cause returns the failure cause, or nil on success.
func (r Result[R]) Cause() error {
	return r.cause
}

// Data returns the success value, or the failure cause as an error.
//
// This is the bridge for callers preferring plain error flow over
// inspecting the result. It is idempotent: repeated calls return the same
// value, or the identical cause, every time.
func (r Result[R]) Data() (R, error) {
	if r.cause != nil {
		var zero R
		return zero, r.cause
	}
	return r.value, nil
}

// FailedStep names the step that failed, or "" on success.
func (r Result[R]) FailedStep() string {
	return r.failedStep
}

// RunID identifies the run that produced the result.
func (r Result[R]) RunID() string {
	return r.runID
}

// Records returns a copy of the per-step records, in step order.
func (r Result[R]) Records() []StepRecord {
	return append([]StepRecord(nil), r.records...)
}

// Map projects a successful result's value through f. Failures pass
// through with their cause, failed step and records intact.
func Map[S, R any](res Result[S], f func(S) R) Result[R] {
	out := Result[R]{
		cause:      res.cause,
		runID:      res.runID,
		failedStep: res.failedStep,
		records:    res.records,
	}
	if res.cause == nil {
		out.value = f(res.value)
	}
	return out
}
