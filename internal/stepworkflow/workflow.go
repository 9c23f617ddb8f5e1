// Package stepworkflow runs ordered, fail-fast sequences of steps.
//
// A [Workflow] threads one state value of type S through its steps. Each
// step either returns the advanced state or an error; the first error stops
// the run and becomes the cause of the returned [Result]. No step runs after
// a failure.
//
// Key types:
//   - [Step] is one unit of work over the threaded state
//   - [Workflow] is an ordered list of steps, built with [First]/[Just] and [Workflow.Then]
//   - [Result] is the single outcome of a run; [Result.Data] bridges it to plain error flow
//
// Workflows hold no global state. Build a fresh one per invocation; runs
// execute on the caller's goroutine.
package stepworkflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"covcheck/internal/logging"
)

// Sentinel errors for malformed workflows.
var (
	// ErrNoSteps is the cause when a workflow without steps is run.
	ErrNoSteps = errors.New("workflow has no steps")

	// ErrNilStep is the cause when a workflow contains a nil step.
	ErrNilStep = errors.New("workflow step is nil")
)

// Step is one unit of work. Steps keep no state of their own; everything
// they produce goes into the returned S.
type Step[S any] interface {
	// Name identifies the step in logs, progress output and records.
	Name() string

	// Run advances state or fails.
	Run(ctx context.Context, state S) (S, error)
}

type stepFunc[S any] struct {
	name string
	fn   func(ctx context.Context, state S) (S, error)
}

func (s stepFunc[S]) Name() string { return s.name }

func (s stepFunc[S]) Run(ctx context.Context, state S) (S, error) { return s.fn(ctx, state) }

// NewStep adapts fn into a named [Step].
func NewStep[S any](name string, fn func(ctx context.Context, state S) (S, error)) Step[S] {
	return stepFunc[S]{name: name, fn: fn}
}

// ProgressCallback is invoked before each step begins.
//
// It receives the 1-based step index, the total step count and the step name.
type ProgressCallback func(stepIndex, totalSteps int, stepName string)

// Workflow is an ordered, fail-fast composition of steps over state S.
type Workflow[S any] struct {
	steps    []Step[S]
	progress ProgressCallback
	logger   *zap.Logger
}

// First starts a workflow whose first step is step.
func First[S any](step Step[S]) *Workflow[S] {
	return &Workflow[S]{steps: []Step[S]{step}}
}

// Just builds a single-step workflow.
func Just[S any](step Step[S]) *Workflow[S] {
	return First(step)
}

// Then appends step and returns w.
func (w *Workflow[S]) Then(step Step[S]) *Workflow[S] {
	w.steps = append(w.steps, step)
	return w
}

// Steps returns the steps in execution order.
func (w *Workflow[S]) Steps() []Step[S] {
	return append([]Step[S](nil), w.steps...)
}

// WithProgress sets a callback invoked before each step.
func (w *Workflow[S]) WithProgress(cb ProgressCallback) *Workflow[S] {
	w.progress = cb
	return w
}

// WithLogger sets the logger used for step tracing.
func (w *Workflow[S]) WithLogger(logger *zap.Logger) *Workflow[S] {
	w.logger = logger
	return w
}

// Run executes the steps in order starting from initial.
//
// Run stops at the first failing step; the returned [Result] carries that
// step's error unchanged as its cause. A cancelled ctx is checked before
// each step and fails the run the same way. On success the result holds
// the state produced by the last step.
func (w *Workflow[S]) Run(ctx context.Context, initial S) Result[S] {
	logger := w.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	logger = logger.With(zap.String(logging.KeyRunID, runID))

	if len(w.steps) == 0 {
		res := Failure[S](ErrNoSteps)
		res.runID = runID
		return res
	}

	records := make([]StepRecord, 0, len(w.steps))
	state := initial
	total := len(w.steps)

	for i, step := range w.steps {
		name := stepName(step, i)

		var cause error
		if step == nil {
			cause = fmt.Errorf("%w: position %d", ErrNilStep, i+1)
		} else if err := ctx.Err(); err != nil {
			cause = err
		}
		if cause != nil {
			records = append(records, StepRecord{Name: name, Status: StepStatusFailed, Err: cause.Error()})
			return w.fail(logger, runID, name, cause, skipRemaining(records, w.steps[i+1:], i+1))
		}

		if w.progress != nil {
			w.progress(i+1, total, name)
		}
		logger.Debug("step started", zap.String(logging.KeyStep, name))

		started := time.Now()
		next, err := step.Run(ctx, state)
		rec := StepRecord{Name: name, StartedAt: started, Duration: time.Since(started)}
		if err != nil {
			rec.Status = StepStatusFailed
			rec.Err = err.Error()
			records = append(records, rec)
			return w.fail(logger, runID, name, err, skipRemaining(records, w.steps[i+1:], i+1))
		}

		rec.Status = StepStatusOK
		records = append(records, rec)
		logger.Debug("step completed", zap.String(logging.KeyStep, name), zap.Duration("duration", rec.Duration))
		state = next
	}

	res := Success(state)
	res.runID = runID
	res.records = records
	return res
}

func (w *Workflow[S]) fail(logger *zap.Logger, runID, name string, cause error, records []StepRecord) Result[S] {
	logger.Debug("step failed", zap.String(logging.KeyStep, name), zap.Error(cause))
	res := Failure[S](cause)
	res.runID = runID
	res.failedStep = name
	res.records = records
	return res
}

func skipRemaining[S any](records []StepRecord, rest []Step[S], offset int) []StepRecord {
	for j, step := range rest {
		records = append(records, StepRecord{Name: stepName(step, offset+j), Status: StepStatusSkipped})
	}
	return records
}

func stepName[S any](step Step[S], index int) string {
	if step == nil {
		return fmt.Sprintf("step-%d", index+1)
	}
	return step.Name()
}

// Run executes steps in order from initial. It is shorthand for building a
// [Workflow] from steps and running it.
func Run[S any](ctx context.Context, steps []Step[S], initial S) Result[S] {
	w := &Workflow[S]{steps: append([]Step[S](nil), steps...)}
	return w.Run(ctx, initial)
}
