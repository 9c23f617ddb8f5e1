// Package issues decides whether a build step should fail because a
// Coverity view reports issues.
//
// The [Checker] runs a two-step workflow (connect, then count issues in a
// view) and applies the caller's policy to the count. Steps come from a
// [StepFactory], so the orchestration can be exercised without a server.
//
// Key types:
//   - [CheckRequest] names the instance, project and view and carries the policy flag
//   - [Checker] runs the workflow and applies the policy
//   - [CheckFailure] is the policy failure; [ConfigurationError] a setup failure
package issues

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"covcheck/internal/logging"
	"covcheck/internal/stepworkflow"
)

// CheckRequest describes one issue check.
type CheckRequest struct {
	InstanceURL string
	ProjectName string
	ViewName    string

	// ReturnIssueCount selects the policy when issues are found. When true
	// the finding is logged at error level and the count is returned. When
	// false the check fails with a [*CheckFailure].
	ReturnIssueCount bool
}

// Run summarizes the last workflow run of a [Checker].
type Run struct {
	ID         string
	FailedStep string
	Records    []stepworkflow.StepRecord
}

// Checker runs issue checks.
//
// Checker holds no per-check state besides the summary of the last run, so
// one value can serve sequential checks. Use [NewChecker] to create one.
type Checker struct {
	factory  StepFactory
	logger   *zap.Logger
	progress stepworkflow.ProgressCallback

	mu   sync.Mutex
	last Run
}

// NewChecker creates a Checker whose steps come from factory.
func NewChecker(factory StepFactory, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		factory: factory,
		logger:  logger.Named("issues"),
	}
}

// SetProgressCallback configures a callback invoked before each step.
func (c *Checker) SetProgressCallback(cb stepworkflow.ProgressCallback) {
	c.progress = cb
}

// FoundMessage is the user-facing description of count issues.
func FoundMessage(count int) string {
	return fmt.Sprintf("[Coverity] Found %d issues in view.", count)
}

// Check connects to the requested instance, counts the issues in the view
// and applies the policy.
//
// Workflow failures are returned unchanged. With zero issues Check returns
// 0 and nil. With issues found it either logs at error level and returns
// the count (ReturnIssueCount set) or returns a [*CheckFailure].
func (c *Checker) Check(ctx context.Context, req CheckRequest) (int, error) {
	logger := c.logger.With(
		zap.String(logging.KeyInstanceURL, req.InstanceURL),
		zap.String(logging.KeyProject, req.ProjectName),
		zap.String(logging.KeyView, req.ViewName),
	)

	wf := stepworkflow.
		First(c.factory.CreateStepConnect(req.InstanceURL)).
		Then(c.factory.CreateStepGetIssuesInView(req.InstanceURL, req.ProjectName, req.ViewName)).
		WithLogger(logger).
		WithProgress(c.progress)

	res := stepworkflow.Map(wf.Run(ctx, State{}), func(st State) int { return st.IssueCount })
	c.remember(res)

	count, err := res.Data()
	if err != nil {
		logger.Debug("issue check did not complete",
			zap.String(logging.KeyStep, res.FailedStep()), zap.Error(err))
		return 0, err
	}

	if count == 0 {
		logger.Debug("no issues found", zap.Int(logging.KeyCount, 0))
		return 0, nil
	}

	msg := FoundMessage(count)
	if req.ReturnIssueCount {
		logger.Error(msg, zap.Int(logging.KeyCount, count))
		return count, nil
	}
	return 0, &CheckFailure{Count: count, Message: msg}
}

func (c *Checker) remember(res stepworkflow.Result[int]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = Run{
		ID:         res.RunID(),
		FailedStep: res.FailedStep(),
		Records:    res.Records(),
	}
}

// LastRun returns the summary of the most recent run, or the zero Run when
// no check ran yet.
func (c *Checker) LastRun() Run {
	c.mu.Lock()
	defer c.mu.Unlock()
	run := c.last
	run.Records = append([]stepworkflow.StepRecord(nil), run.Records...)
	return run
}
