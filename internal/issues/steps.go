package issues

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"covcheck/internal/coverity"
	"covcheck/internal/logging"
	"covcheck/internal/stepworkflow"
)

// Step names as they appear in logs, progress output and reports.
const (
	StepConnect          = "connect"
	StepGetIssuesInView  = "get-issues-in-view"
	msgNoInstances       = "There are no Coverity instances configured"
	msgUnknownInstanceAt = "There are no Coverity instances configured with the name %s"
)

// errNoSession is the cause when issues are queried before a connect step ran.
var errNoSession = errors.New("no Coverity session: connect step did not run")

// State is threaded through the issue-check workflow.
type State struct {
	// Instance is the instance selected by the connect step.
	Instance coverity.Instance

	// Session is the open session to Instance.
	Session coverity.Session

	// IssueCount is the number of issues reported for the view.
	IssueCount int
}

// StepFactory builds the steps of an issue check.
//
// [CoverityStepFactory] is the production implementation; tests substitute
// their own to script step outcomes.
type StepFactory interface {
	// CreateStepConnect returns a step that opens a session to the named
	// instance.
	CreateStepConnect(instanceURL string) stepworkflow.Step[State]

	// CreateStepGetIssuesInView returns a step that counts the issues of
	// projectName shown in viewName, using the session of the connect step.
	CreateStepGetIssuesInView(instanceURL, projectName, viewName string) stepworkflow.Step[State]
}

// CoverityStepFactory builds steps that talk to Coverity through Connector.
//
// Instances is the configuration snapshot the connect step resolves names
// against.
type CoverityStepFactory struct {
	Instances coverity.Instances
	Connector coverity.Connector
	Logger    *zap.Logger
}

func (f *CoverityStepFactory) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

// CreateStepConnect resolves instanceURL against the configured instances
// and connects to it. An empty or non-matching configuration fails the
// step with a [*ConfigurationError]; transport errors pass through.
func (f *CoverityStepFactory) CreateStepConnect(instanceURL string) stepworkflow.Step[State] {
	return stepworkflow.NewStep(StepConnect, func(ctx context.Context, st State) (State, error) {
		if f.Instances.Empty() {
			return st, &ConfigurationError{Message: msgNoInstances}
		}
		inst, ok := f.Instances.Find(instanceURL)
		if !ok {
			return st, &ConfigurationError{Message: fmt.Sprintf(msgUnknownInstanceAt, instanceURL)}
		}

		cfg, err := inst.ServerConfig()
		if err != nil {
			return st, err
		}
		session, err := f.Connector.Connect(ctx, cfg)
		if err != nil {
			return st, err
		}

		f.logger().Debug("connected", zap.String(logging.KeyInstanceURL, inst.URL))
		st.Instance = inst
		st.Session = session
		return st, nil
	})
}

// CreateStepGetIssuesInView counts issues through the session opened by the
// connect step.
func (f *CoverityStepFactory) CreateStepGetIssuesInView(instanceURL, projectName, viewName string) stepworkflow.Step[State] {
	return stepworkflow.NewStep(StepGetIssuesInView, func(ctx context.Context, st State) (State, error) {
		if st.Session == nil {
			return st, errNoSession
		}
		count, err := st.Session.IssueCount(ctx, projectName, viewName)
		if err != nil {
			return st, err
		}

		f.logger().Debug("issues counted",
			zap.String(logging.KeyInstanceURL, instanceURL),
			zap.String(logging.KeyProject, projectName),
			zap.String(logging.KeyView, viewName),
			zap.Int(logging.KeyCount, count))
		st.IssueCount = count
		return st, nil
	})
}
