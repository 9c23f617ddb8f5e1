package coverity

import (
	"context"
	"strconv"
)

// View is a saved server-side query over defects.
type View struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ConnectionResult is the transport's own verdict on a connection probe.
type ConnectionResult struct {
	// Failure is true when the probe did not succeed.
	Failure bool

	// FailureMessage describes the failure; empty on success.
	FailureMessage string

	// HTTPStatusCode is nil when the failure happened before any HTTP
	// status was received (DNS, dial, TLS).
	HTTPStatusCode *int
}

// IsFailure reports whether the probe failed.
func (r ConnectionResult) IsFailure() bool {
	return r.Failure
}

// StatusCodeString returns the status code as text, or "" when absent.
func (r ConnectionResult) StatusCodeString() string {
	if r.HTTPStatusCode == nil {
		return ""
	}
	return strconv.Itoa(*r.HTTPStatusCode)
}

// Connector establishes sessions against a server.
//
// Implementations perform one blocking round trip per call on the caller's
// goroutine. Any timeout is carried by ctx.
type Connector interface {
	// Connect opens a session, failing with a transport error when the
	// server cannot be reached or rejects the credentials.
	Connect(ctx context.Context, cfg ServerConfig) (Session, error)

	// AttemptConnection probes the server and reports the outcome as a
	// value instead of an error.
	AttemptConnection(ctx context.Context, cfg ServerConfig) ConnectionResult
}

// Session runs queries against a connected server.
type Session interface {
	// ListViews returns every view visible to the session's user.
	ListViews(ctx context.Context) ([]View, error)

	// IssueCount returns the number of defects view reports for project.
	IssueCount(ctx context.Context, projectName, viewName string) (int, error)
}
