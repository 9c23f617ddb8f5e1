package coverity

import (
	"context"
	"fmt"
)

// MockConnector implements [Connector] for testing.
//
// Configure the mock by setting its fields before use:
//
//	mock := &MockConnector{
//	    Session: &MockSession{Counts: map[string]int{"Outstanding": 3}},
//	}
type MockConnector struct {
	// Session is returned by Connect when ConnectErr is nil.
	Session Session

	// ConnectErr is returned by Connect.
	ConnectErr error

	// Result is returned by AttemptConnection.
	Result ConnectionResult

	// Panic, when set, makes Connect panic with this value.
	Panic interface{}

	// ConnectCalls records the configs passed to Connect.
	ConnectCalls []ServerConfig

	// AttemptCalls records the configs passed to AttemptConnection.
	AttemptCalls []ServerConfig
}

// Connect returns the configured session or error.
func (m *MockConnector) Connect(ctx context.Context, cfg ServerConfig) (Session, error) {
	m.ConnectCalls = append(m.ConnectCalls, cfg)
	if m.Panic != nil {
		panic(m.Panic)
	}
	if m.ConnectErr != nil {
		return nil, m.ConnectErr
	}
	if m.Session == nil {
		return &MockSession{}, nil
	}
	return m.Session, nil
}

// AttemptConnection returns the configured result.
func (m *MockConnector) AttemptConnection(ctx context.Context, cfg ServerConfig) ConnectionResult {
	m.AttemptCalls = append(m.AttemptCalls, cfg)
	return m.Result
}

// Calls returns the total number of transport calls made.
func (m *MockConnector) Calls() int {
	return len(m.ConnectCalls) + len(m.AttemptCalls)
}

// MockSession implements [Session] for testing.
type MockSession struct {
	// Views is returned by ListViews.
	Views []View

	// ViewsErr is returned by ListViews.
	ViewsErr error

	// Counts maps view names to issue counts.
	Counts map[string]int

	// CountErr is returned by IssueCount.
	CountErr error

	// CountCalls records the (project, view) pairs queried.
	CountCalls [][2]string
}

// ListViews returns the configured views or error.
func (m *MockSession) ListViews(ctx context.Context) ([]View, error) {
	if m.ViewsErr != nil {
		return nil, m.ViewsErr
	}
	return m.Views, nil
}

// IssueCount returns the configured count for viewName.
func (m *MockSession) IssueCount(ctx context.Context, projectName, viewName string) (int, error) {
	m.CountCalls = append(m.CountCalls, [2]string{projectName, viewName})
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	count, ok := m.Counts[viewName]
	if !ok {
		return 0, &IntegrationError{Message: fmt.Sprintf("could not find view %q for project %q", viewName, projectName)}
	}
	return count, nil
}
