package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"covcheck/internal/coverity"
	"covcheck/internal/report"
	"covcheck/internal/views"
)

func outstanding(count int) *coverity.MockSession {
	return &coverity.MockSession{Counts: map[string]int{"Outstanding Issues": count}}
}

func checkArgs(extra ...string) []string {
	args := []string{
		"check-issues",
		"--instance", "http://coverity.example.com",
		"--project", "my-project",
		"--view", "Outstanding Issues",
	}
	return append(args, extra...)
}

func TestCheckIssuesCommand(t *testing.T) {
	tests := []struct {
		name        string
		count       int
		extra       []string
		wantCode    int
		wantOutput  string
		wantErrorLg bool
	}{
		{
			name:       "no issues passes",
			count:      0,
			wantCode:   ExitSuccess,
			wantOutput: "no issues found",
		},
		{
			name:       "issues fail the build",
			count:      3,
			wantCode:   ExitIssuesFound,
			wantOutput: "[Coverity] Found 3 issues in view.",
		},
		{
			name:        "issues are reported with return-issue-count",
			count:       3,
			extra:       []string{"--return-issue-count"},
			wantCode:    ExitSuccess,
			wantOutput:  "3 issues found",
			wantErrorLg: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, testInstances, outstanding(tt.count))

			result := ta.execute(checkArgs(tt.extra...)...)

			assert.Equal(t, tt.wantCode, result.ExitCode)
			assert.Contains(t, ta.Out.String(), tt.wantOutput)
			assert.Contains(t, ta.Out.String(), "[1/2] connect")
			assert.Contains(t, ta.Out.String(), "[2/2] get-issues-in-view")

			errorLogs := ta.Logs.FilterLevelExact(zapcore.ErrorLevel).FilterMessage("[Coverity] Found 3 issues in view.")
			assert.Equal(t, tt.wantErrorLg, errorLogs.Len() == 1)
		})
	}
}

func TestCheckIssuesCommand_UnknownInstance(t *testing.T) {
	ta := newTestApp(t, testInstances, outstanding(0))

	result := ta.execute("check-issues", "--instance", "http://nope.example.com", "--project", "p", "--view", "v")

	assert.Equal(t, ExitFailure, result.ExitCode)
	assert.Contains(t, ta.Out.String(), "There are no Coverity instances configured with the name http://nope.example.com")
	assert.Zero(t, ta.Connector.Calls())
}

func TestCheckIssuesCommand_ConnectFailure(t *testing.T) {
	ta := newTestApp(t, testInstances, outstanding(5))
	ta.Connector.ConnectErr = &coverity.WebServiceError{StatusCode: 401, Message: "HTTP 401 Unauthorized"}

	result := ta.execute(checkArgs()...)

	assert.Equal(t, ExitFailure, result.ExitCode)
	assert.Contains(t, ta.Out.String(), "HTTP 401 Unauthorized")
	assert.Contains(t, ta.Out.String(), "get-issues-in-view skipped")
	assert.Empty(t, ta.Session.CountCalls)
}

func TestCheckIssuesCommand_MissingFlags(t *testing.T) {
	ta := newTestApp(t, testInstances, outstanding(0))

	result := ta.execute("check-issues", "--instance", "http://coverity.example.com")

	assert.Equal(t, ExitFailure, result.ExitCode)
	require.Error(t, result.Err)
	_, isExit := IsExitError(result.Err)
	assert.False(t, isExit)
}

func TestCheckIssuesCommand_WritesReport(t *testing.T) {
	ta := newTestApp(t, testInstances, outstanding(4))
	path := filepath.Join(t.TempDir(), "coverity-report.yaml")

	result := ta.execute(checkArgs("--report", path)...)
	require.Equal(t, ExitIssuesFound, result.ExitCode)

	r, err := report.Read(path)
	require.NoError(t, err)
	assert.Equal(t, report.VerdictFailed, r.Verdict)
	assert.Equal(t, 4, r.IssueCount)
	assert.Equal(t, "my-project", r.Project)
	assert.True(t, testClock.Equal(r.GeneratedAt))
	require.Len(t, r.Steps, 2)
	assert.NotEmpty(t, r.RunID)

	ta.Out.Reset()
	result = ta.execute("report", path)
	assert.Equal(t, ExitSuccess, result.ExitCode)
	assert.Contains(t, ta.Out.String(), "Verdict: failed (4 issues)")
}

func TestReportCommand_Missing(t *testing.T) {
	ta := newTestApp(t, nil, nil)

	result := ta.execute("report", filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, ExitFailure, result.ExitCode)
	assert.Contains(t, ta.Out.String(), "failed to read report")
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name       string
		instances  coverity.Instances
		args       []string
		connectErr error
		wantCode   int
		wantOutput string
		wantCalls  int
	}{
		{
			name:       "configured instance",
			instances:  testInstances,
			args:       []string{"validate", "--instance", "http://coverity.example.com"},
			wantCode:   ExitSuccess,
			wantOutput: "OK Connection to http://coverity.example.com is valid",
			wantCalls:  2,
		},
		{
			name:       "no instances configured",
			args:       []string{"validate", "--instance", "http://coverity.example.com"},
			wantCode:   ExitFailure,
			wantOutput: "ERROR There are no Coverity instances configured",
		},
		{
			name:       "no instance chosen",
			instances:  testInstances,
			args:       []string{"validate"},
			wantCode:   ExitFailure,
			wantOutput: "ERROR Please choose one of the Coverity instances",
		},
		{
			name:       "ignore message",
			instances:  testInstances,
			args:       []string{"validate", "--instance", "http://coverity.example.com", "--ignore-message"},
			connectErr: errors.New("refused"),
			wantCode:   ExitFailure,
			wantOutput: "ERROR Selected Coverity instance is invalid.",
			wantCalls:  1,
		},
		{
			name:       "arbitrary url",
			args:       []string{"validate", "--url", "https://new.example.com", "--username", "u", "--password", "p"},
			wantCode:   ExitSuccess,
			wantOutput: "OK Successfully connected to https://new.example.com",
			wantCalls:  2,
		},
		{
			name:       "malformed url",
			args:       []string{"validate", "--url", "new.example.com"},
			wantCode:   ExitFailure,
			wantOutput: "ERROR MalformedURLError: no protocol: new.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, tt.instances, nil)
			ta.Connector.ConnectErr = tt.connectErr

			result := ta.execute(tt.args...)

			assert.Equal(t, tt.wantCode, result.ExitCode)
			assert.Contains(t, ta.Out.String(), tt.wantOutput)
			assert.Equal(t, tt.wantCalls, ta.Connector.Calls())
		})
	}
}

func TestValidateCommand_FlagConflicts(t *testing.T) {
	ta := newTestApp(t, testInstances, nil)

	result := ta.execute("validate", "--instance", "http://coverity.example.com", "--url", "http://x.example.com")
	assert.Equal(t, ExitFailure, result.ExitCode)

	result = ta.execute("validate", "--instance", "http://coverity.example.com", "--username", "u")
	assert.Equal(t, ExitFailure, result.ExitCode)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "require --url")
	assert.Zero(t, ta.Connector.Calls())
}

func TestInstancesCommand(t *testing.T) {
	ta := newTestApp(t, testInstances, nil)

	result := ta.execute("instances")

	assert.Equal(t, ExitSuccess, result.ExitCode)
	assert.Equal(t, "http://coverity.example.com\nhttp://backup.example.com\n- none -\n", ta.Out.String())
}

func TestViewsCommand(t *testing.T) {
	session := &coverity.MockSession{Views: []coverity.View{{ID: 1, Name: "Outstanding Issues"}, {ID: 2, Name: "All In Project"}}}
	ta := newTestApp(t, testInstances, session)
	ta.App.ViewCache = views.NewCache(t.TempDir())

	result := ta.execute("views", "--instance", "http://coverity.example.com")
	assert.Equal(t, ExitSuccess, result.ExitCode)
	assert.Equal(t, "Outstanding Issues\nAll In Project\n", ta.Out.String())

	ta.Out.Reset()
	ta.Connector.ConnectErr = errors.New("down")
	result = ta.execute("views", "--instance", "http://coverity.example.com", "--refresh")
	assert.Equal(t, ExitSuccess, result.ExitCode)
	assert.Equal(t, "Outstanding Issues\nAll In Project\n", ta.Out.String(), "stale cache is served when refetch fails")
}

func TestViewsCommand_Unreachable(t *testing.T) {
	ta := newTestApp(t, testInstances, nil)
	ta.Connector.ConnectErr = errors.New("down")

	result := ta.execute("views", "--instance", "http://backup.example.com")

	assert.Equal(t, ExitSuccess, result.ExitCode)
	assert.Equal(t, "no views\n", ta.Out.String())
}

func TestViewsCommand_UnknownInstance(t *testing.T) {
	ta := newTestApp(t, testInstances, nil)

	result := ta.execute("views", "--instance", "http://nope.example.com")

	assert.Equal(t, ExitFailure, result.ExitCode)
	assert.Zero(t, ta.Connector.Calls())
}

func TestIsExitError(t *testing.T) {
	code, ok := IsExitError(NewExitError(ExitIssuesFound))
	assert.True(t, ok)
	assert.Equal(t, 2, code)

	_, ok = IsExitError(errors.New("plain"))
	assert.False(t, ok)

	_, ok = IsExitError(nil)
	assert.False(t, ok)

	assert.Equal(t, "exit status 1", NewExitError(1).Error())
}
