package cli

import (
	"bytes"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"covcheck/internal/config"
	"covcheck/internal/coverity"
	"covcheck/internal/output"
)

// testClock is the fixed time used for reports written in tests.
var testClock = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// testInstances is the instance snapshot used by CLI tests.
var testInstances = coverity.Instances{
	{URL: "http://coverity.example.com", Credentials: &coverity.Credentials{Username: "ci", Password: "secret"}},
	{URL: "http://backup.example.com"},
}

// testApp bundles an App built on mocks with the buffers it writes to.
type testApp struct {
	App       *App
	Connector *coverity.MockConnector
	Session   *coverity.MockSession
	Out       *bytes.Buffer
	Logs      *observer.ObservedLogs
}

// newTestApp builds an App whose connector hands out session.
func newTestApp(t *testing.T, instances coverity.Instances, session *coverity.MockSession) *testApp {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	connector := &coverity.MockConnector{Session: session}
	buf := &bytes.Buffer{}

	cfg := config.DefaultConfig()
	cfg.Cache.Enabled = false

	return &testApp{
		App: &App{
			Config:    cfg,
			Logger:    zap.New(core),
			Printer:   output.NewPrinterWithWriter(buf),
			Connector: connector,
			Instances: instances,
			Now:       func() time.Time { return testClock },
		},
		Connector: connector,
		Session:   session,
		Out:       buf,
		Logs:      logs,
	}
}

// execute runs the root command with args and returns its result.
func (ta *testApp) execute(args ...string) ExecuteResult {
	cmd := NewRootCommand(ta.App)
	cmd.SetOut(ta.Out)
	cmd.SetErr(ta.Out)
	return run(cmd, args)
}
