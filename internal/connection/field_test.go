package connection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covcheck/internal/coverity"
)

func newTestHelper(instances coverity.Instances, connector *coverity.MockConnector) *FieldHelper {
	return NewFieldHelper(instances, NewValidator(connector))
}

var testInstances = coverity.Instances{
	{URL: "http://one.example.com", Credentials: &coverity.Credentials{Username: "u", Password: "p"}},
	{URL: "http://two.example.com"},
}

func TestFieldHelper_InstanceItems(t *testing.T) {
	h := newTestHelper(testInstances, &coverity.MockConnector{})

	items := h.InstanceItems()

	require.Len(t, items, 3)
	assert.Equal(t, Option{Label: "http://one.example.com", Value: "http://one.example.com"}, items[0])
	assert.Equal(t, Option{Label: "http://two.example.com", Value: "http://two.example.com"}, items[1])
	assert.Equal(t, Option{Label: NoneLabel, Value: ""}, items[2])
}

func TestFieldHelper_InstanceItems_Empty(t *testing.T) {
	h := newTestHelper(nil, &coverity.MockConnector{})
	assert.Equal(t, []Option{{Label: "- none -", Value: ""}}, h.InstanceItems())
}

func TestFieldHelper_CheckInstanceURL(t *testing.T) {
	failing := coverity.ConnectionResult{Failure: true, FailureMessage: "Bad Gateway", HTTPStatusCode: intPtr(502)}

	tests := []struct {
		name        string
		instances   coverity.Instances
		selection   string
		result      coverity.ConnectionResult
		wantKind    Kind
		wantMessage string
		wantCalls   int
	}{
		{
			name:        "no instances configured",
			instances:   nil,
			selection:   "http://one.example.com",
			wantKind:    KindError,
			wantMessage: "There are no Coverity instances configured",
		},
		{
			name:        "blank selection",
			instances:   testInstances,
			selection:   "  ",
			wantKind:    KindError,
			wantMessage: "Please choose one of the Coverity instances",
		},
		{
			name:        "unknown instance",
			instances:   testInstances,
			selection:   "http://three.example.com",
			wantKind:    KindError,
			wantMessage: "There are no Coverity instances configured with the name http://three.example.com",
		},
		{
			name:      "successful connection drops the message",
			instances: testInstances,
			selection: "http://one.example.com",
			wantKind:  KindOK,
			wantCalls: 2,
		},
		{
			name:        "failed connection keeps the message",
			instances:   testInstances,
			selection:   "http://two.example.com",
			result:      failing,
			wantKind:    KindError,
			wantMessage: "Could not connect to http://two.example.com: Bad Gateway (Status code: 502)",
			wantCalls:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connector := &coverity.MockConnector{Result: tt.result}
			h := newTestHelper(tt.instances, connector)

			out := h.CheckInstanceURL(context.Background(), tt.selection)

			assert.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.wantMessage, out.Message)
			assert.Equal(t, tt.wantCalls, connector.Calls())
		})
	}
}

func TestFieldHelper_CheckInstanceURLIgnoreMessage(t *testing.T) {
	ok := newTestHelper(testInstances, &coverity.MockConnector{})
	out := ok.CheckInstanceURLIgnoreMessage(context.Background(), "http://one.example.com")
	assert.Equal(t, OK(""), out)

	failing := newTestHelper(testInstances, &coverity.MockConnector{
		ConnectErr: &coverity.WebServiceError{StatusCode: 401, Message: "HTTP 401 Unauthorized"},
	})
	out = failing.CheckInstanceURLIgnoreMessage(context.Background(), "http://one.example.com")
	assert.Equal(t, KindError, out.Kind)
	assert.Equal(t, "Selected Coverity instance is invalid.", out.Message)

	none := newTestHelper(nil, &coverity.MockConnector{})
	out = none.CheckInstanceURLIgnoreMessage(context.Background(), "")
	assert.Equal(t, MsgInvalidInstance, out.Message)
}

func TestFieldHelper_TestConnectionToInstance_UsesCredentials(t *testing.T) {
	connector := &coverity.MockConnector{}
	h := newTestHelper(testInstances, connector)

	out := h.TestConnectionToInstance(context.Background(), testInstances[0])

	assert.True(t, out.IsOK())
	assert.Equal(t, "Successfully connected to http://one.example.com", out.Message)
	require.Len(t, connector.ConnectCalls, 1)
	assert.Equal(t, "u", connector.ConnectCalls[0].Credentials.Username)
}
