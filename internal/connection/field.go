package connection

import (
	"context"
	"strings"

	"covcheck/internal/coverity"
)

// Messages reported for configuration problems. These never reach the
// network layer.
const (
	MsgNoInstances       = "There are no Coverity instances configured"
	MsgChooseInstance    = "Please choose one of the Coverity instances"
	MsgInvalidInstance   = "Selected Coverity instance is invalid."
	msgUnknownInstanceAt = "There are no Coverity instances configured with the name %s"
)

// NoneLabel is the label of the synthetic "no selection" option.
const NoneLabel = "- none -"

// Option is one (label, value) entry of an instance selection list.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FieldHelper validates instance selections for form-style callers.
//
// It works on an explicit snapshot of configured instances handed in at
// construction; it never consults global state.
type FieldHelper struct {
	instances coverity.Instances
	validator *Validator
}

// NewFieldHelper creates a helper over a snapshot of instances.
func NewFieldHelper(instances coverity.Instances, validator *Validator) *FieldHelper {
	return &FieldHelper{
		instances: instances,
		validator: validator,
	}
}

// InstanceItems lists every configured instance URL as an option, followed
// by the "- none -" option with an empty value.
func (h *FieldHelper) InstanceItems() []Option {
	items := make([]Option, 0, len(h.instances)+1)
	for _, u := range h.instances.URLs() {
		items = append(items, Option{Label: u, Value: u})
	}
	return append(items, Option{Label: NoneLabel, Value: ""})
}

// CheckInstanceURL validates a selected instance: configuration checks
// first, then a connection test whose success message is dropped.
func (h *FieldHelper) CheckInstanceURL(ctx context.Context, instanceURL string) Outcome {
	if h.instances.Empty() {
		return Error(MsgNoInstances)
	}
	if strings.TrimSpace(instanceURL) == "" {
		return Error(MsgChooseInstance)
	}
	return h.TestConnectionIgnoreSuccessMessage(ctx, instanceURL)
}

// CheckInstanceURLIgnoreMessage collapses [FieldHelper.CheckInstanceURL]
// to pass/fail: any error becomes a generic invalid-selection error, and
// everything else becomes a bare OK.
func (h *FieldHelper) CheckInstanceURLIgnoreMessage(ctx context.Context, instanceURL string) Outcome {
	if h.CheckInstanceURL(ctx, instanceURL).IsError() {
		return Error(MsgInvalidInstance)
	}
	return OK("")
}

// TestConnectionIgnoreSuccessMessage tests the named instance. A successful
// test is reported as a bare OK; warnings and errors keep their message.
func (h *FieldHelper) TestConnectionIgnoreSuccessMessage(ctx context.Context, instanceURL string) Outcome {
	inst, ok := h.instances.Find(instanceURL)
	if !ok {
		return Errorf(msgUnknownInstanceAt, instanceURL)
	}
	out := h.TestConnectionToInstance(ctx, inst)
	if out.IsOK() {
		return OK("")
	}
	return out
}

// TestConnectionToInstance tests a configured instance with its credentials.
func (h *FieldHelper) TestConnectionToInstance(ctx context.Context, inst coverity.Instance) Outcome {
	return h.TestConnectionTo(ctx, inst.URL, inst.Credentials)
}

// TestConnectionTo tests an arbitrary address with creds.
func (h *FieldHelper) TestConnectionTo(ctx context.Context, address string, creds *coverity.Credentials) Outcome {
	return h.validator.Validate(ctx, address, creds)
}
