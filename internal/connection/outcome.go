// Package connection validates reachability and credentials of Coverity
// Connect servers and classifies the result for UI and CI callers.
//
// The [Validator] never returns an error: every failure, including a panic
// inside the transport, is converted to an [Outcome]. The [FieldHelper]
// layers configuration checks and UI presentation rules on top of it.
//
// Key types:
//   - [Outcome] is the classified verdict (ok / warning / error)
//   - [Validator] runs one connection attempt and classifies it
//   - [FieldHelper] serves form validation and instance list population
package connection

import "fmt"

// Kind classifies an [Outcome].
type Kind string

const (
	KindOK      Kind = "ok"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Outcome is the classified result of a validation.
type Outcome struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message,omitempty"`

	// StatusCode is the HTTP status reported by the transport, when one
	// was received.
	StatusCode *int `json:"status_code,omitempty"`

	// Err is the underlying error for error outcomes built from one.
	Err error `json:"-"`
}

// OK returns a successful outcome with an optional message.
func OK(message string) Outcome {
	return Outcome{Kind: KindOK, Message: message}
}

// Warning returns a warning outcome.
func Warning(message string) Outcome {
	return Outcome{Kind: KindWarning, Message: message}
}

// Error returns an error outcome.
func Error(message string) Outcome {
	return Outcome{Kind: KindError, Message: message}
}

// Errorf returns an error outcome with a formatted message.
func Errorf(format string, args ...interface{}) Outcome {
	return Error(fmt.Sprintf(format, args...))
}

// ErrorWithCause returns an error outcome carrying err.
func ErrorWithCause(err error, message string) Outcome {
	return Outcome{Kind: KindError, Message: message, Err: err}
}

// IsOK reports whether the outcome is [KindOK].
func (o Outcome) IsOK() bool {
	return o.Kind == KindOK
}

// IsError reports whether the outcome is [KindError].
func (o Outcome) IsError() bool {
	return o.Kind == KindError
}

func (o Outcome) String() string {
	if o.Message == "" {
		return string(o.Kind)
	}
	return fmt.Sprintf("%s: %s", o.Kind, o.Message)
}
