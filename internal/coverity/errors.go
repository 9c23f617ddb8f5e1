package coverity

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrIllegalArgument marks caller input the transport refuses to work with,
// such as a half-specified credential pair.
var ErrIllegalArgument = errors.New("illegal argument")

// MalformedURLError reports a server address that is not a usable URL.
// It never involves the network.
type MalformedURLError struct {
	URL    string
	Reason string
}

func (e *MalformedURLError) Error() string {
	if e.URL == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.URL)
}

// WebServiceError is a protocol-level failure reported by the server,
// including authentication and authorization rejections.
type WebServiceError struct {
	StatusCode int
	Message    string
}

func (e *WebServiceError) Error() string {
	return e.Message
}

func newWebServiceError(statusCode int, detail string) *WebServiceError {
	msg := fmt.Sprintf("HTTP %d %s", statusCode, http.StatusText(statusCode))
	if detail != "" {
		msg += ": " + detail
	}
	return &WebServiceError{StatusCode: statusCode, Message: msg}
}

// IntegrationError is a domain failure: the server answered but the answer
// cannot be used (unknown view, undecodable payload).
type IntegrationError struct {
	Message string
	Err     error
}

func (e *IntegrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *IntegrationError) Unwrap() error {
	return e.Err
}
