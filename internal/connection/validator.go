package connection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"covcheck/internal/coverity"
	"covcheck/internal/logging"
)

// DefaultTimeout bounds one validation round trip.
const DefaultTimeout = 30 * time.Second

// Validator tests connections to a server through a [coverity.Connector].
type Validator struct {
	connector coverity.Connector
	logger    *zap.Logger
	timeout   time.Duration
}

// ValidatorOption configures a [Validator].
type ValidatorOption func(*Validator)

// WithLogger sets the validator logger.
func WithLogger(logger *zap.Logger) ValidatorOption {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithTimeout bounds each validation. Non-positive values are ignored.
func WithTimeout(d time.Duration) ValidatorOption {
	return func(v *Validator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// NewValidator creates a validator over connector.
func NewValidator(connector coverity.Connector, opts ...ValidatorOption) *Validator {
	v := &Validator{
		connector: connector,
		logger:    zap.NewNop(),
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.Named("connection")
	return v
}

// panicError carries a value recovered from a panicking transport.
type panicError struct {
	value interface{}
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// Validate builds a server config from address and creds, connects, probes
// the connection and classifies what happened.
//
// Validate never fails: malformed addresses, transport failures, rejected
// credentials and unexpected errors all come back as error outcomes. The
// network work runs under a context that is released on every exit path.
func (v *Validator) Validate(ctx context.Context, address string, creds *coverity.Credentials) (out Outcome) {
	logger := v.logger.With(zap.String(logging.KeyInstanceURL, address))
	defer func() {
		if r := recover(); r != nil {
			out = classify(address, &panicError{value: r})
		}
		if out.IsError() {
			logger.Warn("connection validation failed", zap.String(logging.KeyOutcome, out.Message))
		} else {
			logger.Debug("connection validated", zap.String(logging.KeyOutcome, string(out.Kind)))
		}
	}()

	cfg, err := coverity.NewServerConfig(address, creds)
	if err != nil {
		return classify(address, err)
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if _, err := v.connector.Connect(ctx, cfg); err != nil {
		return classify(address, err)
	}

	result := v.connector.AttemptConnection(ctx, cfg)
	if result.IsFailure() {
		return Outcome{
			Kind:       KindError,
			Message:    fmt.Sprintf("Could not connect to %s: %s (Status code: %s)", address, result.FailureMessage, result.StatusCodeString()),
			StatusCode: result.HTTPStatusCode,
		}
	}

	return OK("Successfully connected to " + address)
}

// classify converts err into an error outcome according to its kind.
func classify(address string, err error) Outcome {
	var (
		malformed   *coverity.MalformedURLError
		webService  *coverity.WebServiceError
		integration *coverity.IntegrationError
	)
	switch {
	case errors.As(err, &malformed):
		return ErrorWithCause(err, fmt.Sprintf("%s: %s", simpleTypeName(malformed), malformed.Error()))

	case errors.As(err, &webService):
		outcome := ErrorWithCause(err, "")
		if webService.StatusCode != 0 {
			code := webService.StatusCode
			outcome.StatusCode = &code
		}
		if strings.Contains(strings.ToLower(webService.Error()), "unauthorized") {
			outcome.Message = fmt.Sprintf("Web service error occurred when attempting to connect to %s\n%s: %s",
				address, simpleTypeName(webService), webService.Error())
		} else {
			outcome.Message = fmt.Sprintf("User authentication failed when attempting to connect to %s\n%s: %s",
				address, simpleTypeName(webService), webService.Error())
		}
		return outcome

	case errors.As(err, &integration), errors.Is(err, coverity.ErrIllegalArgument):
		return ErrorWithCause(err, err.Error())

	default:
		return ErrorWithCause(err, fmt.Sprintf("An unexpected error occurred when attempting to connect to %s\n%s: %s",
			address, simpleTypeName(pkgerrors.Cause(err)), err.Error()))
	}
}

// simpleTypeName returns the unqualified dynamic type name of v, without
// pointer or package prefix.
func simpleTypeName(v interface{}) string {
	name := strings.TrimLeft(fmt.Sprintf("%T", v), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
