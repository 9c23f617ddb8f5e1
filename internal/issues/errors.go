package issues

// ConfigurationError reports a problem with the configured instances, such
// as an empty instance list or a selected instance that does not exist.
// It is raised before any network call is made.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// CheckFailure is the policy failure raised when issues were found and the
// caller asked for the check to fail the build.
type CheckFailure struct {
	// Count is the number of issues found in the view.
	Count int

	// Message is the one-line, user-facing description.
	Message string
}

func (e *CheckFailure) Error() string {
	return e.Message
}
