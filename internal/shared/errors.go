package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authorization flow errors
	ErrAuthFailed    = fmt.Errorf("authorization failed")
	ErrActionMissing = fmt.Errorf("action required")
	ErrTokenExchange = fmt.Errorf("failed to fetch access token")

	// API, storage and service errors
	ErrRemoteAPI          = fmt.Errorf("remote API request failed")
	ErrPlaylistCreate     = fmt.Errorf("failed to create playlist")
	ErrStorage            = fmt.Errorf("snapshot storage failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrValidation      = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)

// ValidationError reports a missing or malformed caller-supplied parameter.
//
// Its message is safe to return to callers verbatim; it matches [ErrValidation] with errors.Is.
type ValidationError struct {
	Param string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// MissingParam returns a [ValidationError] for a required parameter that was empty or absent.
func MissingParam(name string) error {
	return &ValidationError{Param: name, Msg: fmt.Sprintf("Parameter %s required", name)}
}

// InvalidParam returns a [ValidationError] for a parameter with an unacceptable value.
func InvalidParam(name, format string, args ...any) error {
	return &ValidationError{
		Param: name,
		Msg:   fmt.Sprintf("Invalid parameter '%s'. ", name) + fmt.Sprintf(format, args...),
	}
}
