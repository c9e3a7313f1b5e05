package export

import (
	"context"
	"errors"
	"fmt"

	"intxexport/config"
	"intxexport/internal/intx"
	"intxexport/internal/signer"
)

// StepError reports which step of a run failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ErrorClass names the kind of failure for operator-facing messages.
func ErrorClass(err error) string {
	var (
		cfgErr     *config.ConfigurationError
		signErr    *signer.SigningError
		httpErr    *intx.HTTPError
		timeoutErr *intx.TimeoutError
		decodeErr  *intx.DecodeError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return "ConfigurationError"
	case errors.As(err, &signErr):
		return "SigningError"
	case errors.As(err, &httpErr):
		return "HTTPError"
	case errors.As(err, &timeoutErr):
		return "TimeoutError"
	case errors.As(err, &decodeErr):
		return "DecodeError"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	default:
		return "Error"
	}
}
