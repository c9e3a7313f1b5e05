package config

// ConfigurationError reports an invalid or incomplete configuration. It is
// always raised before any request reaches the exchange.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return "configuration error: " + e.Reason
	}
	return "configuration error: " + e.Reason + ": " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
