package signer

// SigningError means the request could not be signed locally, usually
// because the configured secret is malformed. It never comes from the
// server.
type SigningError struct {
	Reason string
	Err    error
}

func (e *SigningError) Error() string {
	if e.Err == nil {
		return "signing error: " + e.Reason
	}
	return "signing error: " + e.Reason + ": " + e.Err.Error()
}

func (e *SigningError) Unwrap() error {
	return e.Err
}
