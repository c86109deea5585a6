package llm

// ConnectionError means the inference server could not be reached or did not
// accept the request. It is surfaced once and never retried.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "inference server unreachable: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ParseError means the server answered but the body was malformed or missing
// the expected message field.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "malformed inference response: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
