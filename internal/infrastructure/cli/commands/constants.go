package commands

// Error messages
const (
	ErrPreflightUnavailable   = "preflight service unavailable"
	ErrTestServiceUnavailable = "test service unavailable"
)
