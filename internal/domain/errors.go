package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRegistryNotFound means no candidate registry path exists.
	ErrRegistryNotFound = errors.New("service registry not found in any expected location")

	// ErrRegistryParse means the first existing registry candidate is malformed.
	ErrRegistryParse = errors.New("service registry is invalid")

	// ErrNoServices means the registry document has no services mapping.
	ErrNoServices = errors.New("no services found in registry")

	// ErrProbeTimeout means a probe did not finish within its timeout.
	ErrProbeTimeout = errors.New("probe timed out")

	// ErrProbeTransport means a probe could not reach its target (network or process spawn).
	ErrProbeTransport = errors.New("probe transport error")

	// ErrRuntimeUnavailable means the container daemon answered with an error or not at all.
	ErrRuntimeUnavailable = errors.New("container runtime not running or not accessible")

	// ErrHardCheckFailure means at least one blocking check failed.
	ErrHardCheckFailure = errors.New("pre-flight check failed")

	// ErrTestSuiteFailure means at least one service test suite failed.
	ErrTestSuiteFailure = errors.New("test run failed")

	// ErrPreflightFailed means the pre-flight gate rejected a test run.
	ErrPreflightFailed = errors.New("pre-flight checks failed, aborting tests")
)

// CountError carries how many units failed alongside the failure kind.
type CountError struct {
	Kind  error
	Count int
}

func (e *CountError) Error() string {
	switch e.Kind {
	case ErrHardCheckFailure:
		return fmt.Sprintf("%s: %d checks failed", e.Kind, e.Count)
	case ErrTestSuiteFailure:
		return fmt.Sprintf("%d test(s) failed", e.Count)
	default:
		return fmt.Sprintf("%s: %d", e.Kind, e.Count)
	}
}

func (e *CountError) Unwrap() error {
	return e.Kind
}

// FailureCount extracts the count from a CountError anywhere in the chain.
func FailureCount(err error) (int, bool) {
	var ce *CountError
	if errors.As(err, &ce) {
		return ce.Count, true
	}
	return 0, false
}
