// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The application services in internal/application only talk to the outside
// world through these interfaces. Concrete adapters live under
// internal/infrastructure and are wired together in internal/app.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., RegistryReader, ProcessRunner)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"
	"time"

	"github.com/nuniesmith/fks-main/internal/domain"
)

// ConfigProvider loads the CLI configuration.
// Implementations typically read fks.yaml and apply environment overrides.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// RegistryReader locates and parses the service registry.
// Every call re-reads the underlying file.
type RegistryReader interface {
	Load(context.Context) (domain.Registry, error)
}

// ProcessRunner runs a program without a shell and captures its output.
// A non-zero exit status is reported through ExecutionResult.ExitCode with a nil error;
// the error is reserved for failures to start or wait for the process.
type ProcessRunner interface {
	Run(ctx context.Context, cmd domain.Command) (domain.ExecutionResult, error)
}

// HTTPResponse is the part of an HTTP exchange the probes look at.
type HTTPResponse struct {
	StatusCode int
	Body       []byte
	Latency    time.Duration
}

// OK reports a 2xx status.
func (r HTTPResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HTTPProber issues GET requests. Any received response is returned without error,
// whatever its status; errors mean transport failure or timeout.
type HTTPProber interface {
	Get(ctx context.Context, url string, timeout time.Duration) (HTTPResponse, error)
}

// RuntimeInfo describes the container daemon.
type RuntimeInfo struct {
	ServerVersion string
}

// ContainerRuntime answers questions about the local container daemon.
type ContainerRuntime interface {
	Info(ctx context.Context) (RuntimeInfo, error)
	RunningContainers(ctx context.Context) ([]string, error)
}

// SocketLister reports the TCP ports currently in LISTEN state on the host.
type SocketLister interface {
	ListeningPorts(ctx context.Context) (map[uint16]struct{}, error)
}

// DependencyProber checks whether a named test dependency looks reachable.
// It never returns an error: problems are reported through the status.
type DependencyProber interface {
	Probe(ctx context.Context, name string) domain.DependencyStatus
}

// Gate runs the pre-flight checks and reports whether the environment is ready.
type Gate interface {
	Gate(ctx context.Context, full bool) error
}

// RunRecorder exports run outcomes to an external sink.
type RunRecorder interface {
	RecordPreflight(results []domain.CheckResult) error
	RecordTests(results []domain.TestResult) error
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
