package domain

import "time"

// Frameworks with a known default test command.
const (
	FrameworkFastAPI = "fastapi"
	FrameworkDjango  = "django"
	FrameworkAxum    = "axum"
)

// ServiceTestConfig is derived once per matched registry entry and never mutated.
type ServiceTestConfig struct {
	Name             string
	Path             string
	TestCommand      string
	TestDependencies []string
	RequiresGPU      bool
	Framework        string
}

// TestResult is the outcome of running one service's test suite.
type TestResult struct {
	Service  string
	Success  bool
	Duration time.Duration
	Stdout   string
	Stderr   string
	// ExitCode is nil when no process exit status was observed.
	ExitCode *int
}

// TestRunOptions mirrors the flags of the test command.
type TestRunOptions struct {
	ServiceFilter string
	Parallel      bool
	Coverage      bool
}

// TestRunReport aggregates one invocation of the test command.
type TestRunReport struct {
	Results      []TestResult
	Dependencies []DependencyStatus
	Total        time.Duration
	CoverageDir  string
}

// Passed counts successful results.
func (r TestRunReport) Passed() int {
	n := 0
	for _, result := range r.Results {
		if result.Success {
			n++
		}
	}
	return n
}

// Failed counts failed results.
func (r TestRunReport) Failed() int {
	return len(r.Results) - r.Passed()
}

// DependencyStatus records whether a declared test dependency looks present.
// It is informational only.
type DependencyStatus struct {
	Name    string
	Present bool
	Detail  string
}

// ExecutionResult captures a finished child process.
type ExecutionResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Success reports whether the process exited with status 0.
func (r ExecutionResult) Success() bool {
	return r.ExitCode == 0
}

// Command is a process invocation without a shell.
type Command struct {
	Name string
	Args []string
	Dir  string
}
