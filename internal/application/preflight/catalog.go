package preflight

import (
	"context"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/ports"
)

// Probe inspects one aspect of the environment and reports what it saw.
// Probes never return errors: every problem becomes a failing finding.
type Probe func(ctx context.Context, env *Env) domain.Finding

// Check is one row of the catalog.
type Check struct {
	Number      int
	Description string
	Severity    domain.Severity
	// FullOnly checks run only for `preflight --full` and the test gate.
	FullOnly bool
	Probe    Probe
}

// Env is everything a probe may use. It is built once per run and only read
// by probes.
type Env struct {
	Registry   domain.Registry
	Settings   domain.PreflightSettings
	Runtime    domain.RuntimeSettings
	Localizer  Localizer
	Registries ports.RegistryReader
	Containers ports.ContainerRuntime
	Runner     ports.ProcessRunner
	HTTP       ports.HTTPProber
	Sockets    ports.SocketLister
	Logger     ports.Logger
	Getenv     func(string) string
}

// Catalog returns the check table in display order. Number 3 and 6 are
// intentionally unassigned.
func Catalog() []Check {
	return []Check{
		{Number: 1, Description: "Docker daemon", Severity: domain.HardFail, Probe: probeDaemon},
		{Number: 2, Description: "Port conflicts", Severity: domain.WarnOnly, Probe: probePorts},
		{Number: 4, Description: "Infrastructure containers", Severity: domain.HardFail, Probe: probeContainers},
		{Number: 5, Description: "Service registry", Severity: domain.HardFail, Probe: probeRegistry},
		{Number: 7, Description: "Git working directory", Severity: domain.WarnOnly, Probe: probeGit},
		{Number: 8, Description: "Environment variables", Severity: domain.WarnOnly, Probe: probeEnv},
		{Number: 9, Description: "GPU availability", Severity: domain.WarnOnly, Probe: probeGPU},
		{Number: 10, Description: "Service health checks", Severity: domain.HardFail, Probe: probeHealth},
		{Number: 11, Description: "Smoke integration test", Severity: domain.HardFail, FullOnly: true, Probe: probeSmoke},
		{Number: 12, Description: "Metrics endpoints validation", Severity: domain.HardFail, Probe: probeMetrics},
	}
}

// Select filters the catalog for a run.
func Select(catalog []Check, full bool) []Check {
	selected := make([]Check, 0, len(catalog))
	for _, check := range catalog {
		if check.FullOnly && !full {
			continue
		}
		selected = append(selected, check)
	}
	return selected
}
