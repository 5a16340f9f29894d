package testrun

import (
	"context"
	"sort"
	"time"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/pkg/fanout"
	"github.com/nuniesmith/fks-main/internal/ports"
)

// UnionDependencies returns the sorted, deduplicated set of declared test dependencies.
func UnionDependencies(configs []domain.ServiceTestConfig) []string {
	seen := make(map[string]struct{})
	for _, cfg := range configs {
		for _, dep := range cfg.TestDependencies {
			if dep == "" {
				continue
			}
			seen[dep] = struct{}{}
		}
	}
	deps := make([]string, 0, len(seen))
	for dep := range seen {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// Coordinator reports which test dependencies look present. It never starts
// anything and never fails the run.
type Coordinator struct {
	Prober ports.DependencyProber
	Logger ports.Logger

	// Timeout bounds each probe. Zero means domain.DefaultDependencyTimeout.
	Timeout time.Duration
}

// Coordinate probes every dependency concurrently and returns one status per
// dependency, in name order.
func (c *Coordinator) Coordinate(ctx context.Context, configs []domain.ServiceTestConfig) []domain.DependencyStatus {
	deps := UnionDependencies(configs)
	if len(deps) == 0 {
		return nil
	}
	c.Logger.Info("test dependencies", map[string]interface{}{"dependencies": deps})

	if c.Prober == nil {
		statuses := make([]domain.DependencyStatus, len(deps))
		for i, dep := range deps {
			statuses[i] = domain.DependencyStatus{Name: dep, Detail: "not probed"}
		}
		return statuses
	}

	units := make([]fanout.Unit[domain.DependencyStatus], len(deps))
	for i, dep := range deps {
		units[i] = fanout.Unit[domain.DependencyStatus]{
			ID: dep,
			Run: func(ctx context.Context) (domain.DependencyStatus, error) {
				return c.Prober.Probe(ctx, dep), nil
			},
		}
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultDependencyTimeout
	}
	byID := fanout.Collect(fanout.Run(ctx, units, timeout))

	statuses := make([]domain.DependencyStatus, 0, len(deps))
	for _, dep := range deps {
		outcome := byID[dep]
		status := outcome.Value
		if outcome.Err != nil {
			status = domain.DependencyStatus{Name: dep, Detail: outcome.Err.Error()}
		}
		if !status.Present {
			c.Logger.Warn("test dependency not detected", map[string]interface{}{"dependency": dep, "detail": status.Detail})
		}
		statuses = append(statuses, status)
	}
	return statuses
}
