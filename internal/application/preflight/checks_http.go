package preflight

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/pkg/fanout"
	"github.com/nuniesmith/fks-main/internal/ports"
)

// target is one service URL to probe.
type target struct {
	service string
	url     string
}

func probeHealth(ctx context.Context, env *Env) domain.Finding {
	var targets []target
	for _, name := range env.Registry.Names() {
		if u, ok := env.Localizer.HealthURL(env.Registry.Services[name]); ok {
			targets = append(targets, target{service: name, url: u})
		}
	}
	if len(targets) == 0 {
		return domain.Failed("No services found in registry")
	}

	results := probeAll(ctx, env, targets, func(resp ports.HTTPResponse) string {
		if !resp.OK() {
			return fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return ""
	})

	var unhealthy []string
	for _, t := range targets {
		res := results[t.service]
		fields := map[string]interface{}{"service": t.service, "url": t.url, "detail": res.detail}
		if res.ok {
			env.Logger.Debug("service healthy", fields)
			continue
		}
		env.Logger.Warn("service unhealthy", fields)
		unhealthy = append(unhealthy, t.service)
	}

	if len(unhealthy) > 0 {
		return domain.Failed(fmt.Sprintf("%d/%d healthy. Unhealthy: %s",
			len(targets)-len(unhealthy), len(targets), strings.Join(unhealthy, ", ")))
	}
	return domain.Pass(fmt.Sprintf("All %d services healthy", len(targets)))
}

func probeMetrics(ctx context.Context, env *Env) domain.Finding {
	marker := []byte(env.Settings.BuildInfoMarker)

	var targets []target
	for _, name := range env.Registry.Names() {
		if name == env.Settings.AggregatorService {
			continue
		}
		if u, ok := env.Localizer.MetricsURL(env.Registry.Services[name]); ok {
			targets = append(targets, target{service: name, url: u})
		}
	}
	if len(targets) == 0 {
		return domain.Failed("No services found in registry")
	}

	results := probeAll(ctx, env, targets, func(resp ports.HTTPResponse) string {
		if !resp.OK() {
			return fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		if !bytes.Contains(resp.Body, marker) {
			return fmt.Sprintf("Missing %s metric", env.Settings.BuildInfoMarker)
		}
		return ""
	})

	var invalid []string
	for _, t := range targets {
		res := results[t.service]
		if !res.ok {
			invalid = append(invalid, fmt.Sprintf("%s (%s)", t.service, res.detail))
		}
	}
	if len(invalid) > 0 {
		return domain.Failed(fmt.Sprintf("%d/%d valid. Invalid: %s",
			len(targets)-len(invalid), len(targets), strings.Join(invalid, ", ")))
	}
	return domain.Pass(fmt.Sprintf("All %d services expose valid metrics", len(targets)))
}

func probeSmoke(ctx context.Context, env *Env) domain.Finding {
	steps := env.Settings.SmokeSteps
	if len(steps) == 0 {
		return domain.Pass("Chain: no steps configured")
	}

	parts := make([]string, 0, len(steps))
	failed := false
	for _, step := range steps {
		resp, err := env.HTTP.Get(ctx, step.URL, env.Settings.ProbeTimeout)
		switch {
		case err != nil:
			failed = true
			parts = append(parts, fmt.Sprintf("%s -> FAIL (%s)", step.Name, describeError(err, env)))
		case !resp.OK() && !step.TolerateStatus:
			failed = true
			parts = append(parts, fmt.Sprintf("%s -> FAIL (HTTP %d)", step.Name, resp.StatusCode))
		case !resp.OK():
			parts = append(parts, fmt.Sprintf("%s -> OK (HTTP %d)", step.Name, resp.StatusCode))
		default:
			parts = append(parts, step.Name+" -> OK")
		}
	}

	msg := "Chain: " + strings.Join(parts, " | ")
	if failed {
		return domain.Failed(msg)
	}
	return domain.Pass(msg)
}

type probeResult struct {
	ok     bool
	detail string
}

// probeAll fans out one GET per target. judge returns a failure detail, or ""
// when the response is acceptable.
func probeAll(ctx context.Context, env *Env, targets []target, judge func(ports.HTTPResponse) string) map[string]probeResult {
	units := make([]fanout.Unit[ports.HTTPResponse], 0, len(targets))
	for _, t := range targets {
		units = append(units, fanout.Unit[ports.HTTPResponse]{
			ID: t.service,
			Run: func(ctx context.Context) (ports.HTTPResponse, error) {
				return env.HTTP.Get(ctx, t.url, 0)
			},
		})
	}

	results := make(map[string]probeResult, len(targets))
	for _, outcome := range fanout.Run(ctx, units, env.Settings.ProbeTimeout) {
		if outcome.Err != nil {
			results[outcome.ID] = probeResult{detail: describeError(outcome.Err, env)}
			continue
		}
		if detail := judge(outcome.Value); detail != "" {
			results[outcome.ID] = probeResult{detail: detail}
			continue
		}
		results[outcome.ID] = probeResult{ok: true, detail: fmt.Sprintf("Healthy (%dms)", outcome.Value.Latency.Milliseconds())}
	}
	return results
}

func describeError(err error, env *Env) string {
	var timeout *fanout.TimeoutError
	switch {
	case errors.As(err, &timeout):
		return timeout.Error()
	case errors.Is(err, domain.ErrProbeTimeout):
		return fmt.Sprintf("Timeout after %s", env.Settings.ProbeTimeout)
	default:
		return fmt.Sprintf("Request failed: %v", err)
	}
}
