// Package testrun orchestrates per-service test suites behind the pre-flight gate.
package testrun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kballard/go-shellquote"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nuniesmith/fks-main/internal/application/report"
	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/pkg/fanout"
	"github.com/nuniesmith/fks-main/internal/ports"
)

const tracerName = "github.com/nuniesmith/fks-main/internal/application/testrun"

// Service runs test suites.
type Service struct {
	Config       domain.TestSettings
	Gate         ports.Gate
	Registries   ports.RegistryReader
	Runner       ports.ProcessRunner
	Dependencies ports.DependencyProber
	Recorder     ports.RunRecorder
	Logger       ports.Logger
	Out          io.Writer
	Options      report.Options

	// Sleep defaults to a context-aware time.Sleep.
	Sleep func(context.Context, time.Duration)
}

// Run gates on the full pre-flight, then runs every matching service's tests.
func (s *Service) Run(ctx context.Context, opts domain.TestRunOptions) (domain.TestRunReport, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "testrun.run")
	span.SetAttributes(
		attribute.String("tests.filter", opts.ServiceFilter),
		attribute.Bool("tests.parallel", opts.Parallel),
	)
	defer span.End()

	if s.Gate != nil {
		if err := s.Gate.Gate(ctx, true); err != nil {
			s.Logger.Error("pre-flight gate rejected test run", err, nil)
			return domain.TestRunReport{}, fmt.Errorf("%w: %w", domain.ErrPreflightFailed, err)
		}
	}

	reg, err := s.Registries.Load(ctx)
	if err != nil {
		return domain.TestRunReport{}, err
	}
	configs, err := ExtractConfigs(reg, opts.ServiceFilter, s.Config.ServicesRoot)
	if err != nil {
		return domain.TestRunReport{}, err
	}
	if len(configs) == 0 {
		fmt.Fprintln(s.Out, "No services found matching filter")
		return domain.TestRunReport{}, nil
	}

	coordinator := Coordinator{Prober: s.Dependencies, Logger: s.Logger, Timeout: s.Config.DependencyTimeout}
	run := domain.TestRunReport{Dependencies: coordinator.Coordinate(ctx, configs)}
	if s.Config.SettleDelay > 0 {
		s.sleep(ctx, s.Config.SettleDelay)
	}

	if opts.Coverage {
		dir := s.Config.CoverageDir
		if dir == "" {
			dir = domain.DefaultCoverageDir
		}
		if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
			s.Logger.Warn("failed to create coverage directory", map[string]interface{}{"path": dir, "error": err.Error()})
		} else {
			run.CoverageDir = dir
		}
	}

	start := time.Now()
	if opts.Parallel {
		run.Results = s.runParallel(ctx, configs)
	} else {
		run.Results = make([]domain.TestResult, 0, len(configs))
		for _, cfg := range configs {
			run.Results = append(run.Results, s.runOne(ctx, cfg))
		}
	}
	run.Total = time.Since(start)

	if s.Recorder != nil {
		if err := s.Recorder.RecordTests(run.Results); err != nil {
			s.Logger.Warn("failed to export test metrics", map[string]interface{}{"error": err.Error()})
		}
	}

	fmt.Fprint(s.Out, report.RenderTests(run, s.Options))
	if failed := run.Failed(); failed > 0 {
		span.SetAttributes(attribute.Int("tests.failed", failed))
		return run, &domain.CountError{Kind: domain.ErrTestSuiteFailure, Count: failed}
	}
	return run, nil
}

func (s *Service) runParallel(ctx context.Context, configs []domain.ServiceTestConfig) []domain.TestResult {
	units := make([]fanout.Unit[domain.TestResult], len(configs))
	for i, cfg := range configs {
		units[i] = fanout.Unit[domain.TestResult]{
			ID: cfg.Name,
			Run: func(ctx context.Context) (domain.TestResult, error) {
				return s.runOne(ctx, cfg), nil
			},
		}
	}
	byID := fanout.Collect(fanout.Run(ctx, units, 0))

	results := make([]domain.TestResult, 0, len(configs))
	for _, cfg := range configs {
		outcome := byID[cfg.Name]
		if outcome.Err != nil {
			results = append(results, domain.TestResult{Service: cfg.Name, Duration: outcome.Duration, Stderr: outcome.Err.Error()})
			continue
		}
		results = append(results, outcome.Value)
	}
	return results
}

// runOne executes a single service's suite. Failures are results, never errors.
func (s *Service) runOne(ctx context.Context, cfg domain.ServiceTestConfig) domain.TestResult {
	start := time.Now()
	result := domain.TestResult{Service: cfg.Name}
	fail := func(msg string) domain.TestResult {
		result.Stderr = msg
		result.Duration = time.Since(start)
		s.Logger.Warn("test run failed", map[string]interface{}{"service": cfg.Name, "reason": msg})
		return result
	}

	info, err := os.Stat(cfg.Path)
	if err != nil || !info.IsDir() {
		return fail(fmt.Sprintf("Service directory not found: %s", cfg.Path))
	}

	argv, err := shellquote.Split(cfg.TestCommand)
	if err != nil {
		return fail(fmt.Sprintf("Invalid test command: %v", err))
	}
	if len(argv) == 0 {
		return fail("Empty test command")
	}

	if s.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Config.Timeout)
		defer cancel()
	}

	s.Logger.Info("running tests", map[string]interface{}{"service": cfg.Name, "command": cfg.TestCommand, "dir": cfg.Path})
	res, err := s.Runner.Run(ctx, domain.Command{Name: argv[0], Args: argv[1:], Dir: cfg.Path})
	if err != nil {
		if errors.Is(err, domain.ErrProbeTimeout) {
			return fail(fmt.Sprintf("Timeout after %s", s.Config.Timeout))
		}
		return fail(err.Error())
	}

	exitCode := res.ExitCode
	result.ExitCode = &exitCode
	result.Success = res.Success()
	result.Stdout = res.Stdout
	result.Stderr = res.Stderr
	result.Duration = time.Since(start)
	s.Logger.Debug("tests finished", map[string]interface{}{
		"service":   cfg.Name,
		"exit_code": exitCode,
		"duration":  result.Duration.String(),
	})
	return result
}

func (s *Service) sleep(ctx context.Context, d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(ctx, d)
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
