package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nuniesmith/fks-main/internal/application/report"
	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/pkg/fanout"
	"github.com/nuniesmith/fks-main/internal/ports"
)

const tracerName = "github.com/nuniesmith/fks-main/internal/application/preflight"

// Service runs the readiness checks.
type Service struct {
	Config     domain.Config
	Registries ports.RegistryReader
	Containers ports.ContainerRuntime
	Runner     ports.ProcessRunner
	HTTP       ports.HTTPProber
	Sockets    ports.SocketLister
	Recorder   ports.RunRecorder
	Logger     ports.Logger

	// Catalog defaults to Catalog().
	Catalog []Check
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Run loads the registry and executes every selected check concurrently.
// Only a registry failure is returned as an error; check problems are results.
func (s *Service) Run(ctx context.Context, full bool) ([]domain.CheckResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "preflight.run")
	span.SetAttributes(attribute.Bool("preflight.full", full))
	defer span.End()

	reg, err := s.Registries.Load(ctx)
	if err != nil {
		s.Logger.Error("registry unavailable", err, nil)
		span.RecordError(err)
		return nil, err
	}
	s.Logger.Debug("registry loaded", map[string]interface{}{"path": reg.Source, "services": len(reg.Services)})

	env := s.env(reg)
	checks := Select(s.catalog(), full)
	byID := make(map[string]Check, len(checks))
	units := make([]fanout.Unit[domain.Finding], 0, len(checks))
	for _, check := range checks {
		id := fmt.Sprintf("%02d", check.Number)
		byID[id] = check
		units = append(units, fanout.Unit[domain.Finding]{
			ID: id,
			Run: func(ctx context.Context) (domain.Finding, error) {
				return check.Probe(ctx, env), nil
			},
		})
	}

	outcomes := fanout.Run(ctx, units, s.Config.Preflight.CheckTimeout)
	results := make([]domain.CheckResult, 0, len(outcomes))
	for _, outcome := range outcomes {
		check := byID[outcome.ID]
		finding := outcome.Value
		if outcome.Err != nil {
			finding = domain.Failed(outcome.Err.Error())
		}
		results = append(results, domain.CheckResult{
			Number:      check.Number,
			Description: check.Description,
			Severity:    check.Severity,
			Raw:         finding.Outcome,
			Outcome:     check.Severity.Effective(finding.Outcome),
			Message:     finding.Message,
			Duration:    outcome.Duration,
		})
		s.Logger.Debug("check finished", map[string]interface{}{
			"check":    check.Number,
			"raw":      string(finding.Outcome),
			"duration": outcome.Duration.String(),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Number < results[j].Number })

	if s.Recorder != nil {
		if err := s.Recorder.RecordPreflight(results); err != nil {
			s.Logger.Warn("failed to export pre-flight metrics", map[string]interface{}{"error": err.Error()})
		}
	}
	return results, nil
}

func (s *Service) env(reg domain.Registry) *Env {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Env{
		Registry:   reg,
		Settings:   s.Config.Preflight,
		Runtime:    s.Config.Runtime,
		Localizer:  NewLocalizer(s.Config.Preflight),
		Registries: s.Registries,
		Containers: s.Containers,
		Runner:     s.Runner,
		HTTP:       s.HTTP,
		Sockets:    s.Sockets,
		Logger:     s.Logger,
		Getenv:     getenv,
	}
}

func (s *Service) catalog() []Check {
	if len(s.Catalog) > 0 {
		return s.Catalog
	}
	return Catalog()
}

// Gate runs the checks, prints the report and fails when any blocking check failed.
type Gate struct {
	Service *Service
	Out     io.Writer
	Options report.Options
}

// Gate implements ports.Gate.
func (g *Gate) Gate(ctx context.Context, full bool) error {
	results, err := g.Service.Run(ctx, full)
	if err != nil {
		return err
	}
	verdict, err := report.Aggregate(results, g.Options)
	fmt.Fprint(g.Out, verdict.Report)
	return err
}

var _ ports.Gate = (*Gate)(nil)
