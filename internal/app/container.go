package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/nuniesmith/fks-main/internal/application/preflight"
	"github.com/nuniesmith/fks-main/internal/application/report"
	"github.com/nuniesmith/fks-main/internal/application/testrun"
	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/infrastructure/config"
	"github.com/nuniesmith/fks-main/internal/infrastructure/dependency"
	"github.com/nuniesmith/fks-main/internal/infrastructure/executor"
	"github.com/nuniesmith/fks-main/internal/infrastructure/httpprobe"
	"github.com/nuniesmith/fks-main/internal/infrastructure/metrics"
	"github.com/nuniesmith/fks-main/internal/infrastructure/registry"
	"github.com/nuniesmith/fks-main/internal/infrastructure/runtime"
	"github.com/nuniesmith/fks-main/internal/infrastructure/sockets"
	"github.com/nuniesmith/fks-main/internal/infrastructure/telemetry"
	"github.com/nuniesmith/fks-main/internal/pkg/logger"
	"github.com/nuniesmith/fks-main/internal/ports"
	"github.com/nuniesmith/fks-main/internal/version"
)

// Options carries the global CLI flags into the container.
type Options struct {
	ConfigPath      string
	RegistryPath    string
	MetricsTextfile string
	Verbose         bool
	Trace           bool
	Color           bool

	// Out receives reports; Err receives logs and spans.
	Out io.Writer
	Err io.Writer
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config           domain.Config
	RunID            string
	Logger           ports.Logger
	PreflightService *preflight.Service
	Gate             *preflight.Gate
	TestService      *testrun.Service

	closers []func(context.Context) error
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfg, err := config.NewFileLoader(opts.ConfigPath).Load(ctx)
	if err != nil {
		return nil, err
	}
	if opts.RegistryPath != "" {
		cfg.Registry.Paths = []string{opts.RegistryPath}
	}
	if opts.MetricsTextfile != "" {
		cfg.Metrics.Textfile = opts.MetricsTextfile
	}

	runID := uuid.NewString()
	log := logger.New(opts.Err, logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: opts.Verbose,
	}).With(map[string]interface{}{"run_id": runID})

	c := &Container{Config: cfg, RunID: runID, Logger: log}

	shutdown, err := telemetry.Setup(opts.Err, opts.Trace, version.Version)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, shutdown)

	runner := executor.NewLocalExecutor()
	containers, err := c.containerRuntime(cfg.Runtime, runner)
	if err != nil {
		_ = c.Close(ctx)
		return nil, err
	}

	registries := registry.NewFileReader(cfg.Registry.Paths)
	reportOpts := report.Options{Color: opts.Color}

	var recorder ports.RunRecorder
	if cfg.Metrics.Textfile != "" {
		recorder = metrics.NewRunMetrics(cfg.Metrics.Textfile)
	}

	c.PreflightService = &preflight.Service{
		Config:     cfg,
		Registries: registries,
		Containers: containers,
		Runner:     runner,
		HTTP:       httpprobe.NewProber(),
		Sockets:    sockets.NewLister(runner),
		Recorder:   recorder,
		Logger:     log,
	}
	c.Gate = &preflight.Gate{Service: c.PreflightService, Out: opts.Out, Options: reportOpts}

	deps := dependency.NewProber(containers, cfg.Dependencies, map[string]dependency.Pinger{
		domain.DependencyKindRedis:   dependency.RedisPinger{},
		domain.DependencyKindMongoDB: dependency.MongoPinger{},
	})
	c.TestService = &testrun.Service{
		Config:       cfg.Tests,
		Gate:         c.Gate,
		Registries:   registries,
		Runner:       runner,
		Dependencies: deps,
		Recorder:     recorder,
		Logger:       log,
		Out:          opts.Out,
		Options:      reportOpts,
	}

	log.Debug("container ready", map[string]interface{}{
		"registry_paths": cfg.Registry.Paths,
		"runtime_driver": cfg.Runtime.Driver,
		"metrics":        cfg.Metrics.Textfile,
	})
	return c, nil
}

func (c *Container) containerRuntime(settings domain.RuntimeSettings, runner ports.ProcessRunner) (ports.ContainerRuntime, error) {
	if settings.Driver != domain.RuntimeDriverAPI {
		return runtime.NewCLIRuntime(runner), nil
	}
	api, err := runtime.NewAPIRuntime()
	if err != nil {
		return nil, fmt.Errorf("runtime driver %q: %w", settings.Driver, err)
	}
	c.closers = append(c.closers, func(context.Context) error { return api.Close() })
	return api, nil
}

// Close releases the docker client and flushes pending spans.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
