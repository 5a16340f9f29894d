package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the CLI configuration loaded from fks.yaml and the environment.
type Config struct {
	Log          LogSettings                   `yaml:"log"`
	Registry     RegistrySettings              `yaml:"registry"`
	Runtime      RuntimeSettings               `yaml:"runtime"`
	Preflight    PreflightSettings             `yaml:"preflight"`
	Tests        TestSettings                  `yaml:"tests"`
	Dependencies map[string]DependencyEndpoint `yaml:"dependencies"`
	Metrics      MetricsSettings               `yaml:"metrics"`
}

// LogSettings controls the stderr logger.
type LogSettings struct {
	Level  string `yaml:"level" env:"FKS_LOG_LEVEL"`   // debug | info | warn | error
	Format string `yaml:"format" env:"FKS_LOG_FORMAT"` // text | json
}

// RegistrySettings lists the candidate registry locations, in lookup order.
type RegistrySettings struct {
	Paths []string `yaml:"paths" env:"FKS_REGISTRY_PATH"`
}

// RuntimeSettings selects how the container runtime is reached.
type RuntimeSettings struct {
	Driver     string `yaml:"driver" env:"FKS_RUNTIME_DRIVER"` // cli | api
	MinVersion string `yaml:"min_version" env:"FKS_DOCKER_MIN_VERSION"`
}

// PreflightSettings tunes the readiness checks.
type PreflightSettings struct {
	CheckTimeout         time.Duration `yaml:"check_timeout" env:"FKS_CHECK_TIMEOUT"`
	ProbeTimeout         time.Duration `yaml:"probe_timeout" env:"FKS_PROBE_TIMEOUT"`
	RequiredContainers   []string      `yaml:"required_containers" env:"FKS_REQUIRED_CONTAINERS"`
	RequiredEnv          []string      `yaml:"required_env" env:"FKS_REQUIRED_ENV"`
	AggregatorService    string        `yaml:"aggregator_service" env:"FKS_AGGREGATOR_SERVICE"`
	BuildInfoMarker      string        `yaml:"build_info_marker" env:"FKS_BUILD_INFO_MARKER"`
	InternalHostPrefixes []string      `yaml:"internal_host_prefixes"`
	PortRemap            map[int]int   `yaml:"port_remap"`
	SmokeSteps           []SmokeStep   `yaml:"smoke_steps"`
}

// SmokeStep is one link of the smoke-test chain.
type SmokeStep struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	// TolerateStatus passes the step on any HTTP response; only transport errors fail it.
	TolerateStatus bool `yaml:"tolerate_status"`
}

// TestSettings tunes the test orchestrator.
type TestSettings struct {
	ServicesRoot      string        `yaml:"services_root" env:"FKS_SERVICES_ROOT"`
	SettleDelay       time.Duration `yaml:"settle_delay" env:"FKS_TEST_SETTLE_DELAY"`
	Timeout           time.Duration `yaml:"timeout" env:"FKS_TEST_TIMEOUT"`
	DependencyTimeout time.Duration `yaml:"dependency_timeout" env:"FKS_DEPENDENCY_TIMEOUT"`
	CoverageDir       string        `yaml:"coverage_dir" env:"FKS_COVERAGE_DIR"`
}

// DependencyEndpoint configures an active presence probe for a test dependency.
type DependencyEndpoint struct {
	Kind    string `yaml:"kind"` // redis | mongodb
	Address string `yaml:"address"`
}

// MetricsSettings configures the optional Prometheus textfile export.
type MetricsSettings struct {
	Textfile string `yaml:"textfile" env:"FKS_METRICS_TEXTFILE"`
}

// Runtime drivers.
const (
	RuntimeDriverCLI = "cli"
	RuntimeDriverAPI = "api"
)

// Dependency probe kinds.
const (
	DependencyKindRedis   = "redis"
	DependencyKindMongoDB = "mongodb"
)

// ErrConfigInvalid wraps every configuration validation problem.
var ErrConfigInvalid = errors.New("invalid configuration")

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if len(c.Registry.Paths) == 0 {
		errs = append(errs, errors.New("registry.paths must not be empty"))
	}
	switch c.Runtime.Driver {
	case RuntimeDriverCLI, RuntimeDriverAPI:
	default:
		errs = append(errs, fmt.Errorf("runtime.driver must be cli or api, got %q", c.Runtime.Driver))
	}
	if c.Preflight.CheckTimeout < 0 {
		errs = append(errs, errors.New("preflight.check_timeout must not be negative"))
	}
	if c.Preflight.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("preflight.probe_timeout must be positive"))
	}
	for i, step := range c.Preflight.SmokeSteps {
		if step.Name == "" || step.URL == "" {
			errs = append(errs, fmt.Errorf("preflight.smoke_steps[%d] needs a name and a url", i))
		}
	}
	if c.Tests.SettleDelay < 0 {
		errs = append(errs, errors.New("tests.settle_delay must not be negative"))
	}
	if c.Tests.Timeout < 0 {
		errs = append(errs, errors.New("tests.timeout must not be negative"))
	}
	if c.Tests.DependencyTimeout < 0 {
		errs = append(errs, errors.New("tests.dependency_timeout must not be negative"))
	}
	for name, dep := range c.Dependencies {
		switch dep.Kind {
		case DependencyKindRedis, DependencyKindMongoDB:
		default:
			errs = append(errs, fmt.Errorf("dependencies.%s.kind must be redis or mongodb, got %q", name, dep.Kind))
		}
		if dep.Address == "" {
			errs = append(errs, fmt.Errorf("dependencies.%s.address is required", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errors.Join(errs...))
	}
	return nil
}
