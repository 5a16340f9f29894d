package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nuniesmith/fks-main/assets"
	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/pkg/filesystem"
	"github.com/nuniesmith/fks-main/internal/ports"
)

// EnvConfigPath names an explicit config file, like --config.
const EnvConfigPath = "FKS_CONFIG"

// ErrConfigNotFound is returned when an explicitly requested config file is missing.
var ErrConfigNotFound = errors.New("config file not found")

// FileLoader loads YAML configuration from fks.yaml, config/fks.yaml or
// ~/.fks/config.yaml (overridable via --config or FKS_CONFIG), then applies
// environment overrides declared with `env` struct tags.
type FileLoader struct {
	overridePath string
	searchPaths  []string
}

// NewFileLoader builds a new loader. An empty path searches the default locations.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{
		overridePath: path,
		searchPaths: []string{
			"fks.yaml",
			filepath.Join("config", "fks.yaml"),
			filepath.Join(filesystem.UserHomeDir(), ".fks", "config.yaml"),
		},
	}
}

// WithSearchPaths replaces the default search locations.
func (l *FileLoader) WithSearchPaths(paths []string) *FileLoader {
	l.searchPaths = paths
	return l
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	cfg := DefaultConfig()

	path, explicit := l.resolvePath()
	if path != "" {
		if err := loadFromFile(&cfg, path); err != nil {
			if explicit || !errors.Is(err, ErrConfigNotFound) {
				return domain.Config{}, fmt.Errorf("failed to load config from %s: %w", path, err)
			}
		}
	}

	if err := loadEnvToStruct(reflect.ValueOf(&cfg).Elem()); err != nil {
		return domain.Config{}, fmt.Errorf("failed to load config from environment: %w", err)
	}

	cfg = hydrateDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

func (l *FileLoader) resolvePath() (string, bool) {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath), true
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom), true
	}
	for _, p := range l.searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p, false
		}
	}
	return "", false
}

func loadFromFile(cfg *domain.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() domain.Config {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return builtinConfig()
	}
	return cfg
}

// builtinConfig mirrors assets/defaults/fks.yaml.
func builtinConfig() domain.Config {
	return domain.Config{
		Log: domain.LogSettings{
			Level:  "warn",
			Format: "text",
		},
		Registry: domain.RegistrySettings{
			Paths: append([]string(nil), domain.DefaultRegistryPaths...),
		},
		Runtime: domain.RuntimeSettings{
			Driver: domain.RuntimeDriverCLI,
		},
		Preflight: domain.PreflightSettings{
			CheckTimeout:         domain.DefaultCheckTimeout,
			ProbeTimeout:         domain.DefaultProbeTimeout,
			RequiredContainers:   append([]string(nil), domain.DefaultRequiredContainers...),
			RequiredEnv:          append([]string(nil), domain.DefaultRequiredEnv...),
			AggregatorService:    domain.DefaultAggregatorService,
			BuildInfoMarker:      domain.DefaultBuildInfoMarker,
			InternalHostPrefixes: append([]string(nil), domain.DefaultInternalHostPrefixes...),
			PortRemap:            domain.DefaultPortRemap(),
			SmokeSteps:           domain.DefaultSmokeSteps(),
		},
		Tests: domain.TestSettings{
			ServicesRoot:      domain.DefaultServicesRoot,
			SettleDelay:       domain.DefaultSettleDelay,
			DependencyTimeout: domain.DefaultDependencyTimeout,
			CoverageDir:       domain.DefaultCoverageDir,
		},
	}
}

// hydrateDefaults refills fields a config file explicitly blanked.
func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Runtime.Driver == "" {
		cfg.Runtime.Driver = domain.RuntimeDriverCLI
	}
	if cfg.Preflight.ProbeTimeout == 0 {
		cfg.Preflight.ProbeTimeout = domain.DefaultProbeTimeout
	}
	if cfg.Preflight.AggregatorService == "" {
		cfg.Preflight.AggregatorService = domain.DefaultAggregatorService
	}
	if cfg.Preflight.BuildInfoMarker == "" {
		cfg.Preflight.BuildInfoMarker = domain.DefaultBuildInfoMarker
	}
	if cfg.Tests.ServicesRoot == "" {
		cfg.Tests.ServicesRoot = domain.DefaultServicesRoot
	}
	if cfg.Tests.DependencyTimeout == 0 {
		cfg.Tests.DependencyTimeout = domain.DefaultDependencyTimeout
	}
	if cfg.Tests.CoverageDir == "" {
		cfg.Tests.CoverageDir = domain.DefaultCoverageDir
	}
	return cfg
}

// loadEnvToStruct recursively loads environment variables into a struct.
func loadEnvToStruct(v reflect.Value) error {
	t := v.Type()

	for i := range v.NumField() {
		field := v.Field(i)
		fieldType := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := loadEnvToStruct(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}
		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}

		if err := setFieldFromEnv(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s from env %s: %w", fieldType.Name, envTag, err)
		}
	}
	return nil
}

//nolint:exhaustive // only the kinds used by domain.Config are supported
func setFieldFromEnv(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeFor[time.Duration]() {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration value: %s", value)
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type())
		}
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
