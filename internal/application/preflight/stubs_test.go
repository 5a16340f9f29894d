package preflight

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/infrastructure/httpprobe"
	"github.com/nuniesmith/fks-main/internal/pkg/logger"
	"github.com/nuniesmith/fks-main/internal/ports"
)

type stubRegistry struct {
	reg domain.Registry
	err error
}

func (s stubRegistry) Load(context.Context) (domain.Registry, error) {
	return s.reg, s.err
}

type stubRuntime struct {
	info       ports.RuntimeInfo
	infoErr    error
	containers []string
	listErr    error
}

func (s stubRuntime) Info(context.Context) (ports.RuntimeInfo, error) {
	return s.info, s.infoErr
}

func (s stubRuntime) RunningContainers(context.Context) ([]string, error) {
	return s.containers, s.listErr
}

// stubRunner answers by program name.
type stubRunner struct {
	mu      sync.Mutex
	results map[string]domain.ExecutionResult
	errs    map[string]error
	calls   []string
}

func (s *stubRunner) Run(_ context.Context, cmd domain.Command) (domain.ExecutionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, cmd.Name+" "+strings.Join(cmd.Args, " "))
	if err := s.errs[cmd.Name]; err != nil {
		return domain.ExecutionResult{}, err
	}
	return s.results[cmd.Name], nil
}

type stubSockets struct {
	open map[uint16]struct{}
	err  error
}

func (s stubSockets) ListeningPorts(context.Context) (map[uint16]struct{}, error) {
	return s.open, s.err
}

func port(p uint16) *uint16 { return &p }

func testConfig() domain.Config {
	return domain.Config{
		Preflight: domain.PreflightSettings{
			CheckTimeout:         2 * time.Second,
			ProbeTimeout:         time.Second,
			RequiredContainers:   []string{"fks_web_db", "fks_auth_db"},
			RequiredEnv:          []string{"MONITOR_URL"},
			AggregatorService:    domain.DefaultAggregatorService,
			BuildInfoMarker:      domain.DefaultBuildInfoMarker,
			InternalHostPrefixes: domain.DefaultInternalHostPrefixes,
			PortRemap:            domain.DefaultPortRemap(),
		},
	}
}

// healthyService builds a Service whose every dependency reports success.
func healthyService(reg domain.Registry) *Service {
	return &Service{
		Config:     testConfig(),
		Registries: stubRegistry{reg: reg},
		Containers: stubRuntime{
			info:       ports.RuntimeInfo{ServerVersion: "28.0.1"},
			containers: []string{"fks_web_db", "fks_auth_db"},
		},
		Runner: &stubRunner{results: map[string]domain.ExecutionResult{
			"git":        {},
			"nvidia-smi": {},
		}},
		HTTP:    httpprobe.NewProber(),
		Sockets: stubSockets{open: map[uint16]struct{}{}},
		Logger:  logger.NewNop(),
		Getenv:  func(string) string { return "set" },
	}
}

func byNumber(results []domain.CheckResult) map[int]domain.CheckResult {
	out := make(map[int]domain.CheckResult, len(results))
	for _, r := range results {
		out[r.Number] = r
	}
	return out
}
