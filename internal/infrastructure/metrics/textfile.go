package metrics

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/ports"
)

// RunMetrics holds the gauges describing the latest run, written to a
// node_exporter textfile after each phase.
type RunMetrics struct {
	path     string
	registry *prometheus.Registry
	mu       sync.Mutex

	CheckOK          *prometheus.GaugeVec
	CheckDuration    *prometheus.GaugeVec
	ChecksFailed     prometheus.Gauge
	TestSuccess      *prometheus.GaugeVec
	TestDuration     *prometheus.GaugeVec
	TestsFailed      prometheus.Gauge
	LastRunTimestamp *prometheus.GaugeVec
}

// NewRunMetrics creates and registers the run gauges on a private registry.
func NewRunMetrics(path string) *RunMetrics {
	m := &RunMetrics{
		path:     path,
		registry: prometheus.NewRegistry(),
		CheckOK: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fks_preflight_check_ok",
			Help: "1 when the pre-flight check passed (advisory checks always pass)",
		}, []string{"check", "number", "severity"}),
		CheckDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fks_preflight_check_duration_seconds",
			Help: "Wall time of the pre-flight check",
		}, []string{"check", "number"}),
		ChecksFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fks_preflight_checks_failed",
			Help: "Number of blocking pre-flight checks that failed",
		}),
		TestSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fks_test_service_success",
			Help: "1 when the service test suite exited with status 0",
		}, []string{"service"}),
		TestDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fks_test_service_duration_seconds",
			Help: "Wall time of the service test suite",
		}, []string{"service"}),
		TestsFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fks_tests_failed",
			Help: "Number of service test suites that failed",
		}),
		LastRunTimestamp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fks_last_run_timestamp_seconds",
			Help: "Unix time the phase last finished",
		}, []string{"phase"}),
	}

	m.registry.MustRegister(
		m.CheckOK,
		m.CheckDuration,
		m.ChecksFailed,
		m.TestSuccess,
		m.TestDuration,
		m.TestsFailed,
		m.LastRunTimestamp,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordPreflight implements ports.RunRecorder.
func (m *RunMetrics) RecordPreflight(results []domain.CheckResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	failed := 0
	for _, r := range results {
		number := strconv.Itoa(r.Number)
		m.CheckOK.WithLabelValues(r.Description, number, r.Severity.String()).Set(boolGauge(r.OK()))
		m.CheckDuration.WithLabelValues(r.Description, number).Set(r.Duration.Seconds())
		if !r.OK() {
			failed++
		}
	}
	m.ChecksFailed.Set(float64(failed))
	m.LastRunTimestamp.WithLabelValues("preflight").SetToCurrentTime()
	return m.flush()
}

// RecordTests implements ports.RunRecorder.
func (m *RunMetrics) RecordTests(results []domain.TestResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	failed := 0
	for _, r := range results {
		m.TestSuccess.WithLabelValues(r.Service).Set(boolGauge(r.Success))
		m.TestDuration.WithLabelValues(r.Service).Set(r.Duration.Seconds())
		if !r.Success {
			failed++
		}
	}
	m.TestsFailed.Set(float64(failed))
	m.LastRunTimestamp.WithLabelValues("tests").SetToCurrentTime()
	return m.flush()
}

func (m *RunMetrics) flush() error {
	if m.path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(m.path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", m.path, err)
	}
	return nil
}

func boolGauge(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

var _ ports.RunRecorder = (*RunMetrics)(nil)
