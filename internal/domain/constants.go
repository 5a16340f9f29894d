package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
)

// Timeout and duration constants
const (
	// DefaultCheckTimeout bounds a single pre-flight check.
	DefaultCheckTimeout = 30 * time.Second
	// DefaultProbeTimeout bounds each HTTP request issued by checks 10, 11 and 12.
	DefaultProbeTimeout = 5 * time.Second
	// DefaultSettleDelay is the pause between dependency reporting and test execution.
	DefaultSettleDelay = 2 * time.Second
	// DefaultDependencyTimeout bounds each test dependency presence probe.
	DefaultDependencyTimeout = 5 * time.Second
)

// Registry defaults
var DefaultRegistryPaths = []string{
	"services/config/service_registry.json",
	"../services/config/service_registry.json",
	"../../services/config/service_registry.json",
	"/app/services/config/service_registry.json",
}

// Pre-flight defaults
var (
	DefaultRequiredContainers = []string{
		"fks_web_db",
		"fks_auth_db",
		"fks_data_db",
		"fks_web_redis",
		"fks_data_redis",
	}
	DefaultRequiredEnv          = []string{"MONITOR_URL"}
	DefaultInternalHostPrefixes = []string{"fks-", "fks_"}
)

const (
	DefaultAggregatorService = "fks_monitor"
	DefaultBuildInfoMarker   = "fks_build_info"
)

// DefaultPortRemap maps container-internal ports to their host-published counterparts.
func DefaultPortRemap() map[int]int {
	return map[int]int{3001: 8000, 8081: 8008}
}

// DefaultSmokeSteps is the fks_api -> fks_data -> fks_auth chain.
func DefaultSmokeSteps() []SmokeStep {
	return []SmokeStep{
		{Name: "fks_api", URL: "http://localhost:8001/health"},
		{Name: "fks_data", URL: "http://localhost:8003/health"},
		{Name: "fks_auth", URL: "http://localhost:8009/health"},
		{Name: "fks_api -> fks_data", URL: "http://localhost:8001/", TolerateStatus: true},
	}
}

// Test defaults
const (
	DefaultServicesRoot = "services"
	DefaultCoverageDir  = "reports/coverage"
	DefaultFramework    = FrameworkFastAPI
)

// Report layout
const (
	// SeparatorWidth is the width of the ruler printed around report sections.
	SeparatorWidth = 60
	// StderrPreviewLines is how many stderr lines are shown for a failed test suite.
	StderrPreviewLines = 3
)
