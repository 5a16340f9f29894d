package testrun

import (
	"path/filepath"
	"strings"

	"github.com/nuniesmith/fks-main/internal/domain"
)

var defaultCommands = map[string]string{
	domain.FrameworkFastAPI: "pytest -n auto --cov=src --cov-report=term-missing",
	domain.FrameworkDjango:  "pytest -n auto --cov=src --cov-report=term-missing",
	domain.FrameworkAxum:    "cargo test --workspace --all-targets",
}

// DefaultCommand returns the test command used when a service declares none.
func DefaultCommand(framework string) string {
	if cmd, ok := defaultCommands[framework]; ok {
		return cmd
	}
	return "pytest"
}

// ExtractConfigs builds one ServiceTestConfig per registry entry whose name
// contains filter. An empty filter matches everything. Configs come back in
// registry order.
func ExtractConfigs(reg domain.Registry, filter, root string) ([]domain.ServiceTestConfig, error) {
	if !reg.HasServices() {
		return nil, domain.ErrNoServices
	}
	if root == "" {
		root = domain.DefaultServicesRoot
	}

	var configs []domain.ServiceTestConfig
	for _, name := range reg.Names() {
		if filter != "" && !strings.Contains(name, filter) {
			continue
		}
		entry := reg.Services[name]

		framework := entry.Framework
		if framework == "" {
			framework = domain.DefaultFramework
		}
		command := entry.TestCommand
		if command == "" {
			command = DefaultCommand(framework)
		}

		configs = append(configs, domain.ServiceTestConfig{
			Name:             name,
			Path:             filepath.Join(root, name),
			TestCommand:      command,
			TestDependencies: append([]string(nil), entry.TestDependencies...),
			RequiresGPU:      entry.RequiresGPU,
			Framework:        framework,
		})
	}
	return configs, nil
}
