package domain

import "sort"

// ServiceEntry describes one platform service in the registry document.
type ServiceEntry struct {
	HealthURL        string   `json:"health_url,omitempty" yaml:"health_url,omitempty"`
	BaseURL          string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	MetricsURL       string   `json:"metrics_url,omitempty" yaml:"metrics_url,omitempty"`
	LocalOverrideURL string   `json:"local_override_url,omitempty" yaml:"local_override_url,omitempty"`
	Port             *uint16  `json:"port,omitempty" yaml:"port,omitempty"`
	PortDocker       *uint16  `json:"port_docker,omitempty" yaml:"port_docker,omitempty"`
	Framework        string   `json:"framework,omitempty" yaml:"framework,omitempty"`
	TestCommand      string   `json:"test_command,omitempty" yaml:"test_command,omitempty"`
	TestDependencies []string `json:"test_dependencies,omitempty" yaml:"test_dependencies,omitempty"`
	RequiresGPU      bool     `json:"requires_gpu,omitempty" yaml:"requires_gpu,omitempty"`
}

// Registry is the parsed service registry. It is read-only once loaded.
type Registry struct {
	Services map[string]ServiceEntry `json:"services" yaml:"services"`
	// Source is the path the registry was read from.
	Source string `json:"-" yaml:"-"`
}

// HasServices reports whether the document declared a services mapping at all.
func (r Registry) HasServices() bool {
	return r.Services != nil
}

// Names returns service names in the registry iteration order (sorted).
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.Services))
	for name := range r.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ports returns every declared port, both host and docker, in iteration order.
func (r Registry) Ports() []uint16 {
	var ports []uint16
	for _, name := range r.Names() {
		entry := r.Services[name]
		if entry.Port != nil {
			ports = append(ports, *entry.Port)
		}
		if entry.PortDocker != nil {
			ports = append(ports, *entry.PortDocker)
		}
	}
	return ports
}

// GPUServices lists services that declare requires_gpu.
func (r Registry) GPUServices() []string {
	var names []string
	for _, name := range r.Names() {
		if r.Services[name].RequiresGPU {
			names = append(names, name)
		}
	}
	return names
}
