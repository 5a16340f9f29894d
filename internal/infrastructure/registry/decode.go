package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nuniesmith/fks-main/internal/domain"
)

// Parse decodes a registry document. YAML is selected by a .yaml/.yml
// extension, JSON otherwise.
//
// Only a document that is not valid JSON or YAML is an error. Fields are read
// one at a time: an optional field of the wrong type is ignored, a services
// value that is not a mapping counts as no services mapping, and non-string
// test dependencies are dropped.
func Parse(data []byte, ext string) (domain.Registry, error) {
	var (
		doc any
		err error
	)
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		doc, err = decodeJSON(data)
	}
	if err != nil {
		return domain.Registry{}, err
	}
	return buildRegistry(doc), nil
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after the registry document at offset %d", dec.InputOffset())
	}
	return doc, nil
}

func buildRegistry(doc any) domain.Registry {
	root, ok := asObject(doc)
	if !ok {
		return domain.Registry{}
	}
	services, ok := asObject(root["services"])
	if !ok {
		return domain.Registry{}
	}

	reg := domain.Registry{Services: make(map[string]domain.ServiceEntry, len(services))}
	for name, raw := range services {
		reg.Services[name] = buildEntry(raw)
	}
	return reg
}

func buildEntry(raw any) domain.ServiceEntry {
	fields, ok := asObject(raw)
	if !ok {
		return domain.ServiceEntry{}
	}

	entry := domain.ServiceEntry{
		HealthURL:        asString(fields["health_url"]),
		BaseURL:          asString(fields["base_url"]),
		MetricsURL:       asString(fields["metrics_url"]),
		LocalOverrideURL: asString(fields["local_override_url"]),
		Framework:        asString(fields["framework"]),
		TestCommand:      asString(fields["test_command"]),
		Port:             asPort(fields["port"]),
		PortDocker:       asPort(fields["port_docker"]),
	}
	if gpu, ok := fields["requires_gpu"].(bool); ok {
		entry.RequiresGPU = gpu
	}
	if items, ok := fields["test_dependencies"].([]any); ok {
		for _, item := range items {
			if dep, ok := item.(string); ok {
				entry.TestDependencies = append(entry.TestDependencies, dep)
			}
		}
	}
	return entry
}

// asObject accepts both decoder shapes: JSON objects and YAML mappings.
// YAML mappings with non-string keys are keyed by their printed form.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asPort accepts a non-negative integer that fits a TCP port.
func asPort(v any) *uint16 {
	var n int64
	switch x := v.(type) {
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return nil
		}
		n = i
	case int:
		n = int64(x)
	case int64:
		n = x
	case uint64:
		if x > math.MaxUint16 {
			return nil
		}
		n = int64(x)
	default:
		return nil
	}
	if n < 0 || n > math.MaxUint16 {
		return nil
	}
	port := uint16(n)
	return &port
}
