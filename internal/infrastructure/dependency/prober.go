package dependency

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/ports"
)

// Pinger actively checks a network endpoint.
type Pinger interface {
	Ping(ctx context.Context, address string) error
}

// Prober decides how to look for a dependency: configured endpoints are
// pinged with their driver, everything else is matched against running
// container names.
type Prober struct {
	runtime   ports.ContainerRuntime
	endpoints map[string]domain.DependencyEndpoint
	pingers   map[string]Pinger

	once       sync.Once
	containers []string
	listErr    error
}

// NewProber builds a prober. pingers is keyed by endpoint kind.
func NewProber(runtime ports.ContainerRuntime, endpoints map[string]domain.DependencyEndpoint, pingers map[string]Pinger) *Prober {
	return &Prober{runtime: runtime, endpoints: endpoints, pingers: pingers}
}

// Probe implements ports.DependencyProber.
func (p *Prober) Probe(ctx context.Context, name string) domain.DependencyStatus {
	if endpoint, ok := p.endpoints[name]; ok {
		return p.ping(ctx, name, endpoint)
	}
	return p.containerPresent(ctx, name)
}

func (p *Prober) ping(ctx context.Context, name string, endpoint domain.DependencyEndpoint) domain.DependencyStatus {
	pinger, ok := p.pingers[endpoint.Kind]
	if !ok {
		return domain.DependencyStatus{Name: name, Detail: fmt.Sprintf("no %s driver configured", endpoint.Kind)}
	}
	if err := pinger.Ping(ctx, endpoint.Address); err != nil {
		return domain.DependencyStatus{Name: name, Detail: fmt.Sprintf("%s %s unreachable: %v", endpoint.Kind, endpoint.Address, err)}
	}
	return domain.DependencyStatus{Name: name, Present: true, Detail: fmt.Sprintf("%s %s reachable", endpoint.Kind, endpoint.Address)}
}

// containerPresent lists containers once per Prober and reuses the answer.
func (p *Prober) containerPresent(ctx context.Context, name string) domain.DependencyStatus {
	if p.runtime == nil {
		return domain.DependencyStatus{Name: name, Detail: "no container runtime"}
	}
	p.once.Do(func() {
		p.containers, p.listErr = p.runtime.RunningContainers(ctx)
	})
	if p.listErr != nil {
		return domain.DependencyStatus{Name: name, Detail: fmt.Sprintf("cannot list containers: %v", p.listErr)}
	}
	for _, running := range p.containers {
		if strings.Contains(running, name) {
			return domain.DependencyStatus{Name: name, Present: true, Detail: "container " + running + " running"}
		}
	}
	return domain.DependencyStatus{Name: name, Detail: "no running container"}
}

var _ ports.DependencyProber = (*Prober)(nil)
