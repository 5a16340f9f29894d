package dependency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/ports"
)

type stubRuntime struct {
	names []string
	err   error
	calls int
}

func (s *stubRuntime) Info(context.Context) (ports.RuntimeInfo, error) {
	return ports.RuntimeInfo{}, nil
}

func (s *stubRuntime) RunningContainers(context.Context) ([]string, error) {
	s.calls++
	return s.names, s.err
}

type stubPinger struct {
	err  error
	addr string
}

func (s *stubPinger) Ping(_ context.Context, address string) error {
	s.addr = address
	return s.err
}

func TestProber_ContainerSubstringMatch(t *testing.T) {
	rt := &stubRuntime{names: []string{"project-fks_web_db-1", "fks_data_redis"}}
	p := NewProber(rt, nil, nil)

	got := p.Probe(context.Background(), "fks_web_db")
	assert.True(t, got.Present)
	assert.Contains(t, got.Detail, "project-fks_web_db-1")

	got = p.Probe(context.Background(), "fks_auth_db")
	assert.False(t, got.Present)
	assert.Equal(t, "no running container", got.Detail)

	assert.Equal(t, 1, rt.calls)
}

func TestProber_ListFailureIsReportedNotReturned(t *testing.T) {
	p := NewProber(&stubRuntime{err: errors.New("daemon down")}, nil, nil)

	got := p.Probe(context.Background(), "fks_web_db")
	assert.False(t, got.Present)
	assert.Contains(t, got.Detail, "daemon down")
}

func TestProber_ConfiguredEndpointUsesPinger(t *testing.T) {
	redisPinger := &stubPinger{}
	mongoPinger := &stubPinger{err: errors.New("connection refused")}
	endpoints := map[string]domain.DependencyEndpoint{
		"fks_web_redis": {Kind: domain.DependencyKindRedis, Address: "localhost:6379"},
		"fks_data_db":   {Kind: domain.DependencyKindMongoDB, Address: "localhost:27017"},
	}
	rt := &stubRuntime{}
	p := NewProber(rt, endpoints, map[string]Pinger{
		domain.DependencyKindRedis:   redisPinger,
		domain.DependencyKindMongoDB: mongoPinger,
	})

	got := p.Probe(context.Background(), "fks_web_redis")
	assert.True(t, got.Present)
	assert.Equal(t, "localhost:6379", redisPinger.addr)

	got = p.Probe(context.Background(), "fks_data_db")
	assert.False(t, got.Present)
	assert.Contains(t, got.Detail, "connection refused")

	assert.Zero(t, rt.calls)
}

func TestProber_MissingDriver(t *testing.T) {
	endpoints := map[string]domain.DependencyEndpoint{"cache": {Kind: domain.DependencyKindRedis, Address: "x:1"}}
	got := NewProber(nil, endpoints, nil).Probe(context.Background(), "cache")
	assert.False(t, got.Present)
	assert.Contains(t, got.Detail, "no redis driver")
}

func TestRedisPinger_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, RedisPinger{}.Ping(ctx, "127.0.0.1:1"))
}
