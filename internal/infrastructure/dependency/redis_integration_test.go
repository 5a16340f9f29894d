//go:build integration

package dependency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const redisStartupTimeout = 60 * time.Second

func TestRedisPinger_AgainstContainer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*redisStartupTimeout)
	defer cancel()

	cont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(redisStartupTimeout),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		terminateCtx, terminateCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer terminateCancel()
		_ = cont.Terminate(terminateCtx)
	})

	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "6379")
	require.NoError(t, err)

	require.NoError(t, RedisPinger{}.Ping(ctx, host+":"+port.Port()))
}
