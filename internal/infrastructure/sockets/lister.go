package sockets

import (
	"context"
	"errors"
	"strconv"
	"strings"

	psnet "github.com/shirou/gopsutil/v4/net"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/ports"
)

// Lister reads the host socket table once per call. It prefers gopsutil and
// falls back to `ss -tln`, then `netstat -tln`.
type Lister struct {
	runner      ports.ProcessRunner
	connections func(ctx context.Context) ([]psnet.ConnectionStat, error)
}

// NewLister builds a lister. runner is used only for the fallbacks.
func NewLister(runner ports.ProcessRunner) *Lister {
	return &Lister{
		runner: runner,
		connections: func(ctx context.Context) ([]psnet.ConnectionStat, error) {
			return psnet.ConnectionsWithContext(ctx, "tcp")
		},
	}
}

// ListeningPorts implements ports.SocketLister.
func (l *Lister) ListeningPorts(ctx context.Context) (map[uint16]struct{}, error) {
	if l.connections != nil {
		conns, err := l.connections(ctx)
		if err == nil && len(conns) > 0 {
			return fromConnections(conns), nil
		}
	}

	var errs []error
	for _, cmd := range []domain.Command{
		{Name: "ss", Args: []string{"-tln"}},
		{Name: "netstat", Args: []string{"-tln"}},
	} {
		if l.runner == nil {
			break
		}
		res, err := l.runner.Run(ctx, cmd)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !res.Success() {
			errs = append(errs, errors.New(cmd.Name+" exited with status "+strconv.Itoa(res.ExitCode)))
			continue
		}
		return ParseTable(res.Stdout), nil
	}
	if len(errs) == 0 {
		return map[uint16]struct{}{}, nil
	}
	return nil, errors.Join(errs...)
}

func fromConnections(conns []psnet.ConnectionStat) map[uint16]struct{} {
	open := make(map[uint16]struct{})
	for _, c := range conns {
		if c.Status != "LISTEN" || c.Laddr.Port == 0 || c.Laddr.Port > 65535 {
			continue
		}
		open[uint16(c.Laddr.Port)] = struct{}{}
	}
	return open
}

// ParseTable extracts listening ports from `ss -tln` or `netstat -tln` output.
// Both put the local address in the fourth column.
func ParseTable(out string) map[uint16]struct{} {
	open := make(map[uint16]struct{})
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		local := fields[3]
		i := strings.LastIndexAny(local, ":.")
		if i < 0 {
			continue
		}
		port, err := strconv.ParseUint(local[i+1:], 10, 16)
		if err != nil || port == 0 {
			continue
		}
		open[uint16(port)] = struct{}{}
	}
	return open
}

var _ ports.SocketLister = (*Lister)(nil)
