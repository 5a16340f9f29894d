package preflight

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nuniesmith/fks-main/internal/domain"
)

func probePorts(ctx context.Context, env *Env) domain.Finding {
	declared := make(map[uint16]struct{})
	for _, port := range env.Registry.Ports() {
		declared[port] = struct{}{}
	}

	listening, err := env.Sockets.ListeningPorts(ctx)
	if err != nil {
		return domain.Failed(fmt.Sprintf("Could not read listening sockets: %v", err))
	}

	var inUse []int
	for port := range declared {
		if _, ok := listening[port]; ok {
			inUse = append(inUse, int(port))
		}
	}
	if len(inUse) > 0 {
		sort.Ints(inUse)
		env.Logger.Debug("declared ports already bound", map[string]interface{}{"ports": inUse})
		return domain.Failed(fmt.Sprintf("Ports in use (expected if services running): %d ports", len(inUse)))
	}
	return domain.Pass(fmt.Sprintf("No unexpected conflicts (checked %d ports)", len(declared)))
}

func probeGit(ctx context.Context, env *Env) domain.Finding {
	res, err := env.Runner.Run(ctx, domain.Command{Name: "git", Args: []string{"status", "--porcelain"}})
	if err != nil {
		return domain.Failed(fmt.Sprintf("git not available (skipped): %v", err))
	}
	if !res.Success() {
		return domain.Pass("Not in a git repository (skipped)")
	}
	if strings.TrimSpace(res.Stdout) != "" {
		return domain.Failed("Uncommitted changes detected (warning only)")
	}
	return domain.Pass("Working directory is clean")
}

func probeEnv(_ context.Context, env *Env) domain.Finding {
	var missing []string
	for _, name := range env.Settings.RequiredEnv {
		if env.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return domain.Failed("Missing variables (may be in .env): " + strings.Join(missing, ", "))
	}
	return domain.Pass("All required environment variables present")
}

func probeGPU(ctx context.Context, env *Env) domain.Finding {
	res, err := env.Runner.Run(ctx, domain.Command{Name: "nvidia-smi", Args: []string{"--version"}})
	if err == nil && res.Success() {
		return domain.Pass("GPU available")
	}

	msg := "GPU not available (warning only)"
	if needing := env.Registry.GPUServices(); len(needing) > 0 {
		msg += "; required by " + strings.Join(needing, ", ")
	}
	return domain.Failed(msg)
}
