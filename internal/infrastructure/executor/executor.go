package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/ports"
)

// waitDelay bounds how long Run waits for grandchildren holding the output pipes
// after the context kills the direct child.
const waitDelay = 2 * time.Second

// LocalExecutor runs programs directly on the host, without a shell.
type LocalExecutor struct {
	env []string
}

// NewLocalExecutor builds a new executor. Extra env entries (KEY=VALUE) are
// appended to the inherited environment.
func NewLocalExecutor(env ...string) *LocalExecutor {
	return &LocalExecutor{env: env}
}

// Run implements ports.ProcessRunner.
func (e *LocalExecutor) Run(ctx context.Context, cmd domain.Command) (domain.ExecutionResult, error) {
	if cmd.Name == "" {
		return domain.ExecutionResult{}, fmt.Errorf("%w: empty command", domain.ErrProbeTransport)
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.WaitDelay = waitDelay
	if len(e.env) > 0 {
		c.Env = append(c.Environ(), e.env...)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()

	result := domain.ExecutionResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, fmt.Errorf("%w: %s", domain.ErrProbeTimeout, cmd.Name)
		}
		return result, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("%w: %v", domain.ErrProbeTransport, err)
	}
	return result, nil
}

var _ ports.ProcessRunner = (*LocalExecutor)(nil)
