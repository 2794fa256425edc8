package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ccollicutt/frostlint/pkg/source"
)

// DefaultTimeout bounds a single checker invocation.
const DefaultTimeout = 30 * time.Second

// Runner produces the raw checker output for one source unit.
type Runner interface {
	Run(ctx context.Context, unit source.Unit, opts Options) ([]byte, error)
}

// ExecRunner runs the checker as a subprocess, feeding the unit on stdin
// and capturing stdout and stderr together.
type ExecRunner struct {
	resolver *Resolver
	timeout  time.Duration
}

// NewExecRunner creates a runner that uses resolver to find the checker.
func NewExecRunner(resolver *Resolver, timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{resolver: resolver, timeout: timeout}
}

// Run executes the checker on unit. A non-zero exit status is expected when
// the checker finds problems and is not treated as an error.
func (r *ExecRunner) Run(ctx context.Context, unit source.Unit, opts Options) ([]byte, error) {
	exe, err := r.resolver.Resolve()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, exe.Path, opts.Args()...) // #nosec G204 -- checker path comes from user config
	cmd.Stdin = strings.NewReader(unit.Code)
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return out.Bytes(), nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("checking %s: %w", unit.Path, ctx.Err())
		}
		return nil, fmt.Errorf("checking %s: %w", unit.Path, err)
	}
	return out.Bytes(), nil
}
