// Package checker runs the external frosted checker and resolves which
// executable and version to use.
package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// DefaultExecutable is the checker looked up on PATH by default.
const DefaultExecutable = "frosted"

// ErrNotFound is returned when the checker executable cannot be located.
var ErrNotFound = errors.New("checker executable not found")

const versionTimeout = 10 * time.Second

// Executable is a resolved checker binary.
type Executable struct {
	Path    string
	Version string
}

// Resolver locates the checker and reads its version at most once. The
// result, including a failure, is kept for the lifetime of the Resolver.
type Resolver struct {
	name        string
	versionArgs []string
	lookPath    func(string) (string, error)

	resolve func() (*Executable, error)
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithVersionArgs sets the arguments that make the checker print its
// version (default "--version").
func WithVersionArgs(args ...string) ResolverOption {
	return func(r *Resolver) {
		r.versionArgs = args
	}
}

// WithLookPath replaces exec.LookPath.
func WithLookPath(fn func(string) (string, error)) ResolverOption {
	return func(r *Resolver) {
		r.lookPath = fn
	}
}

// NewResolver creates a resolver for the named executable. The name may be
// a bare command looked up on PATH or a path.
func NewResolver(name string, opts ...ResolverOption) *Resolver {
	if name == "" {
		name = DefaultExecutable
	}
	r := &Resolver{
		name:        name,
		versionArgs: []string{"--version"},
		lookPath:    exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resolve = sync.OnceValues(r.lookup)
	return r
}

// Name returns the configured executable name.
func (r *Resolver) Name() string {
	return r.name
}

// Resolve returns the executable, performing the lookup on first use.
func (r *Resolver) Resolve() (*Executable, error) {
	return r.resolve()
}

func (r *Resolver) lookup() (*Executable, error) {
	path, err := r.lookPath(r.name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, r.name, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, path, r.versionArgs...) // #nosec G204 -- checker path comes from user config
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running %s %v: %w", path, r.versionArgs, err)
	}

	version, err := ParseVersion(out.String())
	if err != nil {
		return nil, fmt.Errorf("reading %s version: %w", path, err)
	}
	return &Executable{Path: path, Version: version}, nil
}
