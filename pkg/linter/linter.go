package linter

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ccollicutt/frostlint/pkg/checker"
	"github.com/ccollicutt/frostlint/pkg/config"
	"github.com/ccollicutt/frostlint/pkg/diagnostic"
	"github.com/ccollicutt/frostlint/pkg/source"
)

// VersionResolver yields the checker executable and its version.
type VersionResolver interface {
	Resolve() (*checker.Executable, error)
}

// Linter runs the checker over source units according to a configuration.
type Linter struct {
	cfg    *config.Config
	parser *diagnostic.Parser

	resolver VersionResolver
	runner   checker.Runner
	logger   *slog.Logger

	// Options
	jobs        int
	debug       bool
	selectCodes []string // nil means all codes
}

// Option configures linter behavior.
type Option func(*Linter)

// WithResolver replaces the checker resolver.
func WithResolver(r VersionResolver) Option {
	return func(l *Linter) {
		l.resolver = r
	}
}

// WithRunner replaces the subprocess runner.
func WithRunner(r checker.Runner) Option {
	return func(l *Linter) {
		l.runner = r
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Linter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithJobs bounds the number of concurrent checker invocations.
func WithJobs(n int) Option {
	return func(l *Linter) {
		if n > 0 {
			l.jobs = n
		}
	}
}

// WithDebug logs the resolved checker options of every invocation.
func WithDebug(v bool) Option {
	return func(l *Linter) {
		l.debug = l.debug || v
	}
}

// WithSelect limits reported diagnostics to codes with the given prefixes.
// Syntax errors and checker failures are always reported.
func WithSelect(codes []string) Option {
	return func(l *Linter) {
		if len(codes) > 0 {
			l.selectCodes = codes
		}
	}
}

// New creates a linter from a validated configuration.
func New(cfg *config.Config, opts ...Option) *Linter {
	l := &Linter{
		cfg:    cfg,
		parser: diagnostic.NewParser(cfg.Policy()),
		logger: slog.Default(),
		jobs:   cfg.Jobs,
		debug:  cfg.Debug,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.resolver == nil {
		l.resolver = checker.NewResolver(cfg.Checker.Executable)
	}
	if l.runner == nil {
		r, ok := l.resolver.(*checker.Resolver)
		if !ok {
			r = checker.NewResolver(cfg.Checker.Executable)
		}
		l.runner = checker.NewExecRunner(r, cfg.Checker.Timeout)
	}
	if l.jobs <= 0 {
		l.jobs = runtime.GOMAXPROCS(0)
	}
	return l
}

// CheckVersion resolves the checker and applies the configured version
// requirement. Nothing is parsed until this succeeds.
func (l *Linter) CheckVersion() (*checker.Executable, error) {
	exe, err := l.resolver.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolving checker: %w", err)
	}
	if err := l.cfg.Requirement().Check(exe.Version); err != nil {
		return nil, err
	}
	return exe, nil
}

// LintPaths expands patterns into files and lints them.
func (l *Linter) LintPaths(ctx context.Context, patterns []string) (*Result, error) {
	files, err := source.ExpandGlobs(patterns)
	if err != nil {
		return nil, fmt.Errorf("expanding sources: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files matched patterns: %v", patterns)
	}
	units, err := source.ReadUnits(files)
	if err != nil {
		return nil, err
	}
	return l.Lint(ctx, units)
}

// Lint checks every unit, running up to the configured number of checker
// processes at once. Results keep the order of units.
func (l *Linter) Lint(ctx context.Context, units []source.Unit) (*Result, error) {
	result := &Result{
		Units: make([]UnitResult, len(units)),
		Metadata: Metadata{
			Dialect:   l.cfg.Dialect,
			StartTime: time.Now(),
		},
	}

	exe, err := l.CheckVersion()
	if err != nil {
		return nil, err
	}
	result.Checker = *exe

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(l.jobs, max(len(units), 1)))

	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			unitResult, err := l.lintUnit(gctx, unit)
			if err != nil {
				return err
			}
			result.Units[i] = *unitResult
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Metadata.EndTime = time.Now()
	return result, nil
}

func (l *Linter) lintUnit(ctx context.Context, unit source.Unit) (*UnitResult, error) {
	opts := l.cfg.CheckerOptions()
	if inline, ok := source.InlineIgnore(unit.Code); ok {
		opts.Ignore = inline
	}

	if l.debug {
		l.logger.Debug("checker options", "unit", unit.Path, "options", opts.Resolved())
	}

	out, err := l.runner.Run(ctx, unit, opts)
	if err != nil {
		return nil, err
	}

	records := l.parser.Parse(string(out), l.cfg.LineBase, l.cfg.ColumnBase)
	records = diagnostic.Filter(records, opts.Ignore)
	records = l.selected(records)

	if l.debug {
		l.logger.Debug("checker output parsed", "unit", unit.Path, "records", len(records))
	}

	return &UnitResult{
		Path:    unit.Path,
		Records: records,
		Failed:  diagnostic.HasOnlyUnexpected(records),
		Ignore:  opts.Ignore,
	}, nil
}

func (l *Linter) selected(records []diagnostic.Record) []diagnostic.Record {
	if l.selectCodes == nil {
		return records
	}
	kept := records[:0:0]
	for _, r := range records {
		if r.Code == "" || hasAnyPrefix(r.Code, l.selectCodes) {
			kept = append(kept, r)
		}
	}
	return kept
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
