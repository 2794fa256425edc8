// Package detector infers the parser dialect that best fits a sample of
// checker output.
package detector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/frostlint/pkg/config"
	"github.com/ccollicutt/frostlint/pkg/diagnostic"
)

// DefaultSampleSize is the number of output lines examined.
const DefaultSampleSize = 500

// DetectionResult holds the result of analyzing checker output.
type DetectionResult struct {
	Matches       []DialectMatch // sorted by confidence descending
	SampledLines  int            // non-blank lines sampled
	AmbiguityNote string         // set when the output cannot separate the top dialects
}

// DialectMatch is one dialect's score against the sample.
type DialectMatch struct {
	Dialect    string
	Policy     diagnostic.Policy
	Confidence float64 // share of non-blank lines consumed by a record
	Records    int     // records produced
	Unexpected int     // records that fell back to the failure shape
	Sample     *diagnostic.Record
}

// Detector scores the known dialects against sample output.
type Detector struct {
	dialects   []string
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample.
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// New creates a Detector over every registered dialect.
func New(opts ...Option) *Detector {
	d := &Detector{
		dialects:   diagnostic.Dialects(),
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples a file of captured checker output.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return d.DetectFromReader(ctx, file)
}

// DetectFromReader samples up to the configured number of lines from r.
func (d *Detector) DetectFromReader(ctx context.Context, r io.Reader) (*DetectionResult, error) {
	var b strings.Builder
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() && n < d.sampleSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
		n++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return d.DetectFromOutput(b.String()), nil
}

// DetectFromOutput scores every dialect against raw checker output.
func (d *Detector) DetectFromOutput(raw string) *DetectionResult {
	result := &DetectionResult{}

	for _, name := range d.dialects {
		policy, err := diagnostic.LookupDialect(name)
		if err != nil {
			continue
		}
		p := diagnostic.NewParser(policy)
		matched, total := p.Coverage(raw)
		result.SampledLines = total
		if total == 0 {
			continue
		}

		records := p.Parse(raw, config.DefaultLineBase, config.DefaultColumnBase)
		m := DialectMatch{
			Dialect:    name,
			Policy:     policy,
			Confidence: float64(matched) / float64(total),
			Records:    len(records),
		}
		for i := range records {
			if records[i].Kind == diagnostic.KindUnexpected {
				m.Unexpected++
			} else if m.Sample == nil {
				m.Sample = &records[i]
			}
		}
		result.Matches = append(result.Matches, m)
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Unexpected != b.Unexpected {
			return a.Unexpected < b.Unexpected
		}
		// The default dialect wins ties.
		if (a.Dialect == diagnostic.DefaultDialect) != (b.Dialect == diagnostic.DefaultDialect) {
			return a.Dialect == diagnostic.DefaultDialect
		}
		return a.Dialect < b.Dialect
	})

	if tied := result.tied(); len(tied) > 1 {
		result.AmbiguityNote = fmt.Sprintf(
			"Output fits %s equally well. They differ only in the syntax error "+
				"column default and code overrides, which sample output cannot show.",
			strings.Join(tied, ", "))
	}
	return result
}

func (r *DetectionResult) tied() []string {
	if len(r.Matches) == 0 {
		return nil
	}
	best := r.Matches[0]
	var names []string
	for _, m := range r.Matches {
		if m.Confidence == best.Confidence && m.Unexpected == best.Unexpected {
			names = append(names, m.Dialect)
		}
	}
	return names
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *DialectMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if some dialect consumed at least one line.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0 && r.Matches[0].Confidence > 0
}

// StarterConfig renders a configuration file selecting dialect.
func StarterConfig(dialect string) ([]byte, error) {
	if _, err := diagnostic.LookupDialect(dialect); err != nil {
		return nil, err
	}
	cfg := config.DefaultConfig()
	cfg.Dialect = dialect
	cfg.Sources = []string{"."}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return append([]byte("# Generated by frostlint detect\n"), data...), nil
}
