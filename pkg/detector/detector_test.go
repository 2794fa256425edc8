package detector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/frostlint/pkg/config"
	"github.com/ccollicutt/frostlint/pkg/diagnostic"
)

const syntaxBlock = "mod.py:3: invalid syntax\n    x =\n        ^\n"

func TestDetector_DetectFromOutput_Findings(t *testing.T) {
	raw := "<stdin>:3:1:E101::redefinition of x\n<stdin>:5:2:W201::unused import os\n"

	result := New().DetectFromOutput(raw)
	if !result.HasMatch() {
		t.Fatal("Expected to detect a dialect")
	}

	best := result.BestMatch()
	if best.Dialect != diagnostic.DefaultDialect {
		t.Errorf("Expected %s, got %s", diagnostic.DefaultDialect, best.Dialect)
	}
	if best.Confidence != 1.0 {
		t.Errorf("Expected 100%% confidence, got %.1f%%", best.Confidence*100)
	}
	if best.Records != 2 {
		t.Errorf("Expected 2 records, got %d", best.Records)
	}
	if best.Sample == nil || best.Sample.Code != "E101" {
		t.Errorf("Expected E101 sample, got %+v", best.Sample)
	}
	if len(result.Matches) != len(diagnostic.Dialects()) {
		t.Errorf("Expected every dialect scored, got %d", len(result.Matches))
	}
	if result.AmbiguityNote == "" {
		t.Error("Expected an ambiguity note when all dialects fit equally")
	}
}

func TestDetector_DetectFromOutput_ContextLinesRankLineLast(t *testing.T) {
	result := New().DetectFromOutput(syntaxBlock)

	last := result.Matches[len(result.Matches)-1]
	if last.Dialect != diagnostic.DialectLine {
		t.Errorf("Expected line dialect ranked last, got %s", last.Dialect)
	}
	if last.Confidence >= 1.0 {
		t.Errorf("line dialect should not consume context lines, confidence %.2f", last.Confidence)
	}

	best := result.BestMatch()
	if best.Confidence != 1.0 {
		t.Errorf("Expected multiline dialect to consume all lines, got %.2f", best.Confidence)
	}
	if best.Dialect != diagnostic.DefaultDialect {
		t.Errorf("Expected default dialect to win ties, got %s", best.Dialect)
	}
	if strings.Contains(result.AmbiguityNote, diagnostic.DialectLine) {
		t.Errorf("line dialect should not be listed as tied: %s", result.AmbiguityNote)
	}
}

func TestDetector_DetectFromOutput_NoMatch(t *testing.T) {
	result := New().DetectFromOutput("nothing to see here\nat all\n")
	if result.HasMatch() {
		t.Errorf("Expected no match, got %s", result.BestMatch().Dialect)
	}
	if result.SampledLines != 2 {
		t.Errorf("Expected 2 sampled lines, got %d", result.SampledLines)
	}
}

func TestDetector_DetectFromOutput_EmptyInput(t *testing.T) {
	result := New().DetectFromOutput("")
	if result.HasMatch() {
		t.Error("Expected no match for empty input")
	}
	if result.BestMatch() != nil {
		t.Error("Expected nil BestMatch for empty input")
	}
}

func TestDetector_WithSampleSize(t *testing.T) {
	d := New(WithSampleSize(1))
	if d.sampleSize != 1 {
		t.Errorf("Expected sample size 1, got %d", d.sampleSize)
	}

	result, err := d.DetectFromReader(context.Background(), strings.NewReader(syntaxBlock))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if result.SampledLines != 1 {
		t.Errorf("Expected 1 sampled line, got %d", result.SampledLines)
	}
}

func TestDetector_WithSampleSize_Invalid(t *testing.T) {
	d := New(WithSampleSize(-5))
	if d.sampleSize != DefaultSampleSize {
		t.Errorf("Expected default sample size, got %d", d.sampleSize)
	}
}

func TestDetector_DetectFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frosted.out")
	if err := os.WriteFile(path, []byte(syntaxBlock), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := New().DetectFromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("DetectFromFile() error = %v", err)
	}
	if !result.HasMatch() {
		t.Fatal("Expected to detect a dialect")
	}
	if result.BestMatch().Sample.Kind != diagnostic.KindSyntaxError {
		t.Errorf("Expected syntax error sample, got %v", result.BestMatch().Sample.Kind)
	}
}

func TestDetector_DetectFromFile_NotFound(t *testing.T) {
	if _, err := New().DetectFromFile(context.Background(), "/nonexistent/out.txt"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestStarterConfig(t *testing.T) {
	data, err := StarterConfig(diagnostic.DialectCompat)
	if err != nil {
		t.Fatalf("StarterConfig() error = %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("starter config is not valid YAML: %v", err)
	}
	if cfg.Dialect != diagnostic.DialectCompat {
		t.Errorf("Dialect = %q, want %q", cfg.Dialect, diagnostic.DialectCompat)
	}
	if err := config.Validate(&cfg); err != nil {
		t.Errorf("starter config does not validate: %v", err)
	}
}

func TestStarterConfig_UnknownDialect(t *testing.T) {
	if _, err := StarterConfig("nope"); err == nil {
		t.Error("Expected error for unknown dialect")
	}
}
