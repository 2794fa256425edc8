package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ccollicutt/frostlint/pkg/config"
	"github.com/ccollicutt/frostlint/pkg/detector"
	"github.com/ccollicutt/frostlint/pkg/linter"
	"github.com/ccollicutt/frostlint/pkg/output"
	"github.com/ccollicutt/frostlint/pkg/webhook"
)

// fakeFrosted mimics the checker's output for a handful of source shapes.
// The --ignore option is honored the way frosted does, by prefix.
const fakeFrosted = `#!/bin/sh
ignore=""
for arg in "$@"; do
  case "$arg" in
    --version) echo "frosted 1.4.1"; exit 0 ;;
    --ignore=*) ignore="${arg#--ignore=}" ;;
  esac
done
code=$(cat)
status=0
case "$code" in
  *"def ("*)
    printf '<stdin>:2: invalid syntax\ndef (\n    ^\n'
    exit 1
    ;;
  *"CRASH"*)
    echo "<stdin>: problem decoding source"
    exit 1
    ;;
esac
case "$code" in
  *"import os"*)
    case ",$ignore," in
      *,W201,*|*,W2,*|*,W,*) ;;
      *) echo "<stdin>:1:0:W201::'os' imported but unused"; status=1 ;;
    esac
    ;;
esac
case "$code" in
  *"x = 1"*"x = 2"*)
    echo "<stdin>:3:0:E101:x:redefinition of unused 'x' from line 2"
    status=1
    ;;
esac
exit $status
`

// project lays out a small Python tree plus a config that points at a
// fake checker, and returns the loaded config and the project root.
func project(t *testing.T, extraConfig string) (*config.Config, string) {
	t.Helper()
	root := t.TempDir()

	checkerPath := filepath.Join(t.TempDir(), "frosted")
	if err := os.WriteFile(checkerPath, []byte(fakeFrosted), 0755); err != nil {
		t.Fatalf("Failed to write fake checker: %v", err)
	}

	files := map[string]string{
		"app/__init__.py":    "",
		"app/main.py":        "import os\n\nprint('hi')\n",
		"app/models.py":      "\nx = 1\nx = 2\n",
		"app/broken.py":      "def (\n",
		"app/quiet.py":       "# [frostlint ignore:W201]\nimport os\n",
		"app/.cache/skip.py": "import os\n",
		"README.txt":         "not python\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfgPath := filepath.Join(root, ".frostlint.yaml")
	content := "checker:\n  executable: " + checkerPath + "\nsources:\n  - " + filepath.Join(root, "app") + "\n" + extraConfig
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(context.Background(), cfgPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg, root
}

func lint(t *testing.T, cfg *config.Config) *output.Report {
	t.Helper()
	result, err := linter.New(cfg).LintPaths(context.Background(), cfg.Sources)
	if err != nil {
		t.Fatalf("Lint failed: %v", err)
	}
	return output.NewReport(result, ".frostlint.yaml")
}

func unitByName(t *testing.T, report *output.Report, name string) linter.UnitResult {
	t.Helper()
	for _, u := range report.Results {
		if filepath.Base(u.Path) == name {
			return u
		}
	}
	t.Fatalf("no result for %s", name)
	return linter.UnitResult{}
}

func TestE2E_LintProject(t *testing.T) {
	cfg, _ := project(t, "")
	report := lint(t, cfg)

	if report.Summary.UnitsChecked != 5 {
		t.Errorf("UnitsChecked = %d, want 5 (hidden dirs and non-Python files skipped)", report.Summary.UnitsChecked)
	}
	if report.Summary.UnitsWithIssues != 3 {
		t.Errorf("UnitsWithIssues = %d, want 3", report.Summary.UnitsWithIssues)
	}
	if report.Summary.Errors != 2 || report.Summary.Warnings != 1 {
		t.Errorf("Errors/Warnings = %d/%d, want 2/1", report.Summary.Errors, report.Summary.Warnings)
	}

	main := unitByName(t, report, "main.py")
	if len(main.Records) != 1 || main.Records[0].Code != "W201" || main.Records[0].Line != 0 {
		t.Errorf("main.py records = %+v", main.Records)
	}

	models := unitByName(t, report, "models.py")
	if len(models.Records) != 1 {
		t.Fatalf("models.py records = %+v", models.Records)
	}
	r := models.Records[0]
	if r.Line != 2 || r.Near != "x" || r.Column != nil {
		t.Errorf("near token should clear the column: %+v", r)
	}

	broken := unitByName(t, report, "broken.py")
	if len(broken.Records) != 1 || broken.Records[0].Message != "invalid syntax" || broken.Records[0].Line != 1 {
		t.Errorf("broken.py records = %+v", broken.Records)
	}

	quiet := unitByName(t, report, "quiet.py")
	if len(quiet.Records) != 0 {
		t.Errorf("inline ignore should suppress W201: %+v", quiet.Records)
	}
}

func TestE2E_ConfiguredIgnore(t *testing.T) {
	cfg, _ := project(t, "ignore: [E1]\n")
	report := lint(t, cfg)

	models := unitByName(t, report, "models.py")
	if len(models.Records) != 0 {
		t.Errorf("E101 should be ignored by prefix: %+v", models.Records)
	}
	// Syntax errors carry no code and are never ignored.
	if report.Summary.Errors != 1 {
		t.Errorf("Errors = %d, want 1", report.Summary.Errors)
	}
}

func TestE2E_CheckerFailure(t *testing.T) {
	cfg, root := project(t, "")
	crash := filepath.Join(root, "app", "crash.py")
	if err := os.WriteFile(crash, []byte("CRASH\n"), 0644); err != nil {
		t.Fatal(err)
	}

	report := lint(t, cfg)

	u := unitByName(t, report, "crash.py")
	if !u.Failed {
		t.Errorf("crash.py should be marked failed: %+v", u)
	}
	if report.Summary.UnitsFailed != 1 {
		t.Errorf("UnitsFailed = %d, want 1", report.Summary.UnitsFailed)
	}
}

func TestE2E_SyntaxColumnDialects(t *testing.T) {
	tests := []struct {
		dialect    string
		wantColumn bool
	}{
		{"block", false},
		{"block-zero", true},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			cfg, _ := project(t, "dialect: "+tt.dialect+"\n")
			report := lint(t, cfg)

			broken := unitByName(t, report, "broken.py")
			if len(broken.Records) != 1 {
				t.Fatalf("records = %+v", broken.Records)
			}
			if got := broken.Records[0].Column != nil; got != tt.wantColumn {
				t.Errorf("has column = %v, want %v", got, tt.wantColumn)
			}
		})
	}
}

func TestE2E_TextOutput(t *testing.T) {
	cfg, _ := project(t, "")
	report := lint(t, cfg)

	formatter, err := output.New("text", output.FormatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := formatter.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"main.py:1:1: warning[W201]: 'os' imported but unused",
		"models.py:3: error[E101]: redefinition of unused 'x' from line 2 (near \"x\")",
		"broken.py:2: error: invalid syntax",
		"5 files checked, 3 with issues: 2 errors, 1 warning",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Text output missing %q:\n%s", want, out)
		}
	}
}

func TestE2E_JSONOutput(t *testing.T) {
	cfg, _ := project(t, "")
	report := lint(t, cfg)

	formatter, err := output.New("json", output.FormatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := formatter.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded struct {
		Summary  output.Summary  `json:"summary"`
		Metadata output.Metadata `json:"metadata"`
		Results  []struct {
			Path    string `json:"path"`
			Records []struct {
				Kind     string `json:"kind"`
				Severity string `json:"severity"`
			} `json:"records"`
		} `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if decoded.Summary != report.Summary {
		t.Errorf("Summary = %+v, want %+v", decoded.Summary, report.Summary)
	}
	if decoded.Metadata.CheckerVersion != "1.4.1" {
		t.Errorf("CheckerVersion = %q", decoded.Metadata.CheckerVersion)
	}

	kinds := map[string]int{}
	for _, r := range decoded.Results {
		for _, rec := range r.Records {
			kinds[rec.Kind]++
		}
	}
	if kinds["finding"] != 2 || kinds["syntax_error"] != 1 {
		t.Errorf("record kinds = %v", kinds)
	}
}

func TestE2E_DetectCapturedOutput(t *testing.T) {
	raw := "<stdin>:1:0:W201::'os' imported but unused\n" +
		"<stdin>:2: invalid syntax\ndef (\n    ^\n"

	captured := filepath.Join(t.TempDir(), "captured.txt")
	if err := os.WriteFile(captured, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := detector.New().DetectFromFile(context.Background(), captured)
	if err != nil {
		t.Fatalf("Detection failed: %v", err)
	}
	best := result.BestMatch()
	if best == nil || best.Dialect != "block" {
		t.Fatalf("best match = %+v", best)
	}
	if best.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1", best.Confidence)
	}

	// The line dialect cannot consume the echoed source and caret lines.
	last := result.Matches[len(result.Matches)-1]
	if last.Dialect != "line" {
		t.Errorf("worst match = %s, want line", last.Dialect)
	}
}

func TestE2E_Webhook_SendOnIssues(t *testing.T) {
	var mu sync.Mutex
	var payloads [][]byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		payloads = append(payloads, body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg, _ := project(t, "webhooks:\n  - name: ci\n    url: "+server.URL+"\n")
	report := lint(t, cfg)

	responses := webhook.NewClient().Dispatch(context.Background(), report, cfg.Webhooks)
	if len(responses) != 1 || !responses[0].Success() {
		t.Fatalf("responses = %+v", responses)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(payloads) != 1 {
		t.Fatalf("payloads = %d, want 1", len(payloads))
	}
	var decoded output.Report
	if err := json.Unmarshal(payloads[0], &decoded); err != nil {
		t.Fatalf("Invalid webhook payload: %v", err)
	}
	if decoded.Summary.TotalIssues != report.Summary.TotalIssues {
		t.Errorf("TotalIssues = %d, want %d", decoded.Summary.TotalIssues, report.Summary.TotalIssues)
	}
}

func TestE2E_Webhook_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg, _ := project(t, "webhooks:\n  - url: "+server.URL+"\n    trigger: always\n")
	report := lint(t, cfg)

	responses := webhook.NewClient().Dispatch(context.Background(), report, cfg.Webhooks)
	if len(responses) != 1 {
		t.Fatalf("responses = %d, want 1", len(responses))
	}
	if responses[0].Success() || responses[0].StatusCode != http.StatusInternalServerError {
		t.Errorf("response = %+v", responses[0])
	}
	if responses[0].Name != server.URL {
		t.Errorf("unnamed webhook should be named by URL, got %q", responses[0].Name)
	}
}
