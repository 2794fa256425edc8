package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x = 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExpandGlobs_SingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "mod.py")
	file := filepath.Join(dir, "mod.py")

	result, err := ExpandGlobs([]string{file})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 1 || result[0] != file {
		t.Errorf("ExpandGlobs() = %v, want [%s]", result, file)
	}
}

func TestExpandGlobs_GlobPattern(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.py", "b.py", "c.txt")

	result, err := ExpandGlobs([]string{filepath.Join(dir, "*.py")})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 2 {
		t.Errorf("ExpandGlobs() returned %d files, want 2", len(result))
	}
}

func TestExpandGlobs_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.py", "pkg/b.py", "pkg/notes.txt", ".venv/lib.py")

	result, err := ExpandGlobs([]string{dir})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a.py"), filepath.Join(dir, "pkg", "b.py")}
	if len(result) != len(want) {
		t.Fatalf("ExpandGlobs() = %v, want %v", result, want)
	}
	for i := range want {
		if result[i] != want[i] {
			t.Errorf("result[%d] = %s, want %s", i, result[i], want[i])
		}
	}
}

func TestExpandGlobs_NoMatch(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "*.nonexistent")

	result, err := ExpandGlobs([]string{pattern})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 1 || result[0] != pattern {
		t.Errorf("ExpandGlobs() = %v, want [%s]", result, pattern)
	}
}

func TestExpandGlobs_Deduplication(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "mod.py")
	file := filepath.Join(dir, "mod.py")

	result, err := ExpandGlobs([]string{file, filepath.Join(dir, "*.py"), dir})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 1 {
		t.Errorf("ExpandGlobs() returned %d files, want 1 (deduplicated)", len(result))
	}
}

func TestExpandGlobs_InvalidPattern(t *testing.T) {
	_, err := ExpandGlobs([]string{"[invalid"})
	if err == nil {
		t.Error("ExpandGlobs() expected error for invalid pattern")
	}
}

func TestExpandGlobs_Sorted(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "c.py", "a.py", "b.py")

	result, err := ExpandGlobs([]string{filepath.Join(dir, "*.py")})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	for i := 1; i < len(result); i++ {
		if result[i-1] > result[i] {
			t.Errorf("ExpandGlobs() result not sorted: %v", result)
			break
		}
	}
}

func TestExpandGlobs_EmptyInput(t *testing.T) {
	result, err := ExpandGlobs([]string{})
	if err != nil {
		t.Fatalf("ExpandGlobs() error = %v", err)
	}
	if len(result) != 0 {
		t.Errorf("ExpandGlobs([]) = %v, want empty", result)
	}
}
