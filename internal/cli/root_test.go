package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/frostlint/internal/cli/plugins"
)

func TestNewRootCommand_RegistersCommands(t *testing.T) {
	root := NewRootCommand()

	for _, name := range []string{"lint", "parse", "detect", "diagnose", "validate", "watch", "version"} {
		if !isBuiltinCommand(root, name) {
			t.Errorf("command %q not registered", name)
		}
	}
	if !isBuiltinCommand(root, "help") {
		t.Error("help should count as built-in")
	}
}

func TestPluginCandidate(t *testing.T) {
	root := NewRootCommand()

	tests := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"--help"}, ""},
		{[]string{"lint", "x.py"}, ""},
		{[]string{"sarif", "--out", "r.sarif"}, "sarif"},
	}

	for _, tt := range tests {
		if got := pluginCandidate(root, tt.args); got != tt.want {
			t.Errorf("pluginCandidate(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"version"}, &stdout, &stderr)

	if code != 0 {
		t.Errorf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "frostlint ") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Setenv(plugins.EnvPluginPath, t.TempDir())
	t.Setenv("PATH", t.TempDir())

	var stdout, stderr bytes.Buffer
	code := Run([]string{"no-such-command"}, &stdout, &stderr)

	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "no-such-command") {
		t.Errorf("stderr should name the command: %q", stderr.String())
	}
}

func TestRun_ConfigError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"lint", "-c", "/nonexistent/.frostlint.yaml", "x.py"}, &stdout, &stderr)

	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.HasPrefix(stderr.String(), "Error: loading config") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRun_DispatchesPlugin(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(plugins.EnvPluginPath, dir)

	script := "#!/bin/sh\nexit 3\n"
	if err := os.WriteFile(filepath.Join(dir, plugins.Prefix+"exitthree"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := Run([]string{"exitthree"}, &stdout, &stderr); code != 3 {
		t.Errorf("exit code = %d, want plugin's 3", code)
	}
}
