package source

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadUnit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.py")
	if err := os.WriteFile(path, []byte("import os\n"), 0644); err != nil {
		t.Fatal(err)
	}

	u, err := ReadUnit(path)
	if err != nil {
		t.Fatalf("ReadUnit() error = %v", err)
	}
	if u.Path != path || u.Code != "import os\n" {
		t.Errorf("ReadUnit() = %+v", u)
	}
}

func TestReadUnits_MissingFile(t *testing.T) {
	_, err := ReadUnits([]string{"/nonexistent/mod.py"})
	if err == nil {
		t.Error("ReadUnits() expected error for missing file")
	}
}

func TestReadFrom_DefaultName(t *testing.T) {
	u, err := ReadFrom(strings.NewReader("x = 1"), "")
	if err != nil {
		t.Fatalf("ReadFrom() error = %v", err)
	}
	if u.Path != StdinName {
		t.Errorf("Path = %q, want %q", u.Path, StdinName)
	}
}

func TestInlineIgnore(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		want   []string
		wantOK bool
	}{
		{
			name:   "none",
			code:   "import os\n",
			wantOK: false,
		},
		{
			name:   "after shebang",
			code:   "#!/usr/bin/env python\n# [frostlint ignore:E101,W201]\nimport os\n",
			want:   []string{"E101", "W201"},
			wantOK: true,
		},
		{
			name:   "blank lines in header",
			code:   "\n# -*- coding: utf-8 -*-\n\n#[frostlint ignore:I101]\n",
			want:   []string{"I101"},
			wantOK: true,
		},
		{
			name:   "empty list clears",
			code:   "# [frostlint ignore:]\n",
			want:   nil,
			wantOK: true,
		},
		{
			name:   "after code is ignored",
			code:   "import os\n# [frostlint ignore:E101]\n",
			wantOK: false,
		},
		{
			name:   "other settings",
			code:   "# [frostlint dialect:compat ignore:W101]\n",
			want:   []string{"W101"},
			wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := InlineIgnore(tt.code)
			if ok != tt.wantOK {
				t.Fatalf("InlineIgnore() ok = %v, want %v", ok, tt.wantOK)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("InlineIgnore() = %v, want %v", got, tt.want)
			}
		})
	}
}
