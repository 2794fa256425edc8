package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PythonExt is the extension collected when a directory is expanded.
const PythonExt = ".py"

// ExpandGlobs expands file paths, directories and glob patterns into a
// deduplicated, sorted list of files. Directories are walked for Python
// files, skipping hidden directories. Patterns that match nothing are kept
// as literal paths so the caller reports a readable file-not-found error.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			add(pattern)
			continue
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || !info.IsDir() {
				add(match)
				continue
			}
			files, err := walkPython(match)
			if err != nil {
				return nil, fmt.Errorf("walking %s: %w", match, err)
			}
			for _, f := range files {
				add(f)
			}
		}
	}

	sort.Strings(result)
	return result, nil
}

func walkPython(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == PythonExt {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
