// Package source reads the Python source units handed to the checker.
package source

import (
	"fmt"
	"io"
	"os"
)

// StdinName identifies a unit read from standard input.
const StdinName = "<stdin>"

// Unit is one piece of source text checked in a single invocation.
type Unit struct {
	// Path is the file the code came from, or StdinName.
	Path string
	// Code is the full source text.
	Code string
}

// ReadUnit loads a unit from disk.
func ReadUnit(path string) (Unit, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return Unit{}, fmt.Errorf("reading source file: %w", err)
	}
	return Unit{Path: path, Code: string(data)}, nil
}

// ReadUnits loads every path in order, stopping at the first failure.
func ReadUnits(paths []string) ([]Unit, error) {
	units := make([]Unit, 0, len(paths))
	for _, path := range paths {
		u, err := ReadUnit(path)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

// ReadFrom loads a unit from r under the given name.
func ReadFrom(r io.Reader, name string) (Unit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Unit{}, fmt.Errorf("reading %s: %w", name, err)
	}
	if name == "" {
		name = StdinName
	}
	return Unit{Path: name, Code: string(data)}, nil
}
