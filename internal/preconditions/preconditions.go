// Package preconditions verifies CLI inputs before any work starts.
package preconditions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateInputFile checks that the input STL file exists and is readable.
func ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".stl") {
		return fmt.Errorf("%s is not an STL file (must end in .stl)", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", path, err)
	}
	f.Close()
	return nil
}

// ValidateOutputPath checks that the output target's directory exists and is
// writable.
func ValidateOutputPath(path string) error {
	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory %s does not exist: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if info.Mode()&0200 == 0 {
		return fmt.Errorf("output directory %s is not writable", dir)
	}
	return nil
}
