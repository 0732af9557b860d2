package agent

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilterContextPaths(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	var warnings []string
	warn := func(msg string) { warnings = append(warnings, msg) }

	valid := FilterContextPaths([]string{dir, file, filepath.Join(dir, "missing")}, nil, warn)
	if len(valid) != 1 || valid[0] != dir {
		t.Errorf("Expected only the directory to survive, got %v", valid)
	}
	if len(warnings) != 2 {
		t.Errorf("Expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestFilterContextPathsExcludes(t *testing.T) {
	base := t.TempDir()
	keep := filepath.Join(base, "src")
	drop := filepath.Join(base, "node_modules")
	for _, d := range []string{keep, drop} {
		if err := os.Mkdir(d, 0755); err != nil {
			t.Fatalf("Failed to make dir: %v", err)
		}
	}

	var warnings []string
	valid := FilterContextPaths(
		[]string{keep, drop},
		[]string{"**/node_modules"},
		func(msg string) { warnings = append(warnings, msg) },
	)
	if len(valid) != 1 || valid[0] != keep {
		t.Errorf("Expected only %s to survive, got %v", keep, valid)
	}
	if len(warnings) != 1 {
		t.Errorf("Expected 1 warning, got %v", warnings)
	}
}

func TestFilterContextPathsBadPattern(t *testing.T) {
	dir := t.TempDir()
	var warnings []string
	valid := FilterContextPaths(
		[]string{dir},
		[]string{"[\\"},
		func(msg string) { warnings = append(warnings, msg) },
	)
	// An invalid pattern is reported but never drops a path by itself.
	if len(valid) != 1 {
		t.Errorf("Expected path to survive invalid pattern, got %v", valid)
	}
	if len(warnings) != 1 {
		t.Errorf("Expected a warning for the invalid pattern, got %v", warnings)
	}
}
