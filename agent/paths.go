package agent

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
)

// FilterContextPaths keeps only paths that exist, are directories, and do not
// match a configured exclude pattern. Rejected paths are reported through
// warn and dropped; an invalid path is never fatal.
func FilterContextPaths(paths []string, exclude []string, warn func(string)) []string {
	var valid []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			warn(fmt.Sprintf("%s is not a valid directory and will be skipped", p))
			continue
		}
		if pathExcluded(p, exclude, warn) {
			warn(fmt.Sprintf("%s matches an exclude pattern and will be skipped", p))
			continue
		}
		valid = append(valid, p)
	}
	return valid
}

func pathExcluded(path string, patterns []string, warn func(string)) bool {
	for _, pattern := range patterns {
		match, err := doublestar.PathMatch(pattern, path)
		if err != nil {
			warn(fmt.Sprintf("invalid exclude pattern '%s': %v", pattern, err))
			continue
		}
		if match {
			return true
		}
	}
	return false
}
