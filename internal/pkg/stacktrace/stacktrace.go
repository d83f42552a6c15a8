// Package stacktrace trims runtime stack dumps to this module's frames.
package stacktrace

import "strings"

// InternalPaths returns the "internal/...go:line" locations found in a
// runtime/debug.Stack dump, innermost first.
func InternalPaths(stack []byte) []string {
	var paths []string
	for _, line := range strings.Split(string(stack), "\n") {
		line = strings.TrimSpace(line)

		_, rel, ok := strings.Cut(line, "/internal/")
		if !ok {
			continue
		}
		loc, _, _ := strings.Cut(rel, " ")
		if !strings.Contains(loc, ".go:") {
			continue
		}
		paths = append(paths, "internal/"+loc)
	}
	return paths
}
