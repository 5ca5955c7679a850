// Package stacktrace trims panic stacks down to the frames of this module.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame
// under an internal/ directory, in stack order.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.Lines(string(stack)) {
		// file lines are tab indented: "\t/abs/path/file.go:42 +0x1d"
		if !strings.HasPrefix(line, "\t") {
			continue
		}
		loc, _, _ := strings.Cut(strings.TrimSpace(line), " ")
		idx := strings.Index(loc, marker)
		if idx < 0 || !strings.Contains(loc, ".go:") {
			continue
		}
		paths = append(paths, loc[idx+1:])
	}
	return paths
}
