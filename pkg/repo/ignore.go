package repo

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreChecker determines if a path should be ignored.
type IgnoreChecker struct {
	patterns []string
}

// NewIgnoreChecker creates an IgnoreChecker for the given repository root.
// It always ignores .grit/ and .git/. If a .gritignore file exists in
// repoRoot, its patterns are applied on top.
func NewIgnoreChecker(repoRoot string) *IgnoreChecker {
	ic := &IgnoreChecker{patterns: []string{".grit", ".git"}}

	f, err := os.Open(filepath.Join(repoRoot, ".gritignore"))
	if err != nil {
		return ic
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ic.patterns = append(ic.patterns, strings.TrimSuffix(line, "/"))
	}
	return ic
}

// IsIgnored reports whether the repo-relative (forward-slash) path matches
// any ignore pattern. A pattern matches the full path, the base name, or
// any single path segment, so "build" also ignores "build/out.bin".
func (ic *IgnoreChecker) IsIgnored(rel string) bool {
	segments := strings.Split(rel, "/")

	for _, pattern := range ic.patterns {
		if ok, err := path.Match(pattern, rel); err == nil && ok {
			return true
		}
		if strings.Contains(pattern, "/") {
			continue
		}
		for _, seg := range segments {
			if ok, err := path.Match(pattern, seg); err == nil && ok {
				return true
			}
		}
	}
	return false
}
