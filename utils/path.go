package utils

import (
	"path/filepath"
	"strings"
)

// IsPathWithin returns true if the given path is within any of the roots.
func IsPathWithin(path string, roots []string) bool {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = path
	}
	absPath, err := filepath.Abs(resolved)
	if err != nil {
		return false
	}
	for _, root := range roots {
		rResolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			rResolved = root
		}
		absRoot, err := filepath.Abs(rResolved)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absRoot, absPath)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// IsHidden reports whether a file or folder name is a dot entry such as
// .DS_Store or a sidecar cache directory.
func IsHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".") && name != ".."
}

// SamePath reports whether a and b resolve to the same absolute location.
func SamePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return false
	}
	if ra, err := filepath.EvalSymlinks(absA); err == nil {
		absA = ra
	}
	if rb, err := filepath.EvalSymlinks(absB); err == nil {
		absB = rb
	}
	return absA == absB
}
