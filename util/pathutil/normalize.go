package pathutil

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizeForLookup returns an absolute, symlink-resolved form of path that
// can be compared with ==. Paths that do not exist yet are only made absolute.
// On case-insensitive systems the result is lowercased.
func NormalizeForLookup(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		resolved = abs
	}
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		return strings.ToLower(resolved), nil
	}
	return resolved, nil
}

// ComparePaths reports whether path1 and path2 name the same location.
func ComparePaths(path1, path2 string) (bool, error) {
	norm1, err := NormalizeForLookup(path1)
	if err != nil {
		return false, err
	}
	norm2, err := NormalizeForLookup(path2)
	if err != nil {
		return false, err
	}
	return norm1 == norm2, nil
}
