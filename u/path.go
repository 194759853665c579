package u

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrInvalidPath is returned for paths that could never point to
	// a file, e.g. a file name without .extension
	ErrInvalidPath = errors.New("invalid path")
	// ErrInvalidExtension is returned when the extension to check
	// against is malformed e.g. "csv" or "."
	ErrInvalidExtension = errors.New("invalid extension")
)

func isPathSep(c byte) bool {
	return c == '/' || c == '\\'
}

// lastElem returns the part of path after the last separator
func lastElem(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if isPathSep(path[i]) {
			return path[i+1:]
		}
	}
	return path
}

// IsDir returns true if path exists and is a directory
func IsDir(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

// IsExtension returns true if path ends with ext (e.g. ".csv").
// Only checks the string, not that the file exists.
// A path that is nothing but the extension (".csv") is not a match.
func IsExtension(path string, ext string) (bool, error) {
	if len(ext) < 2 || !strings.Contains(ext, ".") {
		return false, fmt.Errorf("%w: '%s'", ErrInvalidExtension, ext)
	}
	if len(path) <= len(ext) {
		return false, nil
	}
	return strings.HasSuffix(path, ext), nil
}

// extDotIndex returns index of the dot that starts the extension
// of the last path element
func extDotIndex(path string) (int, error) {
	name := lastElem(path)
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return -1, fmt.Errorf("%w: '%s'", ErrInvalidPath, path)
	}
	if idx > 0 && name[idx-1] == '.' {
		// "foo..csv"
		return -1, fmt.Errorf("%w: '%s'", ErrInvalidPath, path)
	}
	return len(path) - len(name) + idx, nil
}

// PathWithoutExtension returns "dir/foo" for "dir/foo.csv"
// Does not read or write the file in any way.
func PathWithoutExtension(path string) (string, error) {
	idx, err := extDotIndex(path)
	if err != nil {
		return "", err
	}
	return path[:idx], nil
}

// PathExtension returns ".csv" for "dir/foo.csv"
func PathExtension(path string) (string, error) {
	idx, err := extDotIndex(path)
	if err != nil {
		return "", err
	}
	return path[idx:], nil
}

// ParentPath strips n trailing elements from path:
// ParentPath("a/b/c.csv", 1) => "a/b", ParentPath("a/b/c.csv", 2) => "a"
// A path without a separator is returned unchanged.
func ParentPath(path string, n int) (string, error) {
	if len(path) <= 1 {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidPath, path)
	}
	res := path
	for ; n > 0; n-- {
		idx := strings.LastIndexAny(res, `/\`)
		if idx < 0 {
			break
		}
		res = res[:idx]
		if len(res) <= 1 && n > 1 {
			return "", fmt.Errorf("%w: '%s'", ErrInvalidPath, path)
		}
	}
	return res, nil
}

// ParentDirName returns the name of the immediate parent directory:
// ParentDirName("a/b/c.csv") => "b"
// For a path with a single separator it returns everything before it.
func ParentDirName(path string) (string, error) {
	if len(path) <= 1 {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidPath, path)
	}
	parent, err := ParentPath(path, 1)
	if err != nil {
		return "", err
	}
	if parent == path {
		return path, nil
	}
	return lastElem(parent), nil
}
