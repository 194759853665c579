package u

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/kjk/fileops/atomicfile"
)

// ErrSameFile is returned when copying a file onto itself
var ErrSameFile = errors.New("source and destination are the same file")

// PathExists returns true if path exists. Symlinks are followed.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FileExists returns true if path exists and is a regular file
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// FileSize gets file size, -1 if file doesn't exist.
// For a symlink it's the size of the target.
func FileSize(path string) int64 {
	st, err := os.Stat(path)
	if err == nil {
		return st.Size()
	}
	return -1
}

// CloseNoError is like io.Closer Close() but ignores an error
// use as: defer CloseNoError(f)
func CloseNoError(f io.Closer) {
	_ = f.Close()
}

// CountLines returns number of '\n' in the file plus one.
// The extra line accounts for the (possibly blank) line after the
// last newline so an empty file has 1 line and "a\nb\n" has 3.
// Reads the file in chunks, never all at once.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer CloseNoError(f)

	buf := make([]byte, 32*1024)
	n := 1
	for {
		nRead, err := f.Read(buf)
		n += bytes.Count(buf[:nRead], []byte{'\n'})
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// TrimTrailingNewlines removes all '\n' at the end of the file
func TrimTrailingNewlines(path string) error {
	d, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimRight(d, "\n")
	if len(trimmed) == len(d) {
		return nil
	}
	return os.WriteFile(path, trimmed, 0644)
}

// MakeEmptyFile creates a zero-byte file, over-writing existing file.
// Use MakeEmptyFileSafe if you don't want to overwrite data.
func MakeEmptyFile(path string) error {
	return os.WriteFile(path, nil, 0644)
}

// MakeEmptyFileSafe is like MakeEmptyFile but returns fs.ErrExist
// if the file already exists
func MakeEmptyFileSafe(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}

// MakeDirIfNotExists creates dirPath (and parents).
// A directory that doesn't exist yet must be given with a trailing '/'
// so that we don't accidentally create a directory named like a file.
func MakeDirIfNotExists(dirPath string) error {
	if IsDir(dirPath) {
		return nil
	}
	if dirPath == "" || !isPathSep(dirPath[len(dirPath)-1]) {
		return fmt.Errorf("%w: '%s'", ErrInvalidPath, dirPath)
	}
	return os.MkdirAll(dirPath, 0755)
}

// FilesInDir returns sorted names of files in dir with a given extension
func FilesInDir(dir string, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var res []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := IsExtension(e.Name(), ext)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, e.Name())
		}
	}
	sort.Strings(res)
	return res, nil
}

// MaxIndexInDir assumes files are named 1.ext, 2.ext etc. and returns
// the largest number. Returns 0 if there are no such files.
func MaxIndexInDir(dir string, ext string) (int, error) {
	if !IsDir(dir) {
		return 0, &fs.PathError{Op: "readdir", Path: dir, Err: fs.ErrNotExist}
	}
	names, err := FilesInDir(dir, ext)
	if err != nil {
		return 0, err
	}
	maxIdx := 0
	for _, name := range names {
		base, err := PathWithoutExtension(name)
		if err != nil {
			continue
		}
		n, err := strconv.Atoi(base)
		if err != nil || n < 0 {
			continue
		}
		maxIdx = max(maxIdx, n)
	}
	return maxIdx, nil
}

// ImmediateSubdirs returns sorted names of directories directly inside dir
func ImmediateSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var res []string
	for _, e := range entries {
		if e.IsDir() {
			res = append(res, e.Name())
		}
	}
	sort.Strings(res)
	return res, nil
}

// checkNotSameFile returns ErrSameFile if dst already exists and is
// the same file as src (including via a symlink)
func checkNotSameFile(dst string, src string) error {
	stDst, err := os.Stat(dst)
	if err != nil {
		return nil
	}
	stSrc, err := os.Stat(src)
	if err != nil {
		return err
	}
	if os.SameFile(stDst, stSrc) {
		return fmt.Errorf("%w: '%s' and '%s'", ErrSameFile, dst, src)
	}
	return nil
}

// CopyFile copies a file from src to dst atomically.
// It'll create destination directory if necessary.
func CopyFile(dst string, src string) error {
	if err := checkNotSameFile(dst, src); err != nil {
		return err
	}
	err := os.MkdirAll(filepath.Dir(dst), 0755)
	if err != nil {
		return err
	}
	fin, err := os.Open(src)
	if err != nil {
		return err
	}
	defer fin.Close()
	_, err = atomicfile.WriteFromReader(dst, fin)
	return err
}
