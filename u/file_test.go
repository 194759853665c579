package u

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kjk/fileops/assert"
)

// makeBlankFile writes nonBlank lines of "test" (the last one without '\n')
// followed by blank newlines
func makeBlankFile(t *testing.T, path string, nonBlank int, blank int) {
	t.Helper()
	var sb strings.Builder
	if nonBlank == 0 {
		sb.WriteString(strings.Repeat("\n", max(blank-1, 0)))
	} else {
		sb.WriteString(strings.Repeat("test\n", nonBlank-1))
		if nonBlank > 1 {
			sb.WriteString("test")
		}
		sb.WriteString(strings.Repeat("\n", blank))
	}
	err := os.WriteFile(path, []byte(sb.String()), 0644)
	assert.NoError(t, err)
}

func TestCountLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	tests := []struct {
		nonBlank int
		blank    int
		trim     bool
		exp      int
	}{
		{10, 2, false, 12},
		{10, 1, false, 11},
		{10, 0, true, 10},
		{1, 2, false, 3},
		{1, 1, false, 2},
		{0, 1, false, 1},
		{0, 0, false, 1},
	}
	for _, tc := range tests {
		makeBlankFile(t, path, tc.nonBlank, tc.blank)
		if tc.trim {
			assert.NoError(t, TrimTrailingNewlines(path))
		}
		n, err := CountLines(path)
		assert.NoError(t, err)
		assert.Equal(t, tc.exp, n, "%+v", tc)
	}

	_, err := CountLines(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCountLinesLargeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	d := strings.Repeat("0|1|2|3|4|5|6|7\n", 10000)
	assert.NoError(t, os.WriteFile(path, []byte(d), 0644))
	n, err := CountLines(path)
	assert.NoError(t, err)
	assert.Equal(t, 10001, n)
}

func TestTrimTrailingNewlines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	tests := []struct {
		nonBlank int
		blank    int
		exp      int
	}{
		{10, 2, 10},
		{10, 1, 10},
		{10, 0, 10},
		{1, 2, 1},
		{1, 1, 1},
		{1, 0, 1},
		{0, 2, 1},
		{0, 1, 1},
		{0, 0, 1},
	}
	for _, tc := range tests {
		makeBlankFile(t, path, tc.nonBlank, tc.blank)
		assert.NoError(t, TrimTrailingNewlines(path))
		n, err := CountLines(path)
		assert.NoError(t, err)
		assert.Equal(t, tc.exp, n, "%+v", tc)
	}

	makeBlankFile(t, path, 10, 5)
	assert.NoError(t, TrimTrailingNewlines(path))
	assert.NoError(t, TrimTrailingNewlines(path))
	n, err := CountLines(path)
	assert.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestMakeEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.csv")
	assert.False(t, FileExists(path))
	assert.NoError(t, MakeEmptyFileSafe(path))
	assert.Equal(t, int64(0), FileSize(path))

	err := MakeEmptyFileSafe(path)
	assert.ErrorIs(t, err, fs.ErrExist)

	assert.NoError(t, os.WriteFile(path, []byte("data\n"), 0644))
	assert.NoError(t, MakeEmptyFile(path))
	assert.Equal(t, int64(0), FileSize(path))
	assert.Equal(t, int64(-1), FileSize(filepath.Join(dir, "missing.csv")))
}

func TestMakeDirIfNotExists(t *testing.T) {
	dir := t.TempDir()
	err := MakeDirIfNotExists(filepath.Join(dir, "new"))
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.False(t, IsDir(filepath.Join(dir, "new")))

	assert.NoError(t, MakeDirIfNotExists(filepath.Join(dir, "new", "sub")+"/"))
	assert.True(t, IsDir(filepath.Join(dir, "new", "sub")))
	// existing directory doesn't need a trailing separator
	assert.NoError(t, MakeDirIfNotExists(filepath.Join(dir, "new")))
}

func TestDirectoryListing(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1.txt", "3.txt", "test_file1.txt", "2.csv", "10.csv", "x.csv"} {
		assert.NoError(t, MakeEmptyFile(filepath.Join(dir, name)))
	}
	for _, name := range []string{"sub_b", "sub_a"} {
		assert.NoError(t, os.Mkdir(filepath.Join(dir, name), 0755))
	}
	// directory named like a file is not a file
	assert.NoError(t, os.Mkdir(filepath.Join(dir, "99.txt"), 0755))

	files, err := FilesInDir(dir, ".txt")
	assert.NoError(t, err)
	assert.Equal(t, []string{"1.txt", "3.txt", "test_file1.txt"}, files)

	n, err := MaxIndexInDir(dir, ".txt")
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = MaxIndexInDir(dir, ".csv")
	assert.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = MaxIndexInDir(dir, ".json")
	assert.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = MaxIndexInDir(filepath.Join(dir, "missing"), ".txt")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	dirs, err := ImmediateSubdirs(dir)
	assert.NoError(t, err)
	assert.Equal(t, []string{"99.txt", "sub_a", "sub_b"}, dirs)
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.csv")
	assert.NoError(t, os.WriteFile(src, []byte("a|b\n"), 0644))
	dst := filepath.Join(dir, "sub", "b.csv")
	assert.NoError(t, CopyFile(dst, src))
	d, err := os.ReadFile(dst)
	assert.NoError(t, err)
	assert.Equal(t, "a|b\n", string(d))
}

func TestCopyFileOntoItself(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.csv")
	assert.NoError(t, os.WriteFile(src, []byte("a|b\n"), 0644))
	link := filepath.Join(dir, "link.csv")
	assert.NoError(t, os.Symlink(src, link))

	for _, dst := range []string{src, link} {
		err := CopyFile(dst, src)
		assert.ErrorIs(t, err, ErrSameFile, dst)
	}
	d, err := os.ReadFile(src)
	assert.NoError(t, err)
	assert.Equal(t, "a|b\n", string(d))
}

func TestFileSizeFollowsSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "empty.csv")
	assert.NoError(t, MakeEmptyFile(target))
	link := filepath.Join(dir, "link.csv")
	assert.NoError(t, os.Symlink(target, link))
	assert.Equal(t, int64(0), FileSize(link))
	assert.True(t, FileExists(link))
	assert.True(t, PathExists(link))

	assert.NoError(t, os.Remove(target))
	assert.Equal(t, int64(-1), FileSize(link))
	assert.False(t, PathExists(link))
}
