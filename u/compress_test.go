package u

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/kjk/fileops/assert"
)

func TestCompressFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "rows.csv")
	d := strings.Repeat("r0|0\nr1|10\n", 500)
	assert.NoError(t, os.WriteFile(src, []byte(d), 0644))

	for _, name := range []string{"rows.csv.gz", "rows.csv.zst", "rows.csv.br", "copy.csv"} {
		dst := filepath.Join(dir, name)
		assert.NoError(t, CompressFile(dst, src))
		if CompressionFromPath(dst) != "" {
			assert.True(t, FileSize(dst) < int64(len(d)), name)
		}
		got, err := ReadFileMaybeCompressed(dst)
		assert.NoError(t, err)
		assert.Equal(t, d, string(got), name)
	}
}

func TestCompressionFromPath(t *testing.T) {
	tests := []string{
		"a.csv", "",
		"a.csv.GZ", "gz",
		"a.bz2", "bz2",
		"a.zstd", "zst",
		"a.zst", "zst",
		"a.br", "br",
	}
	for i := 0; i < len(tests); i += 2 {
		assert.Equal(t, tests[i+1], CompressionFromPath(tests[i]), tests[i])
	}
}

func TestBrCompressData(t *testing.T) {
	d := []byte(strings.Repeat("a|b\n", 100))
	c, err := BrCompressData(d, brotli.BestCompression)
	assert.NoError(t, err)
	path := filepath.Join(t.TempDir(), "a.csv.br")
	assert.NoError(t, os.WriteFile(path, c, 0644))
	got, err := ReadFileMaybeCompressed(path)
	assert.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestCompressFileOntoItself(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "rows.csv")
	assert.NoError(t, os.WriteFile(src, []byte("r0|0\n"), 0644))
	// compressed name resolving to the source
	link := filepath.Join(dir, "rows.csv.gz")
	assert.NoError(t, os.Symlink(src, link))

	err := CompressFile(link, src)
	assert.ErrorIs(t, err, ErrSameFile)
	got, err := os.ReadFile(src)
	assert.NoError(t, err)
	assert.Equal(t, "r0|0\n", string(got))
}

func TestCompressFileFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "rows.csv.zst")
	err := CompressFile(dst, filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
	files, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, files, 0)
}
