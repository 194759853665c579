package fileformat

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/kjk/fileops/assert"
	"github.com/kjk/fileops/csvstore"
	"github.com/kjk/fileops/require"
)

type settings struct {
	Name    string   `json:"name" yaml:"name"`
	Count   int      `json:"count" yaml:"count"`
	Columns []string `json:"columns" yaml:"columns"`
}

func captureLogs(lines *[]string) logr.Logger {
	return funcr.New(func(prefix, args string) {
		*lines = append(*lines, args)
	}, funcr.Options{Verbosity: 1})
}

func hasLine(lines []string, s string) bool {
	for _, l := range lines {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

func TestJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	f := NewJSON[settings](path)
	var logs []string
	f.SetLogger(captureLogs(&logs))
	assert.False(t, f.Exists())

	v := settings{Name: "a<b>&ü", Count: 3, Columns: []string{"x", "y"}}
	require.NoError(t, f.Save(v))
	assert.True(t, f.Exists())
	assert.True(t, hasLine(logs, "finished saving to file"))

	d, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(d)
	assert.Contains(t, s, "a<b>&ü")
	assert.Contains(t, s, "    \"count\": 3")

	got, err := f.Load()
	assert.NoError(t, err)
	assert.Equal(t, v, got)
	assert.True(t, hasLine(logs, "finished loading file"))
}

func TestJSONFileLoadErrors(t *testing.T) {
	dir := t.TempDir()
	f := NewJSON[settings](filepath.Join(dir, "missing.json"))
	var logs []string
	f.SetLogger(captureLogs(&logs))
	_, err := f.Load()
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.False(t, hasLine(logs, "failed loading file"))

	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	f = NewJSON[settings](path)
	f.SetLogger(captureLogs(&logs))
	_, err = f.Load()
	assert.Error(t, err)
	assert.True(t, hasLine(logs, "failed loading file"))
}

func TestYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	f := NewYAML[settings](path)
	v := settings{Name: "rows", Count: 2, Columns: []string{"a", "b"}}
	require.NoError(t, f.Save(v))
	d, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(d), "name: rows")

	got, err := f.Load()
	assert.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	f := NewText(path)
	require.NoError(t, f.Save("hello\nworld"))
	s, err := f.Load()
	assert.NoError(t, err)
	assert.Equal(t, "hello\nworld", s)

	require.NoError(t, f.SaveLines([]string{"a", "", "c"}))
	s, err = f.Load()
	assert.NoError(t, err)
	assert.Equal(t, "a\n\nc\n", s)
	lines, err := f.LoadLines()
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "", "c"}, lines)
}

func TestTouch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	f := NewText(path)
	_, err := f.IsEmpty()
	assert.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, f.Touch())
	empty, err := f.IsEmpty()
	assert.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, f.Save("x"))
	require.NoError(t, f.Touch())
	empty, err = f.IsEmpty()
	assert.NoError(t, err)
	assert.False(t, empty)
}

func TestCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	f, err := NewCSV(path, &csvstore.Options{Header: []string{"name", "value"}})
	require.NoError(t, err)

	_, err = f.Load()
	assert.ErrorIs(t, err, fs.ErrNotExist)

	rows := [][]string{{"a", "1"}, {"b", "2"}}
	require.NoError(t, f.Save(rows))
	got, err := f.Load()
	assert.NoError(t, err)
	assert.Equal(t, rows, got)
	n, err := f.Store.Len()
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = NewCSV(filepath.Join(t.TempDir(), "rows.txt"), nil)
	assert.ErrorIs(t, err, csvstore.ErrInvalidPath)
}

func TestTOONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.toon")
	f := NewTOON(path, []string{"name", "value"})
	require.NoError(t, f.Save([][]string{{"alpha", "1"}, {"beta", "2"}}))
	d, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(d)
	for _, exp := range []string{"rows", "name", "value", "alpha", "beta"} {
		assert.Contains(t, s, exp)
	}

	err = f.Save([][]string{{"only-one"}})
	assert.Error(t, err)

	err = NewTOON(filepath.Join(dir, "x.toon"), nil).Save(nil)
	assert.Error(t, err)
	assert.False(t, NewTOON(filepath.Join(dir, "x.toon"), nil).Exists())
}

func TestExportTOON(t *testing.T) {
	dir := t.TempDir()
	s, err := csvstore.New(filepath.Join(dir, "rows.csv"), &csvstore.Options{Header: []string{"id", "score"}})
	require.NoError(t, err)
	require.NoError(t, s.Write([][]string{{"r0", "10"}, {"r1", "20"}}))

	dst := filepath.Join(dir, "rows.toon")
	require.NoError(t, ExportTOON(s, dst))
	d, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(d), "score")
	assert.Contains(t, string(d), "r1")
}

func TestTextFileLongLines(t *testing.T) {
	f := NewText(filepath.Join(t.TempDir(), "long.txt"))
	long := strings.Repeat("x", 70*1024)
	lines := []string{"a", long, "", strings.Repeat("y", 1024*1024)}
	require.NoError(t, f.SaveLines(lines))
	got, err := f.LoadLines()
	assert.NoError(t, err)
	assert.Equal(t, lines, got)

	// last line without '\n'
	require.NoError(t, f.Save("a\n"+long))
	got, err = f.LoadLines()
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", long}, got)
}
