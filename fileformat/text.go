package fileformat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kjk/fileops/atomicfile"
	"github.com/kjk/fileops/csvstore"
	"github.com/toon-format/toon-go"
)

// TextFile saves and loads text as-is
type TextFile struct {
	Base
}

var _ File[string] = &TextFile{}

// NewText returns a TextFile for path
func NewText(path string) *TextFile {
	return &TextFile{Base: newBase(path)}
}

// Save replaces content of the file with s
func (f *TextFile) Save(s string) (err error) {
	f.log.V(1).Info("saving to file")
	defer func() { f.logSave(err) }()
	return atomicfile.WriteFile(f.path, []byte(s))
}

// Load returns the whole content of the file
func (f *TextFile) Load() (s string, err error) {
	f.log.V(1).Info("loading file")
	defer func() { f.logLoad(err) }()
	d, err := os.ReadFile(f.path)
	return string(d), err
}

// SaveLines writes each line followed by '\n'
func (f *TextFile) SaveLines(lines []string) error {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return f.Save(sb.String())
}

// LoadLines reads the file as lines, without '\n'.
// Lines can be of any length.
func (f *TextFile) LoadLines() (lines []string, err error) {
	f.log.V(1).Info("loading file")
	defer func() { f.logLoad(err) }()

	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	r := bufio.NewReader(file)
	for {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if line == "" && err == io.EOF {
			return lines, nil
		}
		lines = append(lines, strings.TrimSuffix(line, "\n"))
		if err == io.EOF {
			return lines, nil
		}
	}
}

// CSVFile adapts csvstore.Store to File interface.
// Save replaces all rows, Load returns all rows and requires the file to exist.
type CSVFile struct {
	Base
	Store *csvstore.Store
}

var _ File[[][]string] = &CSVFile{}

// NewCSV creates a csvstore.Store for path and wraps it
func NewCSV(path string, opts *csvstore.Options) (*CSVFile, error) {
	s, err := csvstore.New(path, opts)
	if err != nil {
		return nil, err
	}
	return &CSVFile{Base: newBase(path), Store: s}, nil
}

// Save replaces all rows of the store
func (f *CSVFile) Save(rows [][]string) (err error) {
	defer func() { f.logSave(err) }()
	return f.Store.Write(rows)
}

// Load returns all data rows, the file must exist
func (f *CSVFile) Load() (rows [][]string, err error) {
	defer func() { f.logLoad(err) }()
	return f.Store.LoadAll(csvstore.LoadOptions{MustExist: true})
}

// TOONFile writes rows as a TOON document: {"rows": [{col: val, ...}, ...]}.
// It's an export format, there is no Load.
type TOONFile struct {
	Base
	Header []string
}

var _ Saver[[][]string] = &TOONFile{}

// NewTOON returns a TOONFile for path with column names from header
func NewTOON(path string, header []string) *TOONFile {
	return &TOONFile{Base: newBase(path), Header: header}
}

// Save writes rows keyed by header columns. Every row must have
// as many fields as the header.
func (f *TOONFile) Save(rows [][]string) (err error) {
	f.log.V(1).Info("saving to file")
	defer func() { f.logSave(err) }()

	if len(f.Header) == 0 {
		return fmt.Errorf("toon export of '%s' needs a header", f.path)
	}
	recs := make([]map[string]any, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(f.Header) {
			return fmt.Errorf("row %d has %d fields, header has %d", i, len(row), len(f.Header))
		}
		m := make(map[string]any, len(row))
		for j, col := range f.Header {
			m[col] = row[j]
		}
		recs = append(recs, m)
	}
	d, err := toon.Marshal(map[string]any{"rows": recs})
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(f.path, d)
}

// ExportTOON saves all rows of s as TOON to dstPath.
// The store must have a header.
func ExportTOON(s *csvstore.Store, dstPath string) error {
	rows, err := s.LoadAll(csvstore.LoadOptions{MustExist: true})
	if err != nil {
		return err
	}
	return NewTOON(dstPath, s.Header()).Save(rows)
}
