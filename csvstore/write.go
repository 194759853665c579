package csvstore

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/kjk/fileops/atomicfile"
	"github.com/kjk/fileops/u"
)

func (s *Store) serialize(buf *strings.Builder, rows [][]string) error {
	for _, row := range rows {
		if err := s.validateRow(row); err != nil {
			return err
		}
		buf.WriteString(s.joinRow(row))
		buf.WriteByte('\n')
	}
	return nil
}

// Write replaces content of the file with header (if set) and rows.
// The file is written atomically. Writing no rows is a no-op that
// doesn't create the file.
func (s *Store) Write(rows [][]string) error {
	if len(rows) == 0 {
		s.log.Info("no rows to write, file not changed")
		return nil
	}
	s.log.V(1).Info("saving to file", "rows", len(rows))
	var buf strings.Builder
	if s.header != nil {
		buf.WriteString(s.joinRow(s.header))
		buf.WriteByte('\n')
	}
	if err := s.serialize(&buf, rows); err != nil {
		return err
	}
	if err := atomicfile.WriteFile(s.path, []byte(buf.String())); err != nil {
		return err
	}
	s.log.V(1).Info("finished saving to file")
	return nil
}

// endsWithNewline returns true if the last byte of the file is '\n'.
// An empty file doesn't need a newline either.
func endsWithNewline(f *os.File, size int64) (bool, error) {
	if size <= 0 {
		return true, nil
	}
	var b [1]byte
	if _, err := f.ReadAt(b[:], size-1); err != nil {
		return false, err
	}
	return b[0] == '\n', nil
}

// AppendLines adds rows at the end of the file. If the file doesn't
// exist or is empty it's the same as Write (i.e. header is written too).
// Appending no rows is a no-op.
func (s *Store) AppendLines(rows [][]string) error {
	if len(rows) == 0 {
		s.log.Info("no rows to append, file not changed")
		return nil
	}
	if u.FileSize(s.path) <= 0 {
		return s.Write(rows)
	}

	var buf strings.Builder
	if err := s.serialize(&buf, rows); err != nil {
		return err
	}
	s.log.V(1).Info("appending to file", "rows", len(rows))
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	if st.Size() == 0 {
		// truncated since FileSize() above
		f.Close()
		return s.Write(rows)
	}
	ok, err := endsWithNewline(f, st.Size())
	if err != nil {
		f.Close()
		return err
	}
	d := buf.String()
	if !ok {
		// e.g. after u.TrimTrailingNewlines
		d = "\n" + d
	}
	if _, err = io.WriteString(f, d); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	s.log.V(1).Info("finished appending to file")
	return nil
}

// RemoveLastLine removes the last data row. Removing from a store
// without data rows (or without a file) only logs a warning.
func (s *Store) RemoveLastLine() error {
	n, err := s.Len()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if n == 0 {
		s.log.Info("warning: store is empty, nothing to remove")
		return nil
	}
	d, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	d = bytes.TrimSuffix(d, []byte{'\n'})
	idx := bytes.LastIndexByte(d, '\n')
	// keep the newline ending the previous line
	d = d[:idx+1]
	if err = atomicfile.WriteFile(s.path, d); err != nil {
		return err
	}
	s.log.V(1).Info("removed last line", "rows", n-1)
	return nil
}

// MakeEmptyFileIfNotExists creates the file if it doesn't exist:
// empty or, if the store has a header, with just the header line.
// An existing file is not modified.
func (s *Store) MakeEmptyFileIfNotExists() error {
	if u.PathExists(s.path) {
		return nil
	}
	var d []byte
	if s.header != nil {
		d = []byte(s.joinRow(s.header) + "\n")
	}
	s.log.V(1).Info("creating file", "header", s.header)
	return atomicfile.WriteFile(s.path, d)
}
