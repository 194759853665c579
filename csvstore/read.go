package csvstore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// scanLines calls fn for physical lines [from, to) of the file and
// stops reading as soon as line to-1 was seen. to < 0 means until
// the end of file.
func scanLines(path string, from int, to int, fn func(idx int, line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return scanReader(f, from, to, fn)
}

// scanReader is scanLines over r. The empty remainder after the final
// newline is not a line.
func scanReader(rd io.Reader, from int, to int, fn func(idx int, line string)) error {
	r := bufio.NewReader(rd)
	for idx := 0; to < 0 || idx < to; idx++ {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if line == "" && err == io.EOF {
			return nil
		}
		if idx >= from {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			fn(idx, line)
		}
		if err == io.EOF {
			return nil
		}
	}
	return nil
}

// LoadOptions modifies LoadAll
type LoadOptions struct {
	// if true, a missing file is an error. Otherwise LoadAll returns nil, nil
	MustExist bool
	// if true, every field must parse as a number
	Numeric bool
}

// LoadAll returns all data rows (header excluded)
func (s *Store) LoadAll(opts LoadOptions) ([][]string, error) {
	s.log.V(1).Info("loading file")
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !opts.MustExist {
			s.log.V(1).Info("file doesn't exist, nothing to load")
			return nil, nil
		}
		return nil, err
	}

	var rows [][]string
	var errParse error
	err := scanLines(s.path, s.headerLines(), -1, func(idx int, line string) {
		if errParse != nil {
			return
		}
		row := s.splitLine(line)
		if opts.Numeric {
			if _, err := parseFloats(row); err != nil {
				errParse = fmt.Errorf("line %d: %w", idx+1, err)
				return
			}
		}
		rows = append(rows, row)
	})
	if err == nil {
		err = errParse
	}
	if err != nil {
		return nil, err
	}
	s.log.V(1).Info("finished loading file", "rows", len(rows))
	return rows, nil
}

func parseFloats(row []string) ([]float64, error) {
	res := make([]float64, len(row))
	for i, field := range row {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrNotNumeric, field)
		}
		res[i] = v
	}
	return res, nil
}

// LoadFloats is LoadAll for all-numeric files. The file must exist.
func (s *Store) LoadFloats() ([][]float64, error) {
	rows, err := s.LoadAll(LoadOptions{MustExist: true, Numeric: true})
	if err != nil {
		return nil, err
	}
	res := make([][]float64, len(rows))
	for i, row := range rows {
		// can't fail, LoadAll already validated
		res[i], _ = parseFloats(row)
	}
	return res, nil
}

// checkIndex verifies that idx is a valid data row index
func (s *Store) checkIndex(idx int, n int) error {
	if idx < 0 || idx > n-1 {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, idx, n-1)
	}
	return nil
}

// readRows reads data rows [start, end), which must be valid
func (s *Store) readRows(start int, end int, dst [][]string) ([][]string, error) {
	h := s.headerLines()
	err := scanLines(s.path, start+h, end+h, func(_ int, line string) {
		dst = append(dst, s.splitLine(line))
	})
	return dst, err
}

// LoadLine returns a single data row at idx (0 is the first row after
// the header) as a one-element slice. Reads the file only up to that row.
func (s *Store) LoadLine(idx int) ([][]string, error) {
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	if err = s.checkIndex(idx, n); err != nil {
		return nil, err
	}
	return s.readRows(idx, idx+1, make([][]string, 0, 1))
}

// LoadRange returns data rows [start, end). Reading stops at end.
// LoadRange(i, i) is the same as LoadLine(i).
func (s *Store) LoadRange(start int, end int) ([][]string, error) {
	if start == end {
		return s.LoadLine(start)
	}
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	if err = s.checkIndex(start, n); err != nil {
		return nil, err
	}
	if err = s.checkIndex(end-1, n); err != nil {
		return nil, err
	}
	if end < start {
		return nil, fmt.Errorf("%w: end %d before start %d", ErrIndexOutOfRange, end, start)
	}
	return s.readRows(start, end, make([][]string, 0, end-start))
}

// LoadSequential returns the next batchSize rows starting at the cursor
// and advances the cursor. Reading past the last row wraps around to the
// first row, so repeated calls cycle through the file.
// If reset is true, the cursor is moved to the first row before reading.
func (s *Store) LoadSequential(batchSize int, reset bool) ([][]string, error) {
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	if batchSize < 1 || batchSize > n {
		return nil, fmt.Errorf("%w: %d, file has %d rows", ErrBatchSize, batchSize, n)
	}
	if reset || s.cursor >= n {
		// the file might have shrunk since the last call
		s.cursor = 0
	}

	start := s.cursor
	end := start + batchSize
	rows := make([][]string, 0, batchSize)
	switch {
	case end > n:
		rows, err = s.readRows(start, n, rows)
		if err != nil {
			return nil, err
		}
		wrapped := end - n
		rows, err = s.readRows(0, wrapped, rows)
		if err != nil {
			return nil, err
		}
		s.cursor = wrapped
	case end == n:
		rows, err = s.readRows(start, end, rows)
		if err != nil {
			return nil, err
		}
		s.cursor = 0
	default:
		rows, err = s.readRows(start, end, rows)
		if err != nil {
			return nil, err
		}
		s.cursor = end
	}
	s.log.V(1).Info("loaded batch", "start", start, "size", batchSize, "cursor", s.cursor)
	return rows, nil
}
