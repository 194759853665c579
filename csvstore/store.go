package csvstore

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-logr/logr"
	"github.com/kjk/fileops/log"
	"github.com/kjk/fileops/u"
	"gopkg.in/yaml.v3"
)

// Extension is the extension every store file must have
const Extension = ".csv"

// DefaultDelimiter separates fields when Options.Delimiter is not set
const DefaultDelimiter = "|"

var (
	// ErrInvalidPath is returned by New for paths not ending in .csv
	ErrInvalidPath = errors.New("store path must end in " + Extension)
	// ErrInvalidDelimiter is returned for delimiters that are not exactly one character
	ErrInvalidDelimiter = errors.New("delimiter must be a single character")
	// ErrFileEmpty is returned when auto-detecting the header of a file
	// that has no data rows
	ErrFileEmpty = errors.New("file is empty")
	// ErrIndexOutOfRange is returned for row indexes outside [0, Len()-1]
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrBatchSize is returned by LoadSequential for batch size outside [1, Len()]
	ErrBatchSize = errors.New("invalid batch size")
	// ErrNotNumeric is returned when numeric loading finds a non-numeric field
	ErrNotNumeric = errors.New("field is not numeric")
	// ErrInvalidRecord is returned when writing a row that wouldn't read back
	// the same: empty row or a field with delimiter or newline in it
	ErrInvalidRecord = errors.New("invalid record")
)

// Options configures a Store. nil Options means: no header, "|" delimiter.
type Options struct {
	// column names written as the first line of the file
	Header []string `yaml:"header,omitempty"`
	// if true, the first line of an existing file becomes the header.
	// Header must be empty if AutoHeader is set
	AutoHeader bool `yaml:"auto_header,omitempty"`
	// single character, DefaultDelimiter if empty
	Delimiter string `yaml:"delimiter,omitempty"`

	// if not set, uses log.Logger()
	Logger logr.Logger `yaml:"-"`
}

// ReadOptions reads Options from a yaml file
func ReadOptions(path string) (*Options, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var opts Options
	if err = yaml.Unmarshal(d, &opts); err != nil {
		return nil, fmt.Errorf("parsing options '%s': %w", path, err)
	}
	return &opts, nil
}

// Store is a delimited flat file of records with an optional header line.
// It doesn't keep the file open between calls.
// Store is not safe for concurrent use: LoadSequential mutates the cursor
// and there's no locking of the file.
type Store struct {
	path   string
	delim  string
	header []string
	cursor int
	log    logr.Logger
}

// New creates a store for path. The file doesn't have to exist unless
// opts.AutoHeader is set.
func New(path string, opts *Options) (*Store, error) {
	if opts == nil {
		opts = &Options{}
	}
	ok, err := u.IsExtension(path, Extension)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: '%s': %w", ErrInvalidPath, path, u.ErrInvalidPath)
	}

	delim := opts.Delimiter
	if delim == "" {
		delim = DefaultDelimiter
	}
	if utf8.RuneCountInString(delim) != 1 || delim == "\n" || delim == "\r" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDelimiter, delim)
	}

	lg := opts.Logger
	if lg.GetSink() == nil {
		lg = log.Logger().WithName("csvstore")
	}
	s := &Store{
		path:  path,
		delim: delim,
		log:   lg.WithValues("path", path),
	}
	if len(opts.Header) > 0 {
		if err = s.validateRow(opts.Header); err != nil {
			return nil, fmt.Errorf("header: %w", err)
		}
		s.header = append([]string{}, opts.Header...)
	}
	if opts.AutoHeader {
		if s.header != nil {
			return nil, errors.New("can't use both Header and AutoHeader")
		}
		if err = s.detectHeader(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// detectHeader promotes the first line of the file to a header.
// The file must have at least one more line after it.
func (s *Store) detectHeader() error {
	n, err := u.CountLines(s.path)
	if err != nil {
		return err
	}
	// header line + one data line, both newline terminated, is 3 by CountLines
	if n < 3 {
		return fmt.Errorf("%w: '%s'", ErrFileEmpty, s.path)
	}
	var first string
	err = scanLines(s.path, 0, 1, func(_ int, line string) {
		first = line
	})
	if err != nil {
		return err
	}
	s.header = s.splitLine(first)
	s.log.V(1).Info("detected header", "header", s.header)
	return nil
}

// Path returns path of the store file
func (s *Store) Path() string {
	return s.path
}

// Delimiter returns the field separator
func (s *Store) Delimiter() string {
	return s.delim
}

// Header returns a copy of the header, nil if there's no header
func (s *Store) Header() []string {
	if s.header == nil {
		return nil
	}
	return append([]string{}, s.header...)
}

// HasHeader returns true if first line of the file is a header
func (s *Store) HasHeader() bool {
	return s.header != nil
}

// Cursor returns index of the row the next LoadSequential starts at
func (s *Store) Cursor() int {
	return s.cursor
}

func (s *Store) headerLines() int {
	if s.header != nil {
		return 1
	}
	return 0
}

// Len returns number of data rows (header excluded).
// Returns an error wrapping fs.ErrNotExist if the file doesn't exist.
func (s *Store) Len() (int, error) {
	n, err := u.CountLines(s.path)
	if err != nil {
		return 0, err
	}
	// CountLines counts the (empty) line after the final newline
	n = n - 1 - s.headerLines()
	return max(n, 0), nil
}

func (s *Store) splitLine(line string) []string {
	return strings.Split(line, s.delim)
}

func (s *Store) joinRow(row []string) string {
	return strings.Join(row, s.delim)
}

func (s *Store) validateRow(row []string) error {
	if len(row) == 0 {
		return fmt.Errorf("%w: row has no fields", ErrInvalidRecord)
	}
	for _, field := range row {
		if strings.Contains(field, s.delim) || strings.ContainsAny(field, "\r\n") {
			return fmt.Errorf("%w: field %q contains delimiter or newline", ErrInvalidRecord, field)
		}
	}
	return nil
}
