package fileformat

import (
	"errors"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/kjk/fileops/log"
)

// Saver saves v to a file
type Saver[T any] interface {
	Save(v T) error
}

// Loader loads content of a file
type Loader[T any] interface {
	Load() (T, error)
}

// File can both save and load values of type T
type File[T any] interface {
	Saver[T]
	Loader[T]
	Path() string
}

// Base has functionality shared by all formats
type Base struct {
	path string
	log  logr.Logger
}

func newBase(path string) Base {
	return Base{
		path: path,
		log:  log.Logger().WithName("fileformat").WithValues("path", path),
	}
}

// Path returns path of the file
func (b *Base) Path() string {
	return b.path
}

// Exists returns true if the file exists
func (b *Base) Exists() bool {
	st, err := os.Stat(b.path)
	return err == nil && st.Mode().IsRegular()
}

// IsEmpty returns true if the file has no content.
// The file must exist.
func (b *Base) IsEmpty() (bool, error) {
	st, err := os.Stat(b.path)
	if err != nil {
		return false, err
	}
	return st.Size() == 0, nil
}

// Touch creates an empty file if it doesn't exist
// and updates modification time if it does
func (b *Base) Touch() error {
	f, err := os.OpenFile(b.path, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	now := time.Now()
	return os.Chtimes(b.path, now, now)
}

// SetLogger changes the logger used to report saving and loading
func (b *Base) SetLogger(l logr.Logger) {
	b.log = l.WithValues("path", b.path)
}

func (b *Base) logSave(err error) {
	if err != nil {
		b.log.Error(err, "failed saving to file")
		return
	}
	b.log.V(1).Info("finished saving to file")
}

func (b *Base) logLoad(err error) {
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		b.log.Error(err, "failed loading file")
		return
	}
	if err == nil {
		b.log.V(1).Info("finished loading file")
	}
}
