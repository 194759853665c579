package fileformat

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/kjk/fileops/atomicfile"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

var prettyOptions = &pretty.Options{
	Width:  80,
	Prefix: "",
	Indent: "    ",
}

// JSONFile saves values of type T as indented JSON
type JSONFile[T any] struct {
	Base
}

var _ File[map[string]any] = &JSONFile[map[string]any]{}

// NewJSON returns a JSONFile for path
func NewJSON[T any](path string) *JSONFile[T] {
	return &JSONFile[T]{Base: newBase(path)}
}

// Save writes v as JSON indented with 4 spaces
func (f *JSONFile[T]) Save(v T) (err error) {
	f.log.V(1).Info("saving to file")
	defer func() { f.logSave(err) }()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// keep non-ascii and <>& as-is
	enc.SetEscapeHTML(false)
	if err = enc.Encode(v); err != nil {
		return err
	}
	d := pretty.PrettyOptions(buf.Bytes(), prettyOptions)
	return atomicfile.WriteFile(f.path, d)
}

// Load decodes the file into a new T
func (f *JSONFile[T]) Load() (v T, err error) {
	f.log.V(1).Info("loading file")
	defer func() { f.logLoad(err) }()

	d, err := os.ReadFile(f.path)
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(d, &v)
	return v, err
}

// YAMLFile saves values of type T as YAML
type YAMLFile[T any] struct {
	Base
}

var _ File[map[string]any] = &YAMLFile[map[string]any]{}

// NewYAML returns a YAMLFile for path
func NewYAML[T any](path string) *YAMLFile[T] {
	return &YAMLFile[T]{Base: newBase(path)}
}

// Save writes v as YAML indented with 4 spaces
func (f *YAMLFile[T]) Save(v T) (err error) {
	f.log.V(1).Info("saving to file")
	defer func() { f.logSave(err) }()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(4)
	if err = enc.Encode(v); err != nil {
		return err
	}
	if err = enc.Close(); err != nil {
		return err
	}
	return atomicfile.WriteFile(f.path, buf.Bytes())
}

// Load decodes the file into a new T
func (f *YAMLFile[T]) Load() (v T, err error) {
	f.log.V(1).Info("loading file")
	defer func() { f.logLoad(err) }()

	d, err := os.ReadFile(f.path)
	if err != nil {
		return v, err
	}
	err = yaml.Unmarshal(d, &v)
	return v, err
}
