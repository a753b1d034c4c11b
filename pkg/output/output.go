package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Writer stores analysis results as JSON documents in one directory
type Writer struct {
	dir    string
	prefix string
}

// NewWriter creates a writer for dir. Files are named <prefix>_<name>.json, or
// <name>.json when prefix is empty.
func NewWriter(dir, prefix string) *Writer {
	return &Writer{dir: dir, prefix: prefix}
}

// Path returns the file a result called name is written to
func (w *Writer) Path(name string) string {
	if w.prefix != "" {
		name = w.prefix + "_" + name
	}
	return filepath.Join(w.dir, name+".json")
}

// Write encodes v into the file for name and returns its path
func (w *Writer) Write(name string, v interface{}) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := w.Path(name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := Encode(file, v); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Encode writes v as indented JSON
func Encode(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Decode reads a JSON document written by Encode into v
func Decode(in io.Reader, v interface{}) error {
	return json.NewDecoder(in).Decode(v)
}
