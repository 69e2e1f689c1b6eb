package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FileLoader reads a dataset from a YAML (or JSON) document. Unknown fields
// are rejected so a typo in a column name fails the load instead of silently
// zeroing the value.
type FileLoader struct {
	Path string
}

// NewFileLoader creates a loader for the document at path
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// Load reads and decodes the document
func (l *FileLoader) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.Path, err)
	}

	return DecodeDataset(bytes.NewReader(data))
}

// DecodeDataset decodes a YAML dataset strictly
func DecodeDataset(r io.Reader) (*Dataset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		if err == io.EOF {
			return &ds, nil
		}
		return nil, &ValidationError{Issues: []string{err.Error()}}
	}
	return &ds, nil
}
