// Package jsonstore reads and writes single JSON documents on disk.
//
// Writes are not atomic and nothing is locked: callers are expected to be
// the only writer of a given path.
package jsonstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

var (
	ErrDirectoryCreation = errors.New("unable to create directory")
	ErrFileNotFound      = errors.New("file not found")
	ErrStore             = errors.New("unable to store data")
	ErrLoad              = errors.New("unable to load data")
)

type options struct {
	createDirectory bool
	indent          int
}

type Option func(*options)

// WithCreateDirectory controls whether Store creates the parent directory
// of the target path. Enabled by default.
func WithCreateDirectory(create bool) Option {
	return func(o *options) {
		o.createDirectory = create
	}
}

// WithIndent sets the number of spaces per indentation level. Zero writes
// compact JSON.
func WithIndent(spaces int) Option {
	return func(o *options) {
		if spaces >= 0 {
			o.indent = spaces
		}
	}
}

// Store serializes value as JSON and writes it to path, replacing any
// existing file.
func Store(path string, value any, opts ...Option) error {
	o := options{createDirectory: true, indent: 2}
	for _, opt := range opts {
		opt(&o)
	}

	if o.createDirectory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("%w for %s: %w", ErrDirectoryCreation, path, err)
		}
	}

	var (
		data []byte
		err  error
	)
	if o.indent > 0 {
		data, err = json.MarshalIndent(value, "", strings.Repeat(" ", o.indent))
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return fmt.Errorf("%w to %s: %w", ErrStore, path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w to %s: %w", ErrStore, path, err)
	}
	return nil
}

// Load reads the JSON document at path into v. A missing file is reported
// as ErrFileNotFound.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s: %w", ErrFileNotFound, path, err)
		}
		return fmt.Errorf("%w from %s: %w", ErrLoad, path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w from %s: %w", ErrLoad, path, err)
	}
	return nil
}

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
