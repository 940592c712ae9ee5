// Package storage reads and writes the JSON documents that back each store.
//
// Every write is a full rewrite of the document: there is no append mode,
// no atomic rename and no cross-process locking. Two processes writing the
// same file can lose each other's changes. Stores serialise their own
// writers with a mutex; that is the only protection provided.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrMissing is returned by Load when the document does not exist yet
var ErrMissing = errors.New("document does not exist")

// Load decodes the JSON document at path into v
// A missing file yields ErrMissing; unreadable or unparsable files yield a
// wrapped error and leave v in an unspecified state
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrMissing
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}

// Save encodes v as indented JSON and replaces the document at path
// Parent directories are created when needed
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o770); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	// Credentials are stored in clear text, so keep the files private
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Exists reports whether a document is present at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
