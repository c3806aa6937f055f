// Package fileutil holds small filesystem helpers shared by the
// classifier, pipeline, and ledger.
package fileutil

import (
	"errors"
	"fmt"
	"os"
)

// Exists reports whether path refers to an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Size returns the byte size of the file at path.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", path)
	}
	return info.Size(), nil
}

// Remove deletes path, treating a missing file as success.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveAllOf deletes every listed path, returning the first error after
// attempting all of them.
func RemoveAllOf(paths ...string) error {
	var first error
	for _, path := range paths {
		if err := Remove(path); err != nil && first == nil {
			first = err
		}
	}
	return first
}
