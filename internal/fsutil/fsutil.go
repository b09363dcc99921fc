// Package fsutil provides the small filesystem helpers the converters rely on.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// CollectionSuffix is the file name suffix of an exported Postman collection.
const CollectionSuffix = ".postman_collection.json"

// separators are replaced in names used as a single path element.
var separators = strings.NewReplacer("/", "_", "\\", "_")

// SafeName returns name made safe to use as a single file or directory name:
// path separators become "_", and names that would refer to the current or parent
// directory (or nothing) have their dots replaced too.
func SafeName(name string) string {
	name = separators.Replace(name)

	switch name {
	case "":
		return "_"
	case ".", "..":
		return strings.Repeat("_", len(name))
	default:
		return name
	}
}

// SafePath joins names beneath root, each made safe with [SafeName] so the result
// can never escape root.
func SafePath(root string, names ...string) string {
	elems := make([]string, 0, len(names)+1)
	elems = append(elems, root)

	for _, name := range names {
		elems = append(elems, SafeName(name))
	}

	return filepath.Join(elems...)
}

// ErrDirectory is the sentinel wrapped by every [DirectoryError].
var ErrDirectory = errors.New("directory error")

// DirectoryError is returned when a directory cannot be created, removed or
// written to.
type DirectoryError struct {
	Err  error  // The underlying error
	Op   string // What was being attempted e.g. "create"
	Path string // The directory in question
}

// Error implements the error interface for [DirectoryError].
func (e *DirectoryError) Error() string {
	return fmt.Sprintf("could not %s directory %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap allows errors.Is to match both [ErrDirectory] and the underlying cause.
func (e *DirectoryError) Unwrap() []error {
	return []error{ErrDirectory, e.Err}
}

// EnsureDir creates path and any missing parents, then checks it is a writable
// directory. It returns the cleaned path.
func EnsureDir(path string) (string, error) {
	path = filepath.Clean(path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", &DirectoryError{Op: "create", Path: path, Err: err}
	}

	probe, err := os.CreateTemp(path, ".pmconv-*")
	if err != nil {
		return "", &DirectoryError{Op: "write to", Path: path, Err: err}
	}

	name := probe.Name()
	if err := probe.Close(); err != nil {
		return "", &DirectoryError{Op: "write to", Path: path, Err: err}
	}

	if err := os.Remove(name); err != nil {
		return "", &DirectoryError{Op: "write to", Path: path, Err: err}
	}

	return path, nil
}

// RemoveDir removes path and everything beneath it, a missing path is not an error.
func RemoveDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return &DirectoryError{Op: "remove", Path: path, Err: err}
	}

	return nil
}

// IsCollectionFile reports whether path names an exported Postman collection.
func IsCollectionFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), CollectionSuffix)
}

// CollectionFiles returns every collection file beneath dir, recursively and in
// lexical order.
func CollectionFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.Type().IsRegular() && IsCollectionFile(path) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not scan %s for collections: %w", dir, err)
	}

	slices.Sort(files)

	return files, nil
}
