package format

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.followtheprocess.codes/pmconv/internal/collection"
	"go.followtheprocess.codes/pmconv/internal/environment"
	"go.followtheprocess.codes/pmconv/internal/fsutil"
	"go.followtheprocess.codes/pmconv/internal/schema"
	"go.followtheprocess.codes/pmconv/internal/spec"
	"go.followtheprocess.codes/pmconv/internal/tree"
)

// requestConverter writes every request of a collection to its own file
// with a [Renderer].
type requestConverter struct {
	renderer Renderer // Renders each request
	id       ID       // The format
	dir      string   // Output directory beneath the output root
	ext      string   // File extension, without the dot
}

// Convert implements [Converter] for a request format.
//
// Files are written to <root>/<dir>/<collection>/<folder path>/<request>.<ext>.
func (c requestConverter) Convert(coll *collection.Collection, options Options) (Result, error) {
	root, err := fsutil.EnsureDir(fsutil.SafePath(options.OutputRoot, c.dir, coll.Name()))
	if err != nil {
		return Result{Format: c.id}, err
	}

	result := Result{Format: c.id, Path: root}

	build := spec.BuildOptions{HTTPVersion: options.HTTPVersion}
	if auth, ok := coll.Auth(); ok {
		build.Auth = &auth
	}

	for folder, item := range coll.Iterate() {
		err := c.convertItem(root, item, build, options.Vars)
		if err == nil {
			result.Written++
			continue
		}

		// A directory we cannot create or write to will fail every other
		// request too
		if errors.Is(err, fsutil.ErrDirectory) {
			return result, err
		}

		result.Failures = append(result.Failures, RequestError{Folder: folder, Name: item.Name, Err: err})
	}

	return result, nil
}

// convertItem builds, interpolates, renders and writes a single request.
//
// Variables are replaced before rendering so a renderer's own quoting and
// encoding applies to the substituted values.
func (c requestConverter) convertItem(root string, item collection.Item, build spec.BuildOptions, vars *environment.Table) error {
	request, err := spec.Build(item, build)
	if err != nil {
		return err
	}

	content, err := c.renderer.Render(request.Interpolate(vars))
	if err != nil {
		return err
	}

	dir, err := fsutil.EnsureDir(fsutil.SafePath(root, item.Folders...))
	if err != nil {
		return err
	}

	file := filepath.Join(dir, request.FileName()+"."+c.ext)

	return write(file, []byte(content))
}

// schemaConverter rewrites a whole collection to a target schema version.
type schemaConverter struct {
	id     ID                 // The format
	dir    string             // Output directory beneath the output root
	ext    string             // File name suffix, without the dot
	target collection.Version // Version to convert to
}

// Convert implements [Converter] for a schema format.
//
// Only a collection in the other schema version is rewritten, anything else is
// written out unchanged. The file goes to <root>/<dir>/<collection>/<collection>.<ext>.
func (s schemaConverter) Convert(coll *collection.Collection, options Options) (Result, error) {
	name := fsutil.SafeName(coll.Name())

	dir, err := fsutil.EnsureDir(fsutil.SafePath(options.OutputRoot, s.dir, name))
	if err != nil {
		return Result{Format: s.id}, err
	}

	doc, rewritten := schema.Convert(coll, s.target)

	data, err := tree.MarshalIndent(doc, "  ")
	if err != nil {
		return Result{Format: s.id}, fmt.Errorf("could not encode collection %s: %w", coll.Name(), err)
	}

	file := filepath.Join(dir, name+"."+s.ext)
	if err := write(file, data); err != nil {
		return Result{Format: s.id}, err
	}

	return Result{Format: s.id, Path: file, Written: 1, Rewritten: rewritten}, nil
}

// write writes data to file, an empty write counts as a failure.
func write(file string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w %s: nothing to write", ErrWrite, file)
	}

	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, file, err)
	}

	return nil
}
