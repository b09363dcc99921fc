// Package format provides the output formats a collection can be converted into.
//
// There are two kinds of format. Request formats (http, curl and wget) render every
// request in a collection to its own file through a [Renderer], mirroring the folder
// structure of the collection on disk. Schema formats (v2.0 and v2.1) rewrite the whole
// collection into the other Postman schema version and write it as a single file.
//
// Both kinds implement [Converter] and are looked up by [ID] from a static registry,
// adding a format means adding an ID and its registry entry.
package format

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"go.followtheprocess.codes/pmconv/internal/collection"
	"go.followtheprocess.codes/pmconv/internal/environment"
	"go.followtheprocess.codes/pmconv/internal/spec"
)

var (
	// ErrUnknownFormat is returned when looking up a format that does not exist.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrWrite is returned when an output file could not be written.
	ErrWrite = errors.New("could not write file")
)

// ID identifies an output format.
type ID string

const (
	HTTP      ID = "http" // Raw .http request files
	Curl      ID = "curl" // curl shell scripts
	Wget      ID = "wget" // wget shell scripts
	Postman20 ID = "v2.0" // Postman collection, v2.0 schema
	Postman21 ID = "v2.1" // Postman collection, v2.1 schema
)

// String implements [fmt.Stringer] for [ID].
func (i ID) String() string {
	return string(i)
}

// Renderer turns a single request into the text of one output file.
type Renderer interface {
	// Render returns the file contents for request, whose variables have
	// already been interpolated.
	Render(request spec.Request) (string, error)
}

// Converter converts a collection into one output format, writing the results
// beneath the output root.
type Converter interface {
	// Convert writes the collection in this format.
	//
	// Failures of individual requests are reported in the [Result] and never stop
	// the conversion, the returned error is reserved for failures that leave the
	// whole format unusable for this collection such as an output directory that
	// cannot be created.
	Convert(coll *collection.Collection, options Options) (Result, error)
}

// Options configure a conversion.
type Options struct {
	// Variables interpolated into rendered requests, may be nil
	Vars *environment.Table

	// The directory beneath which every format writes its output
	OutputRoot string

	// HTTP version for rendered requests, [spec.DefaultHTTPVersion] if empty
	HTTPVersion string
}

// Result is the outcome of converting one collection to one format.
type Result struct {
	// The format converted to
	Format ID

	// The collection output directory for request formats, or the written file
	// for schema formats
	Path string

	// Requests that could not be converted
	Failures []RequestError

	// Number of files written
	Written int

	// Whether a schema format rewrote the collection to another version, false
	// when it was written out unchanged
	Rewritten bool
}

// RequestError is the failure to convert a single request.
type RequestError struct {
	Err    error  // What went wrong
	Folder string // Folder path of the request within the collection e.g. "/Users"
	Name   string // Request name
}

// Error implements the error interface for [RequestError].
func (e RequestError) Error() string {
	return fmt.Sprintf("%s: %v", path.Join(e.Folder, e.Name), e.Err)
}

// Unwrap returns the underlying error.
func (e RequestError) Unwrap() error {
	return e.Err
}

// entry is a registered format.
type entry struct {
	converter Converter
	renderer  Renderer // nil for schema formats
}

// registry holds the known formats, order is their canonical order.
var (
	registry = map[ID]entry{
		HTTP: {
			converter: requestConverter{id: HTTP, dir: "http", ext: "http", renderer: HTTPRenderer{}},
			renderer:  HTTPRenderer{},
		},
		Curl: {
			converter: requestConverter{id: Curl, dir: "curl", ext: "sh", renderer: CurlRenderer{}},
			renderer:  CurlRenderer{},
		},
		Wget: {
			converter: requestConverter{id: Wget, dir: "wget", ext: "sh", renderer: WgetRenderer{}},
			renderer:  WgetRenderer{},
		},
		Postman20: {
			converter: schemaConverter{id: Postman20, dir: "pm-v2.0", ext: "v20.postman_collection.json", target: collection.Version20},
		},
		Postman21: {
			converter: schemaConverter{id: Postman21, dir: "pm-v2.1", ext: "v21.postman_collection.json", target: collection.Version21},
		},
	}

	order = []ID{HTTP, Curl, Wget, Postman20, Postman21}
)

// All returns every format in canonical order.
func All() []ID {
	all := make([]ID, len(order))
	copy(all, order)

	return all
}

// Parse returns the [ID] named by s, case insensitively.
func Parse(s string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[id]; !ok {
		return "", fmt.Errorf("%w %q, expected one of %s", ErrUnknownFormat, s, list())
	}

	return id, nil
}

// Lookup returns the [Converter] for a format.
func Lookup(id ID) (Converter, error) {
	e, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, id)
	}

	return e.converter, nil
}

// RendererFor returns the [Renderer] of a request format, ok is false for schema
// formats and unknown IDs.
func RendererFor(id ID) (renderer Renderer, ok bool) {
	e, ok := registry[id]
	if !ok || e.renderer == nil {
		return nil, false
	}

	return e.renderer, true
}

// list returns the known format IDs as a comma separated string.
func list() string {
	names := make([]string, 0, len(order))
	for _, id := range order {
		names = append(names, id.String())
	}

	return strings.Join(names, ", ")
}
