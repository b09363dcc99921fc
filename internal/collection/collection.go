// Package collection implements the Postman collection model.
//
// A [Collection] wraps a parsed collection document, detects its schema version and
// exposes a lazy, path aware traversal over the request items nested in its folders.
//
// The parsed document is owned by the Collection and is never mutated after loading,
// consumers that need to rewrite it (such as the schema converters) must work on a
// copy obtained from [Collection.Tree].
package collection

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"slices"
	"strings"

	"go.followtheprocess.codes/pmconv/internal/tree"
)

// ErrDecode is the sentinel wrapped by every [DecodeError].
var ErrDecode = errors.New("decode error")

// DecodeError is returned when a document cannot be loaded as a collection, either
// because it is not valid JSON or because it is missing required information.
type DecodeError struct {
	Err  error  // The underlying error, may be nil
	Path string // Path (or name) of the document
	Msg  string // What was wrong
}

// Error implements the error interface for [DecodeError].
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not decode collection %s: %s: %v", e.Path, e.Msg, e.Err)
	}

	return fmt.Sprintf("could not decode collection %s: %s", e.Path, e.Msg)
}

// Unwrap allows errors.Is to match both [ErrDecode] and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDecode, e.Err}
	}

	return []error{ErrDecode}
}

// Version is a Postman collection schema version.
type Version int

const (
	// VersionUnknown is a collection whose schema is not recognised.
	VersionUnknown Version = iota

	// Version20 is the v2.0.0 collection schema.
	Version20

	// Version21 is the v2.1.0 collection schema.
	Version21
)

// String implements [fmt.Stringer] for [Version].
func (v Version) String() string {
	switch v {
	case Version20:
		return "v2.0"
	case Version21:
		return "v2.1"
	default:
		return "unknown"
	}
}

// DetectVersion returns the [Version] described by a collection's info.schema URI.
func DetectVersion(schema string) Version {
	switch {
	case strings.Contains(schema, "/v2.0."):
		return Version20
	case strings.Contains(schema, "/v2.1."):
		return Version21
	default:
		return VersionUnknown
	}
}

// Collection is a parsed Postman collection.
type Collection struct {
	root    *tree.Object // The collection document, never mutated
	path    string       // Where the collection was loaded from
	name    string       // info.name
	schema  string       // info.schema
	version Version      // Detected from schema
}

// Load reads and parses the collection file at path.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Msg: "could not read file", Err: err}
	}

	return Parse(path, data)
}

// Parse parses a collection from raw JSON, path is only used to describe errors.
//
// Documents exported through the Postman API wrap the collection in a top level
// "collection" member, these are unwrapped transparently.
func Parse(path string, data []byte) (*Collection, error) {
	value, err := tree.Parse(data)
	if err != nil {
		return nil, &DecodeError{Path: path, Msg: "invalid JSON", Err: err}
	}

	root, ok := value.(*tree.Object)
	if !ok {
		return nil, &DecodeError{Path: path, Msg: fmt.Sprintf("expected a JSON object, got %s", kind(value))}
	}

	if wrapped, ok := root.Object("collection"); ok {
		root = wrapped
	}

	info, ok := root.Object("info")
	if !ok {
		return nil, &DecodeError{Path: path, Msg: "missing info object"}
	}

	name, ok := info.String("name")
	if !ok {
		return nil, &DecodeError{Path: path, Msg: "missing info.name"}
	}

	schema, ok := info.String("schema")
	if !ok {
		return nil, &DecodeError{Path: path, Msg: "missing info.schema"}
	}

	return &Collection{
		root:    root,
		path:    path,
		name:    name,
		schema:  schema,
		version: DetectVersion(schema),
	}, nil
}

// Name returns the collection name from info.name.
func (c *Collection) Name() string {
	return c.name
}

// Path returns the path the collection was loaded from.
func (c *Collection) Path() string {
	return c.path
}

// Schema returns the raw info.schema URI.
func (c *Collection) Schema() string {
	return c.schema
}

// Version returns the detected schema version.
func (c *Collection) Version() Version {
	return c.version
}

// Tree returns a deep copy of the collection document, free for the caller to modify.
func (c *Collection) Tree() *tree.Object {
	return c.root.Clone()
}

// Variable is a collection scoped variable.
type Variable struct {
	Key   string // Variable name, without braces
	Value string // Variable value, non string values are stringified
}

// Variables returns the collection's own variables in document order, disabled
// variables are skipped.
func (c *Collection) Variables() []Variable {
	list, _ := c.root.Array("variable")

	vars := make([]Variable, 0, len(list))

	for _, raw := range list {
		obj, ok := raw.(*tree.Object)
		if !ok {
			continue
		}

		key, ok := obj.String("key")
		if !ok || key == "" {
			continue
		}

		if disabled, _ := obj.Get("disabled"); disabled == true {
			continue
		}

		value, _ := obj.Get("value")
		vars = append(vars, Variable{Key: key, Value: scalar(value)})
	}

	return vars
}

// Auth returns the collection level auth, if there is one.
func (c *Collection) Auth() (Auth, bool) {
	obj, ok := c.root.Object("auth")
	if !ok {
		return Auth{}, false
	}

	return newAuth(obj), true
}

// Iterate returns an iterator over every request in the collection paired with the
// path of the folder containing it.
//
// The walk is depth first and pre-order with siblings in document order. Paths are
// the ancestor folder names joined with "/" and prefixed by "/", requests at the root
// of the collection have the path "/".
//
// Every call starts a fresh traversal.
func (c *Collection) Iterate() iter.Seq2[string, Item] {
	return func(yield func(string, Item) bool) {
		items, _ := c.root.Array("item")

		w := &walker{}
		w.walk(items, yield)
	}
}

// IsFolder reports whether an item node is a folder: it has a non-empty "item" array
// and no "request". Anything else, including a node with both, is a request.
func IsFolder(node *tree.Object) bool {
	items, ok := node.Array("item")
	if !ok || len(items) == 0 {
		return false
	}

	request, ok := node.Get("request")

	return !ok || request == nil
}

// walker holds the state of a single traversal.
type walker struct {
	stack []string // Names of the folders enclosing the current position
}

// path returns the current folder path.
func (w *walker) path() string {
	return "/" + strings.Join(w.stack, "/")
}

// walk visits items, descending into folders. It returns false if yield asked
// to stop.
func (w *walker) walk(items []any, yield func(string, Item) bool) bool {
	for _, raw := range items {
		node, ok := raw.(*tree.Object)
		if !ok || node == nil {
			continue
		}

		name, _ := node.String("name")

		if IsFolder(node) {
			children, _ := node.Array("item")

			w.stack = append(w.stack, name)
			more := w.walk(children, yield)
			w.stack = w.stack[:len(w.stack)-1]

			if !more {
				return false
			}

			continue
		}

		if !yield(w.path(), Item{Name: name, Folders: slices.Clone(w.stack), node: node}) {
			return false
		}
	}

	return true
}

// kind describes the JSON type of a tree value for error messages.
func kind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case *tree.Object:
		return "object"
	default:
		return "number"
	}
}
