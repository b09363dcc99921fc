// Package tree implements an order preserving, in-memory representation of a
// JSON document.
//
// Every value in a tree is one of nil, bool, [json.Number], string, []any or *[Object].
// Unlike decoding into a map[string]any, object members keep the order they had in
// the source document, so a document can be decoded, rewritten and encoded again
// without shuffling every key in the file.
package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strconv"
)

// Object is a JSON object whose members remember their insertion order.
//
// The zero value is not ready for use, create one with [NewObject].
type Object struct {
	values map[string]any // Member values by key
	keys   []string       // Member keys in insertion order
}

// NewObject returns a new, empty [Object].
func NewObject() *Object {
	return &Object{
		values: make(map[string]any),
	}
}

// Len returns the number of members in the object.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}

	return len(o.keys)
}

// Keys returns the member keys in order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}

	return slices.Clone(o.keys)
}

// Get returns the value stored under key and whether it was present.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}

	value, ok := o.values[key]

	return value, ok
}

// Has reports whether key is present, regardless of its value.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores value under key. New keys are appended, existing keys keep
// their position and have their value replaced.
func (o *Object) Set(key string, value any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}

	o.values[key] = value
}

// Delete removes key from the object, it is a no-op if key is not present.
func (o *Object) Delete(key string) {
	if _, exists := o.values[key]; !exists {
		return
	}

	delete(o.values, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
}

// All returns an iterator over the members of the object, in order.
func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if o == nil {
			return
		}

		for _, key := range o.keys {
			if !yield(key, o.values[key]) {
				return
			}
		}
	}
}

// Object returns the member under key if it is itself a JSON object.
func (o *Object) Object(key string) (*Object, bool) {
	value, ok := o.Get(key)
	if !ok {
		return nil, false
	}

	obj, ok := value.(*Object)

	return obj, ok && obj != nil
}

// Array returns the member under key if it is a JSON array.
func (o *Object) Array(key string) ([]any, bool) {
	value, ok := o.Get(key)
	if !ok {
		return nil, false
	}

	arr, ok := value.([]any)

	return arr, ok
}

// String returns the member under key if it is a JSON string.
func (o *Object) String(key string) (string, bool) {
	value, ok := o.Get(key)
	if !ok {
		return "", false
	}

	str, ok := value.(string)

	return str, ok
}

// Clone returns a deep copy of the object, sharing no mutable state with
// the original.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}

	clone := &Object{
		values: make(map[string]any, len(o.values)),
		keys:   slices.Clone(o.keys),
	}

	for key, value := range o.values {
		clone.values[key] = Clone(value)
	}

	return clone
}

// Clone returns a deep copy of any tree value.
func Clone(value any) any {
	switch v := value.(type) {
	case *Object:
		return v.Clone()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Clone(item)
		}

		return out
	default:
		// Scalars are immutable
		return v
	}
}

// Parse decodes a complete JSON document from data.
func Parse(data []byte) (any, error) {
	return Decode(bytes.NewReader(data))
}

// Decode decodes exactly one JSON document from r, objects are decoded as
// *[Object] and numbers as [json.Number] so nothing is lost in translation.
func Decode(r io.Reader) (any, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	value, err := decodeValue(decoder)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}

		return nil, err
	}

	if tok, err := decoder.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("unexpected %v after top-level value", tok)
	}

	return value, nil
}

// decodeValue decodes the next complete value from the token stream.
func decodeValue(decoder *json.Decoder) (any, error) {
	tok, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		// nil, bool, json.Number or string
		return tok, nil
	}

	switch delim {
	case '{':
		return decodeObject(decoder)
	case '[':
		return decodeArray(decoder)
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// decodeObject decodes object members up to and including the closing brace.
func decodeObject(decoder *json.Decoder) (*Object, error) {
	obj := NewObject()

	for decoder.More() {
		tok, err := decoder.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %T", tok)
		}

		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}

		obj.Set(key, value)
	}

	if _, err := decoder.Token(); err != nil {
		return nil, err
	}

	return obj, nil
}

// decodeArray decodes array elements up to and including the closing bracket.
func decodeArray(decoder *json.Decoder) ([]any, error) {
	arr := []any{}

	for decoder.More() {
		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}

		arr = append(arr, value)
	}

	if _, err := decoder.Token(); err != nil {
		return nil, err
	}

	return arr, nil
}

// Marshal returns the compact JSON encoding of value.
//
// Strings are written without HTML escaping so URLs and markup in request
// bodies survive unchanged.
func Marshal(value any) ([]byte, error) {
	e := &encoder{}
	e.enc = json.NewEncoder(&e.buf)
	e.enc.SetEscapeHTML(false)

	if err := e.encode(value); err != nil {
		return nil, err
	}

	return e.buf.Bytes(), nil
}

// MarshalIndent is like [Marshal] but pretty prints the result with indent
// and terminates it with a newline.
func MarshalIndent(value any, indent string) ([]byte, error) {
	compact, err := Marshal(value)
	if err != nil {
		return nil, err
	}

	out := &bytes.Buffer{}
	if err := json.Indent(out, compact, "", indent); err != nil {
		return nil, fmt.Errorf("could not indent JSON: %w", err)
	}

	out.WriteByte('\n')

	return out.Bytes(), nil
}

// encoder writes tree values to buf.
type encoder struct {
	enc *json.Encoder // Encodes leaf values into buf
	buf bytes.Buffer  // The encoded output
}

func (e *encoder) encode(value any) error {
	switch v := value.(type) {
	case nil:
		e.buf.WriteString("null")
	case bool:
		e.buf.WriteString(strconv.FormatBool(v))
	case json.Number:
		if v == "" {
			e.buf.WriteByte('0')
			return nil
		}

		e.buf.WriteString(string(v))
	case *Object:
		if v == nil {
			e.buf.WriteString("null")
			return nil
		}

		e.buf.WriteByte('{')

		for i, key := range v.keys {
			if i > 0 {
				e.buf.WriteByte(',')
			}

			if err := e.leaf(key); err != nil {
				return err
			}

			e.buf.WriteByte(':')

			if err := e.encode(v.values[key]); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}

		e.buf.WriteByte('}')
	case []any:
		e.buf.WriteByte('[')

		for i, item := range v {
			if i > 0 {
				e.buf.WriteByte(',')
			}

			if err := e.encode(item); err != nil {
				return err
			}
		}

		e.buf.WriteByte(']')
	default:
		return e.leaf(v)
	}

	return nil
}

// leaf encodes a value with encoding/json, dropping the newline the
// encoder appends.
func (e *encoder) leaf(value any) error {
	if err := e.enc.Encode(value); err != nil {
		return err
	}

	e.buf.Truncate(e.buf.Len() - 1)

	return nil
}
