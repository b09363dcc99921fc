// Package spec provides the Request type, the canonical, format agnostic
// representation of a single HTTP request taken from a collection.
//
// Unlike the raw views in the collection package, a Request here is normalised:
// auth has been translated into headers, the body has been resolved to a single
// mode and the HTTP version validated. Renderers in the format package consume a
// Request and never look at the collection document directly.
package spec

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrEmptyVerb is returned when rendering a request that has no HTTP method.
	ErrEmptyVerb = errors.New("request HTTP verb must be defined before conversion")

	// ErrInvalidHTTPVersion is returned when setting an unsupported HTTP version.
	ErrInvalidHTTPVersion = errors.New("invalid HTTP version")
)

// DefaultHTTPVersion is the HTTP version used when none is given.
const DefaultHTTPVersion = "1.1"

// httpVersions are the supported HTTP versions in ascending order.
var httpVersions = []string{"1.0", "1.1", "2", "3"}

// HTTPVersions returns the supported HTTP versions.
func HTTPVersions() []string {
	return slices.Clone(httpVersions)
}

// ParseHTTPVersion normalises and validates an HTTP version, accepting an optional
// "HTTP/" prefix e.g. "HTTP/2" or "1.1".
func ParseHTTPVersion(version string) (string, error) {
	normalised := strings.TrimPrefix(strings.TrimSpace(version), "HTTP/")

	if !slices.Contains(httpVersions, normalised) {
		return "", fmt.Errorf("%w %q: only these versions are supported: %s", ErrInvalidHTTPVersion, version, strings.Join(httpVersions, ", "))
	}

	return normalised, nil
}

// BodyMode is the encoding of a request body.
type BodyMode string

const (
	// BodyModeRaw is a body sent as is.
	BodyModeRaw BodyMode = "raw"

	// BodyModeFormData is a multipart form body.
	BodyModeFormData BodyMode = "formdata"
)

// Header is a single HTTP header.
type Header struct {
	Name     string // Header name as first given
	Value    string // Header value, may contain variables
	Disabled bool   // Whether the header is switched off
}

// Headers is an ordered set of headers.
//
// Names are compared case insensitively, setting a header that already exists
// replaces its value in place, so every name appears at most once and keeps the
// position it was first given.
type Headers struct {
	index   map[string]int // Canonical name to position in entries
	entries []Header       // Headers in insertion order
}

// Set stores a header, replacing any header of the same name.
func (h *Headers) Set(header Header) {
	if h.index == nil {
		h.index = make(map[string]int)
	}

	key := strings.ToLower(header.Name)

	if i, exists := h.index[key]; exists {
		// Keep the original spelling of the name
		header.Name = h.entries[i].Name
		h.entries[i] = header

		return
	}

	h.index[key] = len(h.entries)
	h.entries = append(h.entries, header)
}

// Get returns the header stored under name.
func (h Headers) Get(name string) (Header, bool) {
	i, ok := h.index[strings.ToLower(name)]
	if !ok {
		return Header{}, false
	}

	return h.entries[i], true
}

// Len returns the number of headers.
func (h Headers) Len() int {
	return len(h.entries)
}

// All returns the headers in order.
func (h Headers) All() []Header {
	return slices.Clone(h.entries)
}

// FormField is a single field of a multipart form body.
type FormField struct {
	Name     string // Field name
	Value    string // Field value, or the source path of a file field
	Type     string // "text" or "file"
	Disabled bool   // Whether the field is switched off
}

// IsFile reports whether the field uploads a file.
func (f FormField) IsFile() bool {
	return f.Type == "file"
}

// Form is the ordered set of fields of a multipart form body, keyed by name.
type Form []FormField

// Set stores a field, replacing any field with the same name.
func (f *Form) Set(field FormField) {
	for i, existing := range *f {
		if existing.Name == field.Name {
			(*f)[i] = field
			return
		}
	}

	*f = append(*f, field)
}
