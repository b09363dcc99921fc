package collection

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.followtheprocess.codes/pmconv/internal/tree"
)

// ErrNoRequest is returned when a request item has no request object.
var ErrNoRequest = errors.New("item has no request")

// Item is a request leaf of a collection.
type Item struct {
	node    *tree.Object // The raw item node, read only
	Name    string       // The item name
	Folders []string     // Names of the enclosing folders, outermost first
}

// Node returns the raw item node. It belongs to the collection and must not
// be modified.
func (i Item) Node() *tree.Object {
	return i.node
}

// Request decodes the item's request object.
//
// The collection format allows a request to be given as a bare URL string, in
// which case it is a GET to that URL.
func (i Item) Request() (Request, error) {
	raw, ok := i.node.Get("request")
	if !ok || raw == nil {
		return Request{}, ErrNoRequest
	}

	if url, ok := raw.(string); ok {
		return Request{Method: "GET", URL: URL{Raw: url}}, nil
	}

	data, err := tree.Marshal(raw)
	if err != nil {
		return Request{}, fmt.Errorf("could not encode request: %w", err)
	}

	var request Request
	if err := json.Unmarshal(data, &request); err != nil {
		return Request{}, fmt.Errorf("could not decode request %q: %w", i.Name, err)
	}

	return request, nil
}

// Request is a typed view of a collection request object, covering both schema
// versions.
type Request struct {
	Auth        *Auth       `json:"auth,omitempty"`
	Body        *Body       `json:"body,omitempty"`
	Method      string      `json:"method"`
	Description Description `json:"description"`
	URL         URL         `json:"url"`
	Header      Headers     `json:"header"`
}

// Header is a single request header.
type Header struct {
	Key      string `json:"key"`
	Value    Text   `json:"value"`
	Disabled bool   `json:"disabled"`
}

// Headers is the request header list.
//
// v2.0 collections may give headers as a single "Key: Value" block of text
// rather than a list, both decode to the same thing.
type Headers []Header

// UnmarshalJSON implements [json.Unmarshaler] for [Headers].
func (h *Headers) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*h = nil
		return nil
	case data[0] == '"':
		var block string
		if err := json.Unmarshal(data, &block); err != nil {
			return err
		}

		var headers Headers

		for line := range strings.Lines(block) {
			key, value, ok := strings.Cut(line, ":")
			if !ok || strings.TrimSpace(key) == "" {
				continue
			}

			headers = append(headers, Header{
				Key:   strings.TrimSpace(key),
				Value: Text(strings.TrimSpace(value)),
			})
		}

		*h = headers

		return nil
	default:
		var headers []Header
		if err := json.Unmarshal(data, &headers); err != nil {
			return err
		}

		*h = headers

		return nil
	}
}

// Body modes understood by the converters.
const (
	BodyModeRaw      = "raw"
	BodyModeFormData = "formdata"
)

// Body is a request body.
type Body struct {
	Mode     string      `json:"mode"`
	Raw      string      `json:"raw"`
	FormData []FormField `json:"formdata"`
	Options  BodyOptions `json:"options"`
	Disabled bool        `json:"disabled"`
}

// IsEmpty reports whether the body has no content for its mode.
func (b *Body) IsEmpty() bool {
	if b == nil || b.Disabled {
		return true
	}

	switch b.Mode {
	case BodyModeRaw:
		return b.Raw == ""
	case BodyModeFormData:
		return len(b.FormData) == 0
	default:
		return true
	}
}

// BodyOptions are the per-mode body options.
type BodyOptions struct {
	Raw RawOptions `json:"raw"`
}

// RawOptions are the options for a raw body.
type RawOptions struct {
	Language string `json:"language"`
}

// FormField is a single multipart form field.
type FormField struct {
	Key      string `json:"key"`
	Value    Text   `json:"value"`
	Src      Source `json:"src"`
	Type     string `json:"type"`
	Disabled bool   `json:"disabled"`
}

// Source is the source path of a file form field, v2.1 allows a list of paths
// in which case the first is used.
type Source string

// UnmarshalJSON implements [json.Unmarshaler] for [Source].
func (s *Source) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var paths []string
		if err := json.Unmarshal(data, &paths); err != nil {
			return err
		}

		*s = ""
		if len(paths) > 0 {
			*s = Source(paths[0])
		}

		return nil
	}

	var text Text
	if err := text.UnmarshalJSON(data); err != nil {
		return err
	}

	*s = Source(text)

	return nil
}

// URL is a request URL, given either as a string (v2.0) or as an object with a raw
// member (v2.1).
type URL struct {
	Raw string // The URL as a string
}

// UnmarshalJSON implements [json.Unmarshaler] for [URL].
func (u *URL) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		u.Raw = ""
		return nil
	case data[0] == '"':
		return json.Unmarshal(data, &u.Raw)
	case data[0] == '{':
		var obj struct {
			Raw      string   `json:"raw"`
			Protocol string   `json:"protocol"`
			Port     Text     `json:"port"`
			Host     Segments `json:"host"`
			Path     Segments `json:"path"`
		}

		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}

		u.Raw = obj.Raw
		if u.Raw == "" && len(obj.Host) > 0 {
			u.Raw = buildURL(obj.Protocol, obj.Host, string(obj.Port), obj.Path)
		}

		return nil
	default:
		return fmt.Errorf("url must be a string or an object, got %s", data)
	}
}

// buildURL assembles a URL from its structured parts, used when a v2.1 URL
// object has no raw member.
func buildURL(protocol string, host []string, port string, path []string) string {
	s := &strings.Builder{}

	if protocol != "" {
		s.WriteString(protocol)
		s.WriteString("://")
	}

	s.WriteString(strings.Join(host, "."))

	if port != "" {
		s.WriteByte(':')
		s.WriteString(port)
	}

	if len(path) > 0 {
		s.WriteByte('/')
		s.WriteString(strings.Join(path, "/"))
	}

	return s.String()
}

// Segments is a host or path segment list. Postman allows a single string
// and path variables given as objects, both are accepted.
type Segments []string

// UnmarshalJSON implements [json.Unmarshaler] for [Segments].
func (s *Segments) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var segment string
		if err := json.Unmarshal(data, &segment); err != nil {
			return err
		}

		*s = Segments{segment}

		return nil
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	segments := make([]string, 0, len(raw))

	for _, item := range raw {
		switch v := item.(type) {
		case string:
			segments = append(segments, v)
		case map[string]any:
			if value, ok := v["value"].(string); ok {
				segments = append(segments, value)
			}
		}
	}

	*s = segments

	return nil
}

// Description is a request description, either a string or an object with
// a content member.
type Description string

// UnmarshalJSON implements [json.Unmarshaler] for [Description].
func (d *Description) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Content string `json:"content"`
		}

		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}

		*d = Description(obj.Content)

		return nil
	}

	var text Text
	if err := text.UnmarshalJSON(data); err != nil {
		return err
	}

	*d = Description(text)

	return nil
}

// Text is a string that tolerates being given as any JSON scalar, numbers
// and booleans are kept in their JSON form and null is empty.
type Text string

// UnmarshalJSON implements [json.Unmarshaler] for [Text].
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*t = Text(s)
	default:
		*t = Text(data)
	}

	return nil
}

// String implements [fmt.Stringer] for [Text].
func (t Text) String() string {
	return string(t)
}

// Auth is an auth definition from a request, folder or collection.
type Auth struct {
	params any    // The member named after Type, list (v2.1) or object (v2.0)
	Type   string // The auth type e.g. "bearer", "noauth"
}

// newAuth builds an [Auth] from its raw object.
func newAuth(obj *tree.Object) Auth {
	kind, _ := obj.String("type")
	params, _ := obj.Get(kind)

	return Auth{Type: kind, params: params}
}

// UnmarshalJSON implements [json.Unmarshaler] for [Auth].
func (a *Auth) UnmarshalJSON(data []byte) error {
	value, err := tree.Parse(data)
	if err != nil {
		return err
	}

	if value == nil {
		*a = Auth{}
		return nil
	}

	obj, ok := value.(*tree.Object)
	if !ok {
		return fmt.Errorf("auth must be an object, got %s", kind(value))
	}

	*a = newAuth(obj)

	return nil
}

// Param returns the value of an auth parameter, looked up by key in either
// the v2.1 list form or the v2.0 object form.
func (a Auth) Param(key string) (string, bool) {
	switch params := a.params.(type) {
	case []any:
		for _, raw := range params {
			param, ok := raw.(*tree.Object)
			if !ok {
				continue
			}

			if k, _ := param.String("key"); k == key {
				value, _ := param.Get("value")
				return scalar(value), true
			}
		}
	case *tree.Object:
		value, ok := params.Get(key)
		if ok {
			return scalar(value), true
		}
	}

	return "", false
}

// BearerToken returns the token of a bearer auth: the value of the first
// parameter in the v2.1 list form, or the "token" member of the v2.0 object form.
func (a Auth) BearerToken() (string, bool) {
	if a.Type != "bearer" {
		return "", false
	}

	if params, ok := a.params.([]any); ok {
		if len(params) == 0 {
			return "", false
		}

		first, ok := params[0].(*tree.Object)
		if !ok {
			return "", false
		}

		value, _ := first.Get("value")

		return scalar(value), true
	}

	return a.Param("token")
}

// scalar renders a tree value as a plain string.
func scalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		out, err := tree.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(out)
	}
}
