package spec

import (
	"fmt"
	"net/http"
	"strings"

	"go.followtheprocess.codes/pmconv/internal/collection"
	"go.followtheprocess.codes/pmconv/internal/environment"
	"go.followtheprocess.codes/pmconv/internal/fsutil"
)

// Request is a single HTTP request from a collection as a canonical, format agnostic
// representation.
type Request struct {
	// Request headers, may have variable interpolation in the values
	Headers Headers

	// Form fields, only used when BodyMode is [BodyModeFormData]
	Form Form

	// The request name, from the collection item
	Name string

	// Optional request description, may span several lines
	Description string

	// The HTTP method, may be empty until the request is rendered
	Verb string

	// The complete URL, may have variable interpolation and/or not be a valid URL
	URL string

	// Version of the HTTP protocol, one of [HTTPVersions]
	HTTPVersion string

	// How the body is encoded
	BodyMode BodyMode

	// Raw request body, only used when BodyMode is [BodyModeRaw]
	Body string
}

// New returns an empty request with the defaults applied.
func New(name string) Request {
	return Request{
		Name:        name,
		HTTPVersion: DefaultHTTPVersion,
		BodyMode:    BodyModeRaw,
	}
}

// Method returns the request's HTTP method, or [ErrEmptyVerb] if it has none.
func (r Request) Method() (string, error) {
	if r.Verb == "" {
		return "", ErrEmptyVerb
	}

	return r.Verb, nil
}

// FileName returns the request name made safe to use as a file name.
func (r Request) FileName() string {
	return fsutil.SafeName(r.Name)
}

// Interpolate returns a copy of the request with variables in its description,
// URL, header values, body and form values replaced from vars. Names are left alone.
func (r Request) Interpolate(vars *environment.Table) Request {
	if vars.Len() == 0 {
		return r
	}

	out := r
	out.Description = environment.Interpolate(r.Description, vars)
	out.URL = environment.Interpolate(r.URL, vars)
	out.Body = environment.Interpolate(r.Body, vars)

	out.Headers = Headers{}
	for _, header := range r.Headers.All() {
		header.Value = environment.Interpolate(header.Value, vars)
		out.Headers.Set(header)
	}

	out.Form = nil
	for _, field := range r.Form {
		field.Value = environment.Interpolate(field.Value, vars)
		out.Form = append(out.Form, field)
	}

	return out
}

// HasBody reports whether the request carries a body.
func (r Request) HasBody() bool {
	if r.BodyMode == BodyModeFormData {
		return len(r.Form) != 0
	}

	return r.Body != ""
}

// SetHeader sets a header, replacing any header of the same name.
func (r *Request) SetHeader(name, value string) {
	r.Headers.Set(Header{Name: name, Value: value})
}

// SetHTTPVersion sets the HTTP version, returning an error wrapping [ErrInvalidHTTPVersion]
// if it is not supported.
func (r *Request) SetHTTPVersion(version string) error {
	normalised, err := ParseHTTPVersion(version)
	if err != nil {
		return err
	}

	r.HTTPVersion = normalised

	return nil
}

// SetAuth translates auth into headers. Only bearer auth is understood, every
// other type is ignored.
func (r *Request) SetAuth(auth collection.Auth) {
	token, ok := auth.BearerToken()
	if !ok {
		return
	}

	r.SetHeader("Authorization", "Bearer "+token)
}

// SetBody sets the request body, adding the matching Content-Type header.
func (r *Request) SetBody(body *collection.Body) {
	if body == nil {
		return
	}

	switch body.Mode {
	case collection.BodyModeFormData:
		r.BodyMode = BodyModeFormData
		r.SetHeader("Content-Type", "multipart/form-data")

		for _, field := range body.FormData {
			value := field.Value.String()
			if field.Type == "file" {
				value = string(field.Src)
			}

			r.Form.Set(FormField{
				Name:     field.Key,
				Value:    value,
				Type:     field.Type,
				Disabled: field.Disabled,
			})
		}
	case collection.BodyModeRaw:
		r.BodyMode = BodyModeRaw
		r.Body = body.Raw

		if body.Options.Raw.Language == "json" {
			r.SetHeader("Content-Type", "application/json")
		}
	}
}

// BuildOptions configure how requests are built.
type BuildOptions struct {
	// Collection level auth, used by requests that have none of their own
	Auth *collection.Auth

	// HTTP version to use, [DefaultHTTPVersion] if empty
	HTTPVersion string
}

// Build constructs a [Request] from a collection item.
//
// The item's headers are applied first, then auth, then the body so headers
// synthesised from auth and body mode replace any given explicitly. A body is only
// attached to requests that are not GET.
func Build(item collection.Item, options BuildOptions) (Request, error) {
	raw, err := item.Request()
	if err != nil {
		return Request{}, err
	}

	request := New(item.Name)

	if options.HTTPVersion != "" {
		if err := request.SetHTTPVersion(options.HTTPVersion); err != nil {
			return Request{}, fmt.Errorf("request %q: %w", item.Name, err)
		}
	}

	request.Description = string(raw.Description)
	request.Verb = strings.ToUpper(strings.TrimSpace(raw.Method))
	request.URL = raw.URL.Raw

	for _, header := range raw.Header {
		if header.Key == "" {
			continue
		}

		request.Headers.Set(Header{
			Name:     header.Key,
			Value:    header.Value.String(),
			Disabled: header.Disabled,
		})
	}

	switch {
	case raw.Auth != nil:
		request.SetAuth(*raw.Auth)
	case options.Auth != nil:
		request.SetAuth(*options.Auth)
	}

	if request.Verb != http.MethodGet && !raw.Body.IsEmpty() {
		request.SetBody(raw.Body)
	}

	return request, nil
}
