package format

import (
	"go.followtheprocess.codes/pmconv/internal/spec"
)

// CurlRenderer renders requests as curl shell scripts.
type CurlRenderer struct{}

// Render implements [Renderer] for [CurlRenderer].
//
// Disabled headers and form fields are left out.
func (c CurlRenderer) Render(request spec.Request) (string, error) {
	verb, err := request.Method()
	if err != nil {
		return "", err
	}

	s := newScript(request.Description)
	s.command("curl")
	s.arg(curlVersionFlag(request.HTTPVersion))
	s.arg("--request " + verb)
	s.arg("--location " + quoteURL(request.URL))

	for _, header := range request.Headers.All() {
		if header.Disabled {
			continue
		}

		s.arg("--header " + quote(header.Name+": "+header.Value))
	}

	if request.HasBody() {
		switch request.BodyMode {
		case spec.BodyModeFormData:
			for _, field := range request.Form {
				if field.Disabled {
					continue
				}

				value := field.Value
				if field.IsFile() {
					value = "@" + value
				}

				s.arg("--form " + quote(field.Name+"="+value))
			}
		default:
			s.arg("--data " + quote(request.Body))
		}
	}

	return s.String(), nil
}

// curlVersionFlag returns the curl flag selecting an HTTP version e.g. "--http1.1".
func curlVersionFlag(version string) string {
	if version == "" {
		version = spec.DefaultHTTPVersion
	}

	return "--http" + version
}
