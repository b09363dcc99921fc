package format

import (
	"net/http"
	"net/url"
	"strings"

	"go.followtheprocess.codes/pmconv/internal/spec"
)

// WgetRenderer renders requests as wget shell scripts.
type WgetRenderer struct{}

// Render implements [Renderer] for [WgetRenderer].
//
// A form body is sent urlencoded, in the query string for a GET and as body data
// otherwise. File fields cannot be urlencoded and are left out along with disabled
// fields.
func (w WgetRenderer) Render(request spec.Request) (string, error) {
	verb, err := request.Method()
	if err != nil {
		return "", err
	}

	s := newScript(request.Description)
	s.command("wget")
	s.arg("--no-check-certificate")
	s.arg("--timeout 0")
	s.arg("--method " + verb)

	for _, header := range request.Headers.All() {
		if header.Disabled {
			continue
		}

		s.arg("--header " + quote(header.Name+": "+header.Value))
	}

	target := request.URL

	if request.HasBody() {
		switch request.BodyMode {
		case spec.BodyModeFormData:
			query := urlencode(request.Form)

			switch {
			case query == "":
				// Nothing that can be urlencoded
			case verb == http.MethodGet:
				sep := "?"
				if strings.Contains(target, "?") {
					sep = "&"
				}

				target += sep + query
			default:
				s.arg("--body-data " + quote(query))
			}
		default:
			if verb != http.MethodGet {
				s.arg("--body-data " + quote(request.Body))
			}
		}
	}

	s.add("\t" + quoteURL(target))

	return s.String(), nil
}

// urlencode encodes the enabled, non file fields of a form as a query string,
// keeping their order.
func urlencode(form spec.Form) string {
	pairs := make([]string, 0, len(form))

	for _, field := range form {
		if field.Disabled || field.IsFile() {
			continue
		}

		pairs = append(pairs, url.QueryEscape(field.Name)+"="+url.QueryEscape(field.Value))
	}

	return strings.Join(pairs, "&")
}
