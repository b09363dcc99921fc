package format

import (
	"fmt"

	"go.followtheprocess.codes/pmconv/internal/spec"
)

// HTTPRenderer renders requests as raw .http files.
type HTTPRenderer struct{}

// Render implements [Renderer] for [HTTPRenderer].
//
// Disabled headers and form fields are kept but commented out. File form fields are
// written as "key=path".
func (h HTTPRenderer) Render(request spec.Request) (string, error) {
	verb, err := request.Method()
	if err != nil {
		return "", err
	}

	url := request.URL
	if url == "" {
		url = "<empty url>"
	}

	out := &lines{}
	out.description(request.Description)
	out.add(fmt.Sprintf("%s %s HTTP/%s", verb, url, request.HTTPVersion))

	for _, header := range request.Headers.All() {
		out.add(fmt.Sprintf("%s%s: %s", commentIf(header.Disabled), header.Name, header.Value))
	}

	if !request.HasBody() {
		return out.String(), nil
	}

	out.add("")

	switch request.BodyMode {
	case spec.BodyModeFormData:
		for _, field := range request.Form {
			out.add(fmt.Sprintf("%s%s=%s", commentIf(field.Disabled), field.Name, field.Value))
		}
	default:
		out.add(request.Body)
	}

	return out.String(), nil
}

// commentIf returns the comment prefix if disabled is true.
func commentIf(disabled bool) string {
	if disabled {
		return "# "
	}

	return ""
}
