package format_test

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.followtheprocess.codes/pmconv/internal/collection"
	"go.followtheprocess.codes/pmconv/internal/format"
	"go.followtheprocess.codes/pmconv/internal/spec"
	"go.followtheprocess.codes/test"
	"go.followtheprocess.codes/txtar"
)

var update = flag.Bool("update", false, "Update testdata")

// build parses a single item node inside a v2.1 collection and builds its request.
func build(t *testing.T, node string) spec.Request {
	t.Helper()

	data := `{"info": {"name": "T", "schema": "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"}, "item": [` + node + `]}`

	coll, err := collection.Parse("t.json", []byte(data))
	test.Ok(t, err)

	for _, item := range coll.Iterate() {
		request, err := spec.Build(item, spec.BuildOptions{})
		test.Ok(t, err)

		return request
	}

	t.Fatal("no items in collection")

	return spec.Request{}
}

func TestRender(t *testing.T) {
	// Force colour for diffs but only locally
	test.ColorEnabled(os.Getenv("CI") == "")

	renderers := []struct {
		file     string          // Archive file holding the expected output
		renderer format.Renderer // Renderer under test
	}{
		{file: "want.http", renderer: format.HTTPRenderer{}},
		{file: "want.curl.sh", renderer: format.CurlRenderer{}},
		{file: "want.wget.sh", renderer: format.WgetRenderer{}},
	}

	files, err := filepath.Glob(filepath.Join("testdata", "render", "*.txtar"))
	test.Ok(t, err)

	for _, file := range files {
		name := filepath.Base(file)
		t.Run(name, func(t *testing.T) {
			archive, err := txtar.ParseFile(file)
			test.Ok(t, err)

			node, ok := archive.Read("item.json")
			test.True(t, ok, test.Context("%s missing item.json", file))

			request := build(t, node)

			for _, r := range renderers {
				got, err := r.renderer.Render(request)
				test.Ok(t, err)

				if *update {
					test.Ok(t, archive.Write(r.file, got))
					continue
				}

				want, ok := archive.Read(r.file)
				test.True(t, ok, test.Context("%s missing %s", file, r.file))

				test.Diff(t, got, want)
			}

			if *update {
				test.Ok(t, txtar.DumpFile(file, archive))
			}
		})
	}
}

func TestRenderEmptyVerb(t *testing.T) {
	request := spec.New("NoVerb")
	request.URL = "http://x/y"

	for _, id := range []format.ID{format.HTTP, format.Curl, format.Wget} {
		t.Run(id.String(), func(t *testing.T) {
			renderer, ok := format.RendererFor(id)
			test.True(t, ok)

			_, err := renderer.Render(request)
			test.Err(t, err)
			test.True(t, errors.Is(err, spec.ErrEmptyVerb))
		})
	}
}

func TestHTTPEmptyURL(t *testing.T) {
	request := spec.New("Nowhere")
	request.Verb = "GET"

	got, err := format.HTTPRenderer{}.Render(request)
	test.Ok(t, err)
	test.Equal(t, got, "GET <empty url> HTTP/1.1\n")
}

func TestCurlHTTPVersion(t *testing.T) {
	for _, version := range spec.HTTPVersions() {
		t.Run(version, func(t *testing.T) {
			request := spec.New("v")
			request.Verb = "GET"
			request.URL = "http://x/y"
			test.Ok(t, request.SetHTTPVersion(version))

			got, err := format.CurlRenderer{}.Render(request)
			test.Ok(t, err)
			test.True(t, strings.Contains(got, "\t--http"+version+" \\\n"), test.Context("got:\n%s", got))
		})
	}
}

func TestWgetGetForm(t *testing.T) {
	request := spec.New("Search")
	request.Verb = "GET"
	request.URL = "http://x/search"
	request.BodyMode = spec.BodyModeFormData
	request.Form.Set(spec.FormField{Name: "q", Value: "a b", Type: "text"})
	request.Form.Set(spec.FormField{Name: "upload", Value: "/tmp/f", Type: "file"})

	got, err := format.WgetRenderer{}.Render(request)
	test.Ok(t, err)

	want := "#!/bin/sh\n" +
		"wget \\\n" +
		"\t--no-check-certificate \\\n" +
		"\t--timeout 0 \\\n" +
		"\t--method GET \\\n" +
		"\t'http://x/search?q=a+b'\n"

	test.Diff(t, got, want)
	test.False(t, strings.Contains(got, "--body-data"))
	test.False(t, strings.Contains(got, "/tmp/f"))
}

func TestWgetGetFormExistingQuery(t *testing.T) {
	request := spec.New("Search")
	request.Verb = "GET"
	request.URL = "http://x/search?page=2"
	request.BodyMode = spec.BodyModeFormData
	request.Form.Set(spec.FormField{Name: "q", Value: "a b", Type: "text"})

	got, err := format.WgetRenderer{}.Render(request)
	test.Ok(t, err)

	test.True(t, strings.HasSuffix(got, "\t'http://x/search?page=2&q=a+b'\n"), test.Context("got:\n%s", got))
	test.False(t, strings.Contains(got, "??"))
}

func TestWgetOnlyFileFields(t *testing.T) {
	request := spec.New("Upload")
	request.Verb = "POST"
	request.URL = "http://x/upload"
	request.BodyMode = spec.BodyModeFormData
	request.Form.Set(spec.FormField{Name: "upload", Value: "/tmp/f", Type: "file"})

	got, err := format.WgetRenderer{}.Render(request)
	test.Ok(t, err)

	test.False(t, strings.Contains(got, "--body-data"))
	test.True(t, strings.HasSuffix(got, "\thttp://x/upload\n"))
}
