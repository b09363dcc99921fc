package schema_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"go.followtheprocess.codes/pmconv/internal/collection"
	"go.followtheprocess.codes/pmconv/internal/schema"
	"go.followtheprocess.codes/pmconv/internal/tree"
	"go.followtheprocess.codes/snapshot"
	"go.followtheprocess.codes/test"
)

var (
	update = flag.Bool("update", false, "Update snapshots")
	clean  = flag.Bool("clean", false, "Erase and regenerate all snapshots")
)

// encode returns the compact JSON for a tree value.
func encode(t *testing.T, value any) string {
	t.Helper()

	out, err := tree.Marshal(value)
	test.Ok(t, err)

	return string(out)
}

// object parses a JSON object.
func object(t *testing.T, data string) *tree.Object {
	t.Helper()

	value, err := tree.Parse([]byte(data))
	test.Ok(t, err)

	obj, ok := value.(*tree.Object)
	test.True(t, ok)

	return obj
}

// path walks down a chain of object members and array indices.
func path(t *testing.T, root *tree.Object, steps ...any) any {
	t.Helper()

	var current any = root

	for _, step := range steps {
		switch s := step.(type) {
		case string:
			obj, ok := current.(*tree.Object)
			test.True(t, ok, test.Context("%v is not an object", current))

			current, ok = obj.Get(s)
			test.True(t, ok, test.Context("missing member %q", s))
		case int:
			arr, ok := current.([]any)
			test.True(t, ok, test.Context("%v is not an array", current))
			test.True(t, s < len(arr), test.Context("index %d out of range", s))

			current = arr[s]
		}
	}

	return current
}

func TestToV20(t *testing.T) {
	coll, err := collection.Load(filepath.Join("testdata", "v21.postman_collection.json"))
	test.Ok(t, err)

	before := encode(t, coll.Tree())

	doc, converted := schema.Convert(coll, collection.Version20)
	test.True(t, converted)

	test.Equal(t, path(t, doc, "info", "schema"), any("https://schema.getpostman.com/json/collection/v2.0.0/collection.json"))

	// Top level auth flattened
	test.Equal(t, encode(t, path(t, doc, "auth")), `{"type":"apikey","apikey":{"key":"X-Api-Key","value":"secret"}}`)

	// noauth on the folder untouched
	test.Equal(t, encode(t, path(t, doc, "item", 0, "auth")), `{"type":"noauth"}`)

	// Request auth flattened and url reduced to raw
	request := path(t, doc, "item", 0, "item", 0, "request")
	test.Equal(t, encode(t, path(t, request.(*tree.Object), "auth")), `{"type":"bearer","bearer":{"token":"abc123"}}`)
	test.Equal(t, path(t, request.(*tree.Object), "url"), any("https://example.com/api/v1/orders"))

	// Saved responses too
	test.Equal(t, path(t, doc, "item", 0, "item", 0, "response", 0, "originalRequest", "url"), any("https://example.com/api/v1/orders"))

	test.Equal(t, path(t, doc, "item", 1, "request", "url"), any("https://example.com/health"))

	// The collection itself is never touched
	test.Equal(t, encode(t, coll.Tree()), before)
}

func TestToV21URL(t *testing.T) {
	tests := []struct {
		name string // Name of the test case
		url  string // v2.0 url as JSON
		want string // Expected v2.1 url as compact JSON
	}{
		{
			name: "full",
			url:  `"https://example.com/api/v1/users"`,
			want: `{"raw":"https://example.com/api/v1/users","protocol":"https","host":["example.com"],"path":["api","v1","users"]}`,
		},
		{
			name: "host only",
			url:  `"example.com"`,
			want: `{"raw":"example.com","host":["example.com"]}`,
		},
		{
			name: "no path",
			url:  `"http://localhost:8080"`,
			want: `{"raw":"http://localhost:8080","protocol":"http","host":["localhost:8080"],"path":[]}`,
		},
		{
			name: "query string stays in the last segment",
			url:  `"{{base}}/search?q=1"`,
			want: `{"raw":"{{base}}/search?q=1","protocol":"{{base}}","host":["search?q=1"],"path":[]}`,
		},
		{
			name: "only slashes",
			url:  `"///"`,
			want: `{"raw":"///","host":["///"]}`,
		},
		{
			name: "empty string untouched",
			url:  `""`,
			want: `""`,
		},
		{
			name: "already structured",
			url:  `{"raw":"x"}`,
			want: `{"raw":"x"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := object(t, `{
				"info": {"name": "n", "schema": "https://schema.getpostman.com/json/collection/v2.0.0/collection.json"},
				"item": [{"name": "r", "request": {"method": "GET", "url": `+tt.url+`}}]
			}`)

			got := schema.ToV21(doc)
			test.Equal(t, encode(t, path(t, got, "item", 0, "request", "url")), tt.want)
			test.Equal(t, path(t, got, "info", "schema"), any("https://schema.getpostman.com/json/collection/v2.1.0/collection.json"))

			// Source untouched
			test.Equal(t, encode(t, path(t, doc, "item", 0, "request", "url")), tt.url)
		})
	}
}

func TestToV21Auth(t *testing.T) {
	doc := object(t, `{
		"info": {"name": "n", "schema": "https://schema.getpostman.com/json/collection/v2.0.0/collection.json"},
		"item": [{"name": "r", "request": {"method": "GET", "url": "x", "auth": {"type": "bearer", "bearer": {"token": "abc123"}}}}],
		"auth": {"type": "noauth"}
	}`)

	got := schema.ToV21(doc)

	test.Equal(t,
		encode(t, path(t, got, "item", 0, "request", "auth")),
		`{"type":"bearer","bearer":[{"key":"token","value":"abc123","type":"string"}]}`,
	)
	test.Equal(t, encode(t, path(t, got, "auth")), `{"type":"noauth"}`)
}

func TestRoundTrip(t *testing.T) {
	coll, err := collection.Load(filepath.Join("testdata", "v21.postman_collection.json"))
	test.Ok(t, err)

	v20 := schema.ToV20(coll.Tree())
	v21 := schema.ToV21(v20)

	// Auth recovers exactly, modulo the param type which v2.0 does not carry
	test.Equal(t,
		encode(t, path(t, v21, "item", 0, "item", 0, "request", "auth")),
		`{"type":"bearer","bearer":[{"key":"token","value":"abc123","type":"string"}]}`,
	)

	// URL comes back structured with the same raw value
	url, ok := path(t, v21, "item", 0, "item", 0, "request", "url").(*tree.Object)
	test.True(t, ok)

	raw, _ := url.String("raw")
	test.Equal(t, raw, "https://example.com/api/v1/orders")

	protocol, _ := url.String("protocol")
	test.Equal(t, protocol, "https")

	test.Equal(t, path(t, v21, "info", "schema"), any(coll.Schema()))
}

func TestConvertPassthrough(t *testing.T) {
	coll, err := collection.Load(filepath.Join("testdata", "v21.postman_collection.json"))
	test.Ok(t, err)

	doc, converted := schema.Convert(coll, collection.Version21)
	test.False(t, converted)
	test.Equal(t, encode(t, doc), encode(t, coll.Tree()))

	unknown, err := collection.Parse("u.json", []byte(`{"info": {"name": "u", "schema": "https://example.com/v9"}, "item": [{"name": "r", "request": {"url": {"raw": "x"}}}]}`))
	test.Ok(t, err)

	doc, converted = schema.Convert(unknown, collection.Version20)
	test.False(t, converted)
	test.Equal(t, encode(t, doc), encode(t, unknown.Tree()))
}

func TestConvertSnapshot(t *testing.T) {
	coll, err := collection.Load(filepath.Join("testdata", "v21.postman_collection.json"))
	test.Ok(t, err)

	targets := []struct {
		name   string             // Name of the test case
		target collection.Version // Version to convert to
	}{
		{name: "downgrade", target: collection.Version20},
		{name: "round trip", target: collection.Version21},
	}

	for _, tt := range targets {
		t.Run(tt.name, func(t *testing.T) {
			snap := snapshot.New(
				t,
				snapshot.Update(*update),
				snapshot.Clean(*clean),
				snapshot.Color(os.Getenv("CI") == ""),
			)

			doc, _ := schema.Convert(coll, tt.target)
			if tt.target == collection.Version21 {
				doc = schema.ToV21(schema.ToV20(doc))
			}

			got, err := tree.MarshalIndent(doc, "  ")
			test.Ok(t, err)

			snap.Snap(string(got))
		})
	}
}
