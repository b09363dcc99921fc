package collection_test

import (
	"errors"
	"testing"

	"go.followtheprocess.codes/pmconv/internal/collection"
	"go.followtheprocess.codes/test"
)

// firstItem parses a v2.1 collection with a single item node and returns it.
func firstItem(t *testing.T, node string) collection.Item {
	t.Helper()

	data := `{"info": {"name": "T", "schema": "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"}, "item": [` + node + `]}`

	coll, err := collection.Parse("t.json", []byte(data))
	test.Ok(t, err)

	for _, item := range coll.Iterate() {
		return item
	}

	t.Fatal("collection had no items")

	return collection.Item{}
}

func TestRequestObject(t *testing.T) {
	item := firstItem(t, `{
		"name": "Create",
		"request": {
			"method": "POST",
			"description": {"content": "Makes a thing", "type": "text/plain"},
			"header": [
				{"key": "Content-Type", "value": "application/json"},
				{"key": "X-Off", "value": "no", "disabled": true},
				{"key": "X-Count", "value": 3}
			],
			"body": {"mode": "raw", "raw": "{\"a\": 1}", "options": {"raw": {"language": "json"}}},
			"url": {"raw": "https://api.example.com/things?x=1", "host": ["api", "example", "com"]},
			"auth": {"type": "bearer", "bearer": [{"key": "token", "value": "abc"}]}
		}
	}`)

	request, err := item.Request()
	test.Ok(t, err)

	test.Equal(t, item.Name, "Create")
	test.Equal(t, request.Method, "POST")
	test.Equal(t, string(request.Description), "Makes a thing")
	test.Equal(t, request.URL.Raw, "https://api.example.com/things?x=1")

	test.Equal(t, len(request.Header), 3)
	test.Equal(t, request.Header[1].Disabled, true)
	test.Equal(t, request.Header[2].Value.String(), "3")

	test.True(t, request.Body != nil)
	test.Equal(t, request.Body.Mode, collection.BodyModeRaw)
	test.Equal(t, request.Body.Raw, `{"a": 1}`)
	test.Equal(t, request.Body.Options.Raw.Language, "json")
	test.False(t, request.Body.IsEmpty())

	test.True(t, request.Auth != nil)
	token, ok := request.Auth.BearerToken()
	test.True(t, ok)
	test.Equal(t, token, "abc")
}

func TestRequestVariants(t *testing.T) {
	tests := []struct {
		name   string // Name of the test case
		node   string // Item node
		method string // Expected method
		url    string // Expected URL
	}{
		{
			name:   "bare string request",
			node:   `{"name": "r", "request": "https://example.com/a"}`,
			method: "GET",
			url:    "https://example.com/a",
		},
		{
			name:   "string url",
			node:   `{"name": "r", "request": {"method": "PUT", "url": "https://example.com/b"}}`,
			method: "PUT",
			url:    "https://example.com/b",
		},
		{
			name:   "url without raw",
			node:   `{"name": "r", "request": {"method": "GET", "url": {"protocol": "https", "host": ["example", "com"], "port": "8443", "path": ["v1", "items"]}}}`,
			method: "GET",
			url:    "https://example.com:8443/v1/items",
		},
		{
			name:   "missing url",
			node:   `{"name": "r", "request": {"method": "HEAD"}}`,
			method: "HEAD",
			url:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request, err := firstItem(t, tt.node).Request()
			test.Ok(t, err)

			test.Equal(t, request.Method, tt.method)
			test.Equal(t, request.URL.Raw, tt.url)
		})
	}
}

func TestHeaderBlock(t *testing.T) {
	item := firstItem(t, `{"name": "r", "request": {"method": "GET", "url": "x", "header": "Accept: text/plain\nX-Trace: a:b\n\nnot a header\n"}}`)

	request, err := item.Request()
	test.Ok(t, err)

	test.Equal(t, len(request.Header), 2)
	test.Equal(t, request.Header[0].Key, "Accept")
	test.Equal(t, request.Header[0].Value.String(), "text/plain")
	test.Equal(t, request.Header[1].Key, "X-Trace")
	test.Equal(t, request.Header[1].Value.String(), "a:b")
}

func TestFormData(t *testing.T) {
	item := firstItem(t, `{"name": "Upload", "request": {
		"method": "POST",
		"url": "https://example.com/upload",
		"body": {"mode": "formdata", "formdata": [
			{"key": "name", "value": "report", "type": "text"},
			{"key": "file", "src": ["/tmp/a.pdf", "/tmp/b.pdf"], "type": "file"},
			{"key": "legacy", "src": "/tmp/c.pdf", "type": "file"},
			{"key": "skip", "value": "x", "disabled": true}
		]}
	}}`)

	request, err := item.Request()
	test.Ok(t, err)

	form := request.Body.FormData
	test.Equal(t, len(form), 4)
	test.Equal(t, form[0].Value.String(), "report")
	test.Equal(t, string(form[1].Src), "/tmp/a.pdf")
	test.Equal(t, string(form[2].Src), "/tmp/c.pdf")
	test.True(t, form[3].Disabled)
}

func TestNoRequest(t *testing.T) {
	item := firstItem(t, `{"name": "Nothing"}`)

	_, err := item.Request()
	test.True(t, errors.Is(err, collection.ErrNoRequest))
}

func TestV20Auth(t *testing.T) {
	item := firstItem(t, `{"name": "r", "request": {"method": "GET", "url": "x", "auth": {"type": "bearer", "bearer": {"token": "legacy"}}}}`)

	request, err := item.Request()
	test.Ok(t, err)

	token, ok := request.Auth.BearerToken()
	test.True(t, ok)
	test.Equal(t, token, "legacy")

	basic := firstItem(t, `{"name": "r", "request": {"method": "GET", "url": "x", "auth": {"type": "basic", "basic": [{"key": "username", "value": "me"}]}}}`)

	request, err = basic.Request()
	test.Ok(t, err)

	_, ok = request.Auth.BearerToken()
	test.False(t, ok)

	user, ok := request.Auth.Param("username")
	test.True(t, ok)
	test.Equal(t, user, "me")
}
