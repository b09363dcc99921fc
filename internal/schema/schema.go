// Package schema rewrites collection documents between the v2.0 and v2.1 Postman
// collection schemas.
//
// The two schemas differ in how they represent auth parameters (a flat object in v2.0,
// a list of key/value objects in v2.1) and request URLs (a string in v2.0, a structured
// object in v2.1). Conversion never touches the source document, it always works on a
// deep copy and returns it.
package schema

import (
	"strings"

	"go.followtheprocess.codes/pmconv/internal/collection"
	"go.followtheprocess.codes/pmconv/internal/tree"
)

// Convert returns a copy of the collection document in the target version.
//
// Only a collection in the other version is rewritten, any other collection (one
// already in the target version or of an unknown version) is returned as an
// unmodified copy and converted is false.
func Convert(coll *collection.Collection, target collection.Version) (doc *tree.Object, converted bool) {
	switch {
	case target == collection.Version20 && coll.Version() == collection.Version21:
		return ToV20(coll.Tree()), true
	case target == collection.Version21 && coll.Version() == collection.Version20:
		return ToV21(coll.Tree()), true
	default:
		return coll.Tree(), false
	}
}

// ToV20 returns a copy of a v2.1 document rewritten to v2.0.
func ToV20(root *tree.Object) *tree.Object {
	doc := root.Clone()
	rewrite(doc, "/v2.1.", "/v2.0.", authToV20, urlToV20)

	return doc
}

// ToV21 returns a copy of a v2.0 document rewritten to v2.1.
func ToV21(root *tree.Object) *tree.Object {
	doc := root.Clone()
	rewrite(doc, "/v2.0.", "/v2.1.", authToV21, urlToV21)

	return doc
}

// rewrite converts doc in place: the schema URI, the top level auth and then
// every folder and request beneath it.
func rewrite(doc *tree.Object, from, to string, auth func(*tree.Object), url func(any) any) {
	if info, ok := doc.Object("info"); ok {
		if uri, ok := info.String("schema"); ok {
			info.Set("schema", strings.Replace(uri, from, to, 1))
		}
	}

	r := rewriter{auth: auth, url: url}
	r.auth(doc)

	items, _ := doc.Array("item")
	r.items(items)
}

// rewriter applies the auth and url rewrites of one direction to a tree of items.
type rewriter struct {
	auth func(owner *tree.Object) // Rewrites owner's auth member in place
	url  func(url any) any        // Returns the rewritten url
}

func (r rewriter) items(items []any) {
	for _, raw := range items {
		node, ok := raw.(*tree.Object)
		if !ok || node == nil {
			continue
		}

		if collection.IsFolder(node) {
			r.auth(node)

			children, _ := node.Array("item")
			r.items(children)

			continue
		}

		r.request(node)
	}
}

// request rewrites a request item along with the original request of every
// saved response.
func (r rewriter) request(node *tree.Object) {
	if request, ok := node.Object("request"); ok {
		r.auth(request)

		if url, ok := request.Get("url"); ok {
			request.Set("url", r.url(url))
		}
	}

	responses, _ := node.Array("response")
	for _, raw := range responses {
		response, ok := raw.(*tree.Object)
		if !ok {
			continue
		}

		original, ok := response.Object("originalRequest")
		if !ok {
			continue
		}

		if url, ok := original.Get("url"); ok {
			original.Set("url", r.url(url))
		}
	}
}
