package schema

import (
	"strings"

	"go.followtheprocess.codes/pmconv/internal/tree"
)

// authToV20 rewrites the auth parameter list of owner into a flat object.
//
//	{"type": "bearer", "bearer": [{"key": "token", "value": "x", "type": "string"}]}
//
// becomes
//
//	{"type": "bearer", "bearer": {"token": "x"}}
func authToV20(owner *tree.Object) {
	auth, kind, ok := authOf(owner)
	if !ok {
		return
	}

	params, ok := auth.Array(kind)
	if !ok {
		return
	}

	flat := tree.NewObject()

	for _, raw := range params {
		param, ok := raw.(*tree.Object)
		if !ok {
			continue
		}

		key, ok := param.String("key")
		if !ok {
			continue
		}

		value, ok := param.Get("value")
		if !ok || value == nil {
			value = ""
		}

		flat.Set(key, value)
	}

	auth.Set(kind, flat)
}

// authToV21 is the inverse of authToV20, every member of the flat parameter
// object becomes a {key, value, type: "string"} entry.
func authToV21(owner *tree.Object) {
	auth, kind, ok := authOf(owner)
	if !ok {
		return
	}

	flat, ok := auth.Object(kind)
	if !ok {
		return
	}

	params := make([]any, 0, flat.Len())

	for key, value := range flat.All() {
		param := tree.NewObject()
		param.Set("key", key)
		param.Set("value", value)
		param.Set("type", "string")

		params = append(params, param)
	}

	auth.Set(kind, params)
}

// authOf returns the auth object of owner and its parameter member name, ok is
// false if there is nothing to convert, including for noauth.
func authOf(owner *tree.Object) (auth *tree.Object, kind string, ok bool) {
	auth, ok = owner.Object("auth")
	if !ok {
		return nil, "", false
	}

	kind, ok = auth.String("type")
	if !ok {
		return nil, "", false
	}

	kind = strings.ToLower(kind)
	if kind == "" || kind == "noauth" {
		return nil, "", false
	}

	return auth, kind, true
}
