package schema

import (
	"strings"

	"go.followtheprocess.codes/pmconv/internal/tree"
)

// urlToV20 reduces a structured URL to its raw string, anything else is returned
// as is.
func urlToV20(url any) any {
	obj, ok := url.(*tree.Object)
	if !ok || obj == nil {
		return url
	}

	raw, _ := obj.String("raw")

	return raw
}

// urlToV21 expands a string URL into a structured one by splitting it on "/".
//
// This is a heuristic rather than a URI parser: the first segment is the protocol,
// the second the host and the rest the path. Query strings, fragments, ports and
// credentials are not broken out and only survive in "raw".
func urlToV21(url any) any {
	raw, ok := url.(string)
	if !ok || raw == "" {
		return url
	}

	var segments []string

	for segment := range strings.SplitSeq(raw, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	obj := tree.NewObject()
	obj.Set("raw", raw)

	switch len(segments) {
	case 0:
		obj.Set("host", []any{raw})
	case 1:
		obj.Set("host", []any{segments[0]})
	default:
		path := make([]any, 0, len(segments)-2)
		for _, segment := range segments[2:] {
			path = append(path, segment)
		}

		obj.Set("protocol", strings.ReplaceAll(segments[0], ":", ""))
		obj.Set("host", []any{segments[1]})
		obj.Set("path", path)
	}

	return obj
}
