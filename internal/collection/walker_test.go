package collection

import (
	"testing"

	"go.followtheprocess.codes/pmconv/internal/tree"
	"go.followtheprocess.codes/test"
)

func TestWalkerStackBalanced(t *testing.T) {
	value, err := tree.Parse([]byte(`[
		{"name": "a", "item": [
			{"name": "b", "item": [{"name": "leaf", "request": "https://x.com"}]},
			{"name": "sibling", "request": "https://y.com"}
		]}
	]`))
	test.Ok(t, err)

	items, ok := value.([]any)
	test.True(t, ok)

	w := &walker{}
	complete := w.walk(items, func(string, Item) bool { return true })
	test.True(t, complete)
	test.Equal(t, len(w.stack), 0, test.Context("stack not empty after full walk: %v", w.stack))

	w = &walker{}
	complete = w.walk(items, func(path string, _ Item) bool {
		test.Equal(t, path, "/a/b")
		return false
	})
	test.False(t, complete)
	test.Equal(t, len(w.stack), 0, test.Context("stack not empty after early stop: %v", w.stack))
}

func TestScalar(t *testing.T) {
	value, err := tree.Parse([]byte(`[null, "s", true, 1.50, {"a": 1}, [1]]`))
	test.Ok(t, err)

	values, ok := value.([]any)
	test.True(t, ok)

	got := make([]string, 0, len(values))
	for _, v := range values {
		got = append(got, scalar(v))
	}

	want := []string{"", "s", "true", "1.50", `{"a":1}`, "[1]"}
	for i := range want {
		test.Equal(t, got[i], want[i])
	}
}
