// Package pathindex maps filesystem paths to owning values by
// longest-prefix directory match. It answers "which package owns this
// file" in O(path depth) regardless of how many directories are indexed.
package pathindex

import (
	"path/filepath"
	"strings"

	radix "github.com/armon/go-radix"
)

// Index is a prefix tree keyed by directory path. Each entry claims
// ownership of the directory and everything beneath it; a query returns
// the deepest (longest-prefix) claimant, so nested entries shadow their
// ancestors.
type Index[V any] struct {
	tree *radix.Tree
}

// New creates an empty index.
func New[V any]() *Index[V] {
	return &Index[V]{tree: radix.New()}
}

// normalize cleans a path and appends a trailing separator so that prefix
// matches only occur on directory boundaries: "root/pkgA" must not match
// a lookup under "root/pkgAB".
func normalize(path string) string {
	p := filepath.ToSlash(filepath.Clean(path))
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// Insert registers dir as owned by v. Inserting the same directory twice
// replaces the previous value.
func (ix *Index[V]) Insert(dir string, v V) {
	ix.tree.Insert(normalize(dir), v)
}

// Owner returns the value whose directory is the longest ancestor prefix
// of path, which may be path itself. The second return is false when no
// indexed directory encloses path.
func (ix *Index[V]) Owner(path string) (V, bool) {
	_, raw, ok := ix.tree.LongestPrefix(normalize(path))
	if !ok {
		var zero V
		return zero, false
	}
	return raw.(V), true
}

// Len returns the number of indexed directories.
func (ix *Index[V]) Len() int {
	return ix.tree.Len()
}

// Walk visits every entry. Returning true from fn stops the walk.
func (ix *Index[V]) Walk(fn func(dir string, v V) bool) {
	ix.tree.Walk(func(key string, raw interface{}) bool {
		return fn(strings.TrimSuffix(key, "/"), raw.(V))
	})
}
