// # internal/index/index.go
package index

import (
	"strings"
	"time"

	"phpnav/internal/scanner"
)

// Index maps lookup keys (simple names and fully-qualified names) to
// declarations. At most one declaration is stored per key: later insertions
// overwrite earlier ones, so build order decides collisions.
type Index struct {
	entries map[string]scanner.Declaration
	count   int
	builtAt time.Time
}

// Build creates an index from declarations in their scan order.
func Build(decls []scanner.Declaration) *Index {
	ix := &Index{
		entries: make(map[string]scanner.Declaration, len(decls)*2),
		count:   len(decls),
		builtAt: time.Now().UTC(),
	}
	for _, d := range decls {
		ix.entries[d.SimpleName] = d
		ix.entries[d.FQN] = d
	}
	return ix
}

// Lookup resolves an exact simple or fully-qualified name.
func (ix *Index) Lookup(name string) (scanner.Declaration, bool) {
	if ix == nil {
		return scanner.Declaration{}, false
	}
	d, ok := ix.entries[name]
	return d, ok
}

// ResolveSelection trims raw selected text and forwards to Lookup.
func (ix *Index) ResolveSelection(selection string) (scanner.Declaration, bool) {
	return ix.Lookup(strings.TrimSpace(selection))
}

// Len returns the number of declarations the index was built from.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.count
}

// Keys returns the number of distinct lookup keys.
func (ix *Index) Keys() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// BuiltAt reports when the index was constructed.
func (ix *Index) BuiltAt() time.Time {
	if ix == nil {
		return time.Time{}
	}
	return ix.builtAt
}
