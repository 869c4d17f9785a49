// # internal/resolver/resolver.go
package resolver

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"phpnav/internal/core/errors"
	"phpnav/internal/index"
	"phpnav/internal/scanner"
	"phpnav/internal/shared/observability"
)

// Resolver owns the declaration index for one root directory. The index is
// built explicitly via Rebuild; there is no implicit cache that can hand back
// stale results. Lookups against the current index are cheap concurrent reads.
type Resolver struct {
	root    string
	scanner *scanner.Scanner

	mu    sync.RWMutex
	idx   *index.Index
	decls []scanner.Declaration // Scan-order source of the current index

	// Concurrent Rebuild calls for the same root collapse into one scan.
	flights singleflight.Group
}

func New(root string, sc *scanner.Scanner) (*Resolver, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New(errors.CodeNoRoot, "no project root configured")
	}
	if sc == nil {
		return nil, errors.New(errors.CodeValidationError, "scanner is required")
	}
	return &Resolver{root: root, scanner: sc}, nil
}

func (r *Resolver) Root() string {
	return r.root
}

// Rebuild rescans the root and swaps in a fresh index. Safe for concurrent
// use: overlapping calls share a single scan and all observe its result.
func (r *Resolver) Rebuild(ctx context.Context) error {
	ctx, span := observability.Tracer.Start(ctx, "resolver.Rebuild")
	defer span.End()

	_, err, _ := r.flights.Do(r.root, func() (interface{}, error) {
		decls, err := r.scanner.Scan(ctx, r.root)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxRoot, r.root)
		}
		r.swap(decls)
		return nil, nil
	})
	return err
}

// Restore installs an index built from previously persisted declarations,
// preserving their original scan order.
func (r *Resolver) Restore(decls []scanner.Declaration) {
	r.swap(decls)
}

func (r *Resolver) swap(decls []scanner.Declaration) {
	ix := index.Build(decls)
	r.mu.Lock()
	r.idx = ix
	r.decls = decls
	r.mu.Unlock()
	observability.RebuildsTotal.Inc()
	observability.DeclarationsIndexed.Set(float64(ix.Len()))
}

// Declarations returns a copy of the scan-order declarations backing the
// current index.
func (r *Resolver) Declarations() []scanner.Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]scanner.Declaration(nil), r.decls...)
}

// Snapshot returns the current index, which may be nil before the first
// Rebuild.
func (r *Resolver) Snapshot() *index.Index {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.idx
}

// Lookup resolves an exact simple or fully-qualified name against the current
// index.
func (r *Resolver) Lookup(name string) (scanner.Declaration, error) {
	d, ok := r.Snapshot().Lookup(name)
	if !ok {
		observability.LookupsTotal.WithLabelValues("not_found").Inc()
		err := errors.New(errors.CodeNotFound, fmt.Sprintf("no declaration found for %q", name))
		return scanner.Declaration{}, errors.AddContext(err, errors.CtxSymbol, name)
	}
	observability.LookupsTotal.WithLabelValues("found").Inc()
	return d, nil
}

// ResolveSelection trims raw selected text before lookup, mirroring what an
// editor hands over for a hovered or selected word.
func (r *Resolver) ResolveSelection(selection string) (scanner.Declaration, error) {
	return r.Lookup(strings.TrimSpace(selection))
}
