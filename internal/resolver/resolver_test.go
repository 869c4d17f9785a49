package resolver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"phpnav/internal/core/errors"
	"phpnav/internal/scanner"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestResolver(t *testing.T, root string) *Resolver {
	t.Helper()
	sc, err := scanner.New(scanner.Options{})
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(root, sc)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

func TestNewRequiresRoot(t *testing.T) {
	sc, err := scanner.New(scanner.Options{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = New("  ", sc)
	if err == nil {
		t.Fatal("Expected error for empty root")
	}
	if !errors.IsCode(err, errors.CodeNoRoot) {
		t.Errorf("Expected CodeNoRoot, got %v", err)
	}
}

func TestRebuildAndLookup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Baz.php"), "<?php\nnamespace Foo\\Bar;\nclass Baz {}\n")

	r := newTestResolver(t, dir)
	if err := r.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	bySimple, err := r.Lookup("Baz")
	if err != nil {
		t.Fatalf("Lookup by simple name failed: %v", err)
	}
	byFQN, err := r.Lookup(`Foo\Bar\Baz`)
	if err != nil {
		t.Fatalf("Lookup by FQN failed: %v", err)
	}
	if bySimple != byFQN {
		t.Error("Expected both keys to resolve to the same declaration")
	}
	if bySimple.FQN != `Foo\Bar\Baz` {
		t.Errorf("Expected FQN Foo\\Bar\\Baz, got %s", bySimple.FQN)
	}

	selected, err := r.ResolveSelection("  Baz  ")
	if err != nil {
		t.Fatalf("ResolveSelection failed: %v", err)
	}
	if selected != bySimple {
		t.Error("Expected ResolveSelection to match Lookup on trimmed input")
	}
}

func TestLookupNotFound(t *testing.T) {
	r := newTestResolver(t, t.TempDir())
	if err := r.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	_, err := r.Lookup("Missing")
	if err == nil {
		t.Fatal("Expected error for missing symbol")
	}
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("Expected CodeNotFound, got %v", err)
	}
}

func TestLookupBeforeRebuild(t *testing.T) {
	r := newTestResolver(t, t.TempDir())
	if _, err := r.Lookup("Anything"); !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("Expected CodeNotFound before first rebuild, got %v", err)
	}
}

func TestConcurrentRebuilds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "C.php"), "<?php\nclass C {}\n")

	r := newTestResolver(t, dir)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = r.Rebuild(context.Background())
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Rebuild %d failed: %v", i, err)
		}
	}
	if _, err := r.Lookup("C"); err != nil {
		t.Errorf("Expected C to resolve after concurrent rebuilds: %v", err)
	}
}

func TestRestorePreservesScanOrder(t *testing.T) {
	r := newTestResolver(t, t.TempDir())
	r.Restore([]scanner.Declaration{
		{SimpleName: "Widget", FQN: "Widget", Kind: scanner.KindClass, SourcePath: "/a/widget.php"},
		{SimpleName: "Widget", FQN: "Widget", Kind: scanner.KindClass, SourcePath: "/b/widget.php"},
	})

	d, err := r.Lookup("Widget")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if d.SourcePath != "/b/widget.php" {
		t.Errorf("Expected later declaration to win, got %s", d.SourcePath)
	}

	decls := r.Declarations()
	if len(decls) != 2 {
		t.Fatalf("Expected 2 declarations, got %d", len(decls))
	}
	if decls[0].SourcePath != "/a/widget.php" {
		t.Errorf("Expected scan order to be preserved, got %v", decls)
	}
}
