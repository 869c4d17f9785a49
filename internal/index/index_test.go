package index

import (
	"testing"

	"phpnav/internal/scanner"
)

func decl(ns, name, path string) scanner.Declaration {
	return scanner.Declaration{
		SimpleName: name,
		Namespace:  ns,
		FQN:        scanner.QualifiedName(ns, name),
		Kind:       scanner.KindClass,
		SourcePath: path,
	}
}

func TestLookupBySimpleAndQualifiedName(t *testing.T) {
	ix := Build([]scanner.Declaration{decl(`Foo\Bar`, "Baz", "/src/Baz.php")})

	bySimple, ok := ix.Lookup("Baz")
	if !ok {
		t.Fatal("Expected lookup by simple name to succeed")
	}
	byFQN, ok := ix.Lookup(`Foo\Bar\Baz`)
	if !ok {
		t.Fatal("Expected lookup by FQN to succeed")
	}
	if bySimple != byFQN {
		t.Errorf("Expected both keys to resolve to the same declaration")
	}
	if bySimple.FQN != `Foo\Bar\Baz` {
		t.Errorf("Expected FQN Foo\\Bar\\Baz, got %s", bySimple.FQN)
	}
}

func TestLaterDeclarationOverwrites(t *testing.T) {
	ix := Build([]scanner.Declaration{
		decl("", "Widget", "/a/widget.php"),
		decl("", "Widget", "/b/widget.php"),
	})

	if ix.Keys() != 1 {
		t.Errorf("Expected exactly one key for colliding declarations, got %d", ix.Keys())
	}
	d, ok := ix.Lookup("Widget")
	if !ok {
		t.Fatal("Expected Widget to resolve")
	}
	if d.SourcePath != "/b/widget.php" {
		t.Errorf("Expected last declaration to win, got %s", d.SourcePath)
	}
}

func TestResolveSelectionTrims(t *testing.T) {
	ix := Build([]scanner.Declaration{decl(`Foo\Bar`, "Baz", "/src/Baz.php")})

	trimmed, okTrimmed := ix.ResolveSelection("  Baz  ")
	direct, okDirect := ix.Lookup("Baz")
	if okTrimmed != okDirect || trimmed != direct {
		t.Errorf("Expected ResolveSelection to behave like Lookup on trimmed input")
	}
}

func TestEmptyIndex(t *testing.T) {
	ix := Build(nil)
	if _, ok := ix.Lookup("Anything"); ok {
		t.Error("Expected lookup on empty index to miss")
	}
	if ix.Len() != 0 || ix.Keys() != 0 {
		t.Errorf("Expected empty index counts, got len=%d keys=%d", ix.Len(), ix.Keys())
	}
}

func TestNilIndexIsSafe(t *testing.T) {
	var ix *Index
	if _, ok := ix.Lookup("Anything"); ok {
		t.Error("Expected nil index lookup to miss")
	}
	if ix.Len() != 0 {
		t.Error("Expected nil index Len to be 0")
	}
}
