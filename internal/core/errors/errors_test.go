package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsCode(t *testing.T) {
	err := New(CodeNotFound, "no declaration for symbol")
	if !IsCode(err, CodeNotFound) {
		t.Errorf("Expected CodeNotFound")
	}
	if IsCode(err, CodeNoRoot) {
		t.Errorf("Did not expect CodeNoRoot")
	}
	if IsCode(errors.New("plain"), CodeNotFound) {
		t.Errorf("Plain error should not match any code")
	}
}

func TestWrapUnwrap(t *testing.T) {
	inner := errors.New("permission denied")
	err := Wrap(inner, CodeUnreadable, "read file")
	if !errors.Is(err, inner) {
		t.Errorf("Expected wrapped error to unwrap to inner")
	}
	if !IsCode(err, CodeUnreadable) {
		t.Errorf("Expected CodeUnreadable after wrap")
	}
}

func TestAddContext(t *testing.T) {
	err := New(CodeNotFound, "no declaration")
	err = AddContext(err, CtxSymbol, "App\\Models\\User")
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("Expected DomainError, got %T", err)
	}
	if de.Context[CtxSymbol] != "App\\Models\\User" {
		t.Errorf("Context not recorded: %v", de.Context)
	}

	// Plain errors get promoted to an internal DomainError.
	promoted := AddContext(fmt.Errorf("boom"), CtxPath, "/tmp/x.php")
	if !IsCode(promoted, CodeInternal) {
		t.Errorf("Expected promoted error to carry CodeInternal")
	}
}
