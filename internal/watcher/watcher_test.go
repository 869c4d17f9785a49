package watcher

import (
	"testing"
	"time"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := New(10*time.Millisecond, []string{".php"}, []string{".git", "vendor"}, []string{"*_generated.php"}, func([]string) {})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestNewRequiresCallback(t *testing.T) {
	if _, err := New(time.Second, nil, nil, nil, nil); err == nil {
		t.Error("Expected error for nil callback")
	}
}

func TestShouldExcludeFile(t *testing.T) {
	w := newTestWatcher(t)

	cases := []struct {
		path    string
		exclude bool
	}{
		{"/project/src/User.php", false},
		{"/project/src/notes.txt", true},
		{"/project/src/schema_generated.php", true},
		{"/project/src/User.PHP", false},
	}
	for _, tc := range cases {
		if got := w.shouldExcludeFile(tc.path); got != tc.exclude {
			t.Errorf("shouldExcludeFile(%q) = %v, want %v", tc.path, got, tc.exclude)
		}
	}
}

func TestShouldExcludeDir(t *testing.T) {
	w := newTestWatcher(t)

	if !w.shouldExcludeDir("/project/vendor") {
		t.Error("Expected vendor to be excluded")
	}
	if w.shouldExcludeDir("/project/src") {
		t.Error("Did not expect src to be excluded")
	}
}

func TestDebounceBatchesChanges(t *testing.T) {
	batches := make(chan []string, 1)
	w, err := New(20*time.Millisecond, []string{".php"}, nil, nil, func(paths []string) {
		batches <- paths
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	w.scheduleChange("/p/a.php")
	w.scheduleChange("/p/b.php")
	w.scheduleChange("/p/a.php")

	select {
	case paths := <-batches:
		if len(paths) != 2 {
			t.Errorf("Expected 2 distinct paths in batch, got %v", paths)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for debounce flush")
	}
}
