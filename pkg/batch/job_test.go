package batch

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkgbatch/pkg/kind"
)

func TestOutputNamer_Derive(t *testing.T) {
	n := NewOutputNamer("/out", false, false)
	got := n.Derive("/src/levels/asylum.pkg", kind.Package)
	if got != filepath.Join("/out", "asylum.pkg") {
		t.Errorf("Derive = %s", got)
	}
}

func TestOutputNamer_StripExt(t *testing.T) {
	n := NewOutputNamer("/out", true, false)
	got := n.Derive("/src/asylum.pkg", kind.Package)
	if got != filepath.Join("/out", "asylum") {
		t.Errorf("Derive = %s", got)
	}
}

func TestOutputNamer_ByKind(t *testing.T) {
	n := NewOutputNamer("/out", false, true)
	got := n.Derive("/src/asylum.pkg", kind.Package)
	if got != filepath.Join("/out", "pkg", "asylum.pkg") {
		t.Errorf("Derive = %s", got)
	}
	got = n.Derive("/src/common.ppf", kind.PatchContainer)
	if got != filepath.Join("/out", "ppf", "common.ppf") {
		t.Errorf("Derive = %s", got)
	}
}

func TestOutputNamer_Collisions(t *testing.T) {
	n := NewOutputNamer("/out", false, false)

	first := n.Derive("/src/a/world.pkg", kind.Package)
	second := n.Derive("/src/b/world.pkg", kind.Package)
	third := n.Derive("/src/c/world.pkg", kind.Package)

	if first != filepath.Join("/out", "world.pkg") {
		t.Errorf("first = %s", first)
	}
	if second != filepath.Join("/out", "world-2.pkg") {
		t.Errorf("second = %s", second)
	}
	if third != filepath.Join("/out", "world-3.pkg") {
		t.Errorf("third = %s", third)
	}

	// Re-deriving for the same source is stable.
	if again := n.Derive("/src/b/world.pkg", kind.Package); again != second {
		t.Errorf("re-derive = %s, want %s", again, second)
	}
}

func TestOutputNamer_ConcurrentClaims(t *testing.T) {
	n := NewOutputNamer("/out", false, false)

	const workers = 16
	paths := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := filepath.Join("/src", string(rune('a'+i)), "same.pkg")
			paths[i] = n.Derive(src, kind.Package)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, p := range paths {
		if seen[p] {
			t.Fatalf("duplicate output path handed out: %s", p)
		}
		seen[p] = true
	}
}
