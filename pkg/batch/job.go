package batch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkgbatch/pkg/kind"
)

// Job is one extraction unit: an archive, its kind, and the output
// subtree it exclusively owns. Created and consumed within a single
// dispatch cycle; never shared between jobs.
type Job struct {
	Source string
	Kind   kind.Kind
	Output string
	Index  int // discovery order, used to re-sort the final report
}

// OutputNamer derives output subtrees under the output root and keeps
// duplicate base names from different source directories apart. Safe for
// concurrent use.
type OutputNamer struct {
	root     string
	stripExt bool
	byKind   bool

	mu       sync.Mutex
	owners   map[string]string // output path -> source that owns it
	counters map[string]int    // contested output path -> next suffix
}

// NewOutputNamer creates a namer rooted at root. With stripExt the
// archive extension is dropped from the output name; with byKind outputs
// nest under one directory per archive kind.
func NewOutputNamer(root string, stripExt, byKind bool) *OutputNamer {
	return &OutputNamer{
		root:     root,
		stripExt: stripExt,
		byKind:   byKind,
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Derive returns the collision-free output subtree for source. The same
// source always maps to the same path within one run; a second source
// contending for a taken path gets a deterministic numbered variant.
func (n *OutputNamer) Derive(source string, k kind.Kind) string {
	name := filepath.Base(source)
	if n.stripExt {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	dir := n.root
	if n.byKind {
		dir = filepath.Join(dir, k.String())
	}
	return n.claim(source, filepath.Join(dir, name))
}

func (n *OutputNamer) claim(source, want string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	owner, taken := n.owners[want]
	if !taken || owner == source {
		n.owners[want] = source
		return want
	}

	ext := filepath.Ext(want)
	stem := strings.TrimSuffix(want, ext)
	next := n.counters[want]
	if next == 0 {
		next = 2
	}
	for {
		candidate := fmt.Sprintf("%s-%d%s", stem, next, ext)
		owner, taken := n.owners[candidate]
		if !taken || owner == source {
			n.counters[want] = next + 1
			n.owners[candidate] = source
			return candidate
		}
		next++
	}
}
