// Package kind classifies resource archives by filename extension and
// maps each kind to the extractor routine that unpacks it.
package kind

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Kind identifies one archive container format.
type Kind int

const (
	Unknown        Kind = iota
	Package             // .pkg resource packages
	PatchContainer      // .ppf texture/script/mesh containers
	Animation           // .apf animation containers
)

// info holds the static properties of one kind.
type info struct {
	name    string
	ext     string // lowercase, with leading dot
	routine string // extractor subcommand
	enabled bool   // part of the default set
}

// Animation stays disabled by default: the extractor's APF support is
// incomplete and fails on most real inputs.
var kinds = map[Kind]info{
	Package:        {name: "pkg", ext: ".pkg", routine: "extract-pkg", enabled: true},
	PatchContainer: {name: "ppf", ext: ".ppf", routine: "extract-ppf", enabled: true},
	Animation:      {name: "apf", ext: ".apf", routine: "extract-apf", enabled: false},
}

// All returns every recognized kind in declaration order.
func All() []Kind {
	return []Kind{Package, PatchContainer, Animation}
}

func (k Kind) String() string {
	if i, ok := kinds[k]; ok {
		return i.name
	}
	return "unknown"
}

// Ext returns the filename extension that selects this kind, with the
// leading dot.
func (k Kind) Ext() string {
	return kinds[k].ext
}

// Routine returns the extractor subcommand that unpacks this kind.
func (k Kind) Routine() string {
	return kinds[k].routine
}

// DefaultEnabled reports whether the kind is active without explicit
// configuration.
func (k Kind) DefaultEnabled() bool {
	return kinds[k].enabled
}

// FromExt maps a filename extension to its kind. The leading dot is
// optional and matching is case-insensitive.
func FromExt(ext string) (Kind, bool) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, k := range All() {
		if kinds[k].ext == ext {
			return k, true
		}
	}
	return Unknown, false
}

// Parse resolves a kind from its name or extension.
func Parse(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, k := range All() {
		if kinds[k].name == name {
			return k, nil
		}
	}
	if k, ok := FromExt(name); ok {
		return k, nil
	}
	return Unknown, fmt.Errorf("unknown archive kind: %q", s)
}

// Set is the enabled subset of archive kinds for one run.
type Set map[Kind]bool

// DefaultSet returns the kinds enabled without explicit configuration.
func DefaultSet() Set {
	s := make(Set)
	for _, k := range All() {
		if kinds[k].enabled {
			s[k] = true
		}
	}
	return s
}

// NewSet builds a set containing exactly the given kinds.
func NewSet(ks ...Kind) Set {
	s := make(Set)
	for _, k := range ks {
		s[k] = true
	}
	return s
}

// ParseSet builds a set from kind names or extensions.
func ParseSet(names []string) (Set, error) {
	s := make(Set)
	for _, name := range names {
		k, err := Parse(name)
		if err != nil {
			return nil, err
		}
		s[k] = true
	}
	return s, nil
}

// Enable adds a kind to the set.
func (s Set) Enable(k Kind) { s[k] = true }

// Disable removes a kind from the set.
func (s Set) Disable(k Kind) { delete(s, k) }

// Has reports whether the kind is enabled.
func (s Set) Has(k Kind) bool { return s[k] }

// Match classifies a path by extension, honoring only enabled kinds.
func (s Set) Match(path string) (Kind, bool) {
	ext := filepath.Ext(path)
	if ext == "" {
		return Unknown, false
	}
	k, ok := FromExt(ext)
	if !ok || !s[k] {
		return Unknown, false
	}
	return k, true
}

// Kinds returns the enabled kinds in stable declaration order.
func (s Set) Kinds() []Kind {
	var out []Kind
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Names returns the enabled kind names in stable order.
func (s Set) Names() []string {
	var out []string
	for _, k := range s.Kinds() {
		out = append(out, k.String())
	}
	return out
}
