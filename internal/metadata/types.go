// Package metadata holds the searchable corpus: immutable search records,
// the ordered store that owns them, and the search type tags that decide
// which records get built.
package metadata

import (
	"sort"
	"strings"
)

// SearchType tags the category a record was produced for.
// The set is open: importers may introduce their own tags.
type SearchType string

const (
	// TypeDisplayName covers rendered entity names.
	TypeDisplayName SearchType = "display-name"
	// TypeIRI covers full entity IRIs.
	TypeIRI SearchType = "iri"
	// TypeAnnotationValue covers annotation literal values.
	TypeAnnotationValue SearchType = "annotation-value"
	// TypeLogicalAxiom covers rendered logical axioms.
	TypeLogicalAxiom SearchType = "logical-axiom"
)

// BuiltinTypes lists the search types shipped with ontosearch.
func BuiltinTypes() []SearchType {
	return []SearchType{TypeDisplayName, TypeIRI, TypeAnnotationValue, TypeLogicalAxiom}
}

// IsBuiltin reports whether t is one of the shipped search types.
func (t SearchType) IsBuiltin() bool {
	for _, b := range BuiltinTypes() {
		if t == b {
			return true
		}
	}
	return false
}

// TypeSet is an immutable set of search types.
// The zero value is an empty set.
type TypeSet struct {
	m map[SearchType]struct{}
}

// NewTypeSet builds a set from the given types. Empty tags are ignored.
func NewTypeSet(types ...SearchType) TypeSet {
	m := make(map[SearchType]struct{}, len(types))
	for _, t := range types {
		if t == "" {
			continue
		}
		m[t] = struct{}{}
	}
	return TypeSet{m: m}
}

// AllTypes returns a set containing every builtin type.
func AllTypes() TypeSet {
	return NewTypeSet(BuiltinTypes()...)
}

// ParseTypeSet parses tags such as "iri" or "display-name".
// Surrounding whitespace is trimmed and case is folded.
func ParseTypeSet(tags []string) TypeSet {
	types := make([]SearchType, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			types = append(types, SearchType(tag))
		}
	}
	return NewTypeSet(types...)
}

// Contains reports whether t is in the set.
func (s TypeSet) Contains(t SearchType) bool {
	_, ok := s.m[t]
	return ok
}

// ContainsAny reports whether any of the given types is in the set.
func (s TypeSet) ContainsAny(types ...SearchType) bool {
	for _, t := range types {
		if s.Contains(t) {
			return true
		}
	}
	return false
}

// Len returns the number of types in the set.
func (s TypeSet) Len() int {
	return len(s.m)
}

// Slice returns the set's members in sorted order.
func (s TypeSet) Slice() []SearchType {
	out := make([]SearchType, 0, len(s.m))
	for t := range s.m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the set's members as sorted strings.
func (s TypeSet) Strings() []string {
	types := s.Slice()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

// Equal reports whether both sets hold the same members.
func (s TypeSet) Equal(other TypeSet) bool {
	if len(s.m) != len(other.m) {
		return false
	}
	for t := range s.m {
		if !other.Contains(t) {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (s TypeSet) String() string {
	return "{" + strings.Join(s.Strings(), ",") + "}"
}
