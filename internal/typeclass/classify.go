// Package typeclass decides whether a column's declared source type names a
// complex (array-like or record-like) value or a plain scalar.
//
// There is deliberately no registry of known type names: source systems let
// users define arbitrary collection and object types, so classification works
// from naming conventions and declaration shape alone. The rules live in an
// ordered list evaluated top to bottom; the first match wins. Keeping the
// rules data-driven makes them testable in isolation and easy to extend when
// a new convention shows up in the field.
package typeclass

import "strings"

// Kind is the classification of a declared type.
type Kind int

const (
	// Simple is an atomic scalar; its value is hashed verbatim.
	Simple Kind = iota
	// Array is a collection type; elements compare as an unordered set.
	Array
	// Record is an object/composite type; field order is significant.
	Record
	// Composite is complex but the array-vs-record shape is not decidable
	// from the name alone. Callers fall back to the token heuristic.
	Composite
)

func (k Kind) String() string {
	switch k {
	case Array:
		return "array"
	case Record:
		return "record"
	case Composite:
		return "composite"
	default:
		return "simple"
	}
}

// Complex reports whether the kind needs the normalization pipeline.
func (k Kind) Complex() bool { return k != Simple }

// rule is one classification step. Predicates receive the declared type
// upper-cased and space-trimmed.
type rule struct {
	name  string
	match func(s string) bool
	kind  Kind
}

// arraySuffixes and recordSuffixes capture the naming conventions used for
// user-defined types (TAGS_ARRAY, PHONE_LIST, ADDRESS_TYPE, ...).
var (
	arraySuffixes  = []string{"_ARRAY", "_LIST", "_COLLECTION", "_VARRAY", "_TABLE"}
	recordSuffixes = []string{"_TYPE", "_RECORD"}
)

var rules = []rule{
	{
		name: "collection keyword",
		match: func(s string) bool {
			return strings.HasPrefix(s, "TABLE OF ") ||
				strings.HasPrefix(s, "VARRAY") ||
				strings.HasPrefix(s, "ARRAY")
		},
		kind: Array,
	},
	{
		name: "object keyword",
		match: func(s string) bool {
			return strings.HasPrefix(s, "OBJECT") ||
				strings.HasPrefix(s, "RECORD") ||
				strings.HasPrefix(s, "ROW(")
		},
		kind: Record,
	},
	{
		name:  "map keyword",
		match: func(s string) bool { return strings.HasPrefix(s, "MAP") },
		kind:  Record,
	},
	{
		name:  "array literal",
		match: func(s string) bool { return strings.HasPrefix(s, "{") },
		kind:  Array,
	},
	{
		name:  "array suffix",
		match: func(s string) bool { return hasAnySuffix(s, arraySuffixes) },
		kind:  Array,
	},
	{
		name:  "record suffix",
		match: func(s string) bool { return hasAnySuffix(s, recordSuffixes) },
		kind:  Record,
	},
	{
		name:  "parameterized element spec",
		match: hasElementSpec,
		kind:  Composite,
	},
}

// Classify maps a declared source type name onto a Kind. It is total and
// side-effect free; the empty or undefined type is Simple.
func Classify(declared string) Kind {
	s := strings.ToUpper(strings.TrimSpace(declared))
	if s == "" {
		return Simple
	}
	for _, r := range rules {
		if r.match(s) {
			return r.kind
		}
	}
	return Simple
}

// IsComplex is shorthand for Classify(declared).Complex().
func IsComplex(declared string) bool { return Classify(declared).Complex() }

func hasAnySuffix(s string, suffixes []string) bool {
	// Strip a trailing parameter list so "TAGS_ARRAY(VARCHAR2)" still
	// matches the suffix convention.
	if i := strings.IndexByte(s, '('); i > 0 && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[:i])
	}
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

// hasElementSpec reports whether the declaration ends with a parenthesized
// element spec naming a type, e.g. "CUSTOM_SET(VARCHAR2(64))". Purely numeric
// parameter lists such as "NUMBER(10,2)" or "VARCHAR2(64)" describe scalar
// precision, not an element type, and stay simple.
func hasElementSpec(s string) bool {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return false
	}
	inner := s[open+1 : len(s)-1]
	for _, r := range inner {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}
