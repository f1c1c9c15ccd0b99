// Package canon reduces the several surface encodings of a complex column
// value to one canonical string. The pipeline is: strip wrapper syntax
// (Normalize), split the inner payload into fields (Tokenize), then emit the
// deterministic form used as the hashing input (Serialize).
//
// The two systems on either side of a migration wrap the same value
// differently: the export side emits double-wrapped parenthesized text or
// quoted brace lists, the import side stores plain composite/array literals.
// Canonicalization makes those compare equal without requiring byte-identical
// storage.
package canon

import "strings"

// Normalize strips one layer of known wrapper syntax from a raw text value,
// exposing a flat, comma-joinable surface. Shapes are matched in order and
// the first match wins:
//
//  1. ("( ... )")  double-wrapped record text -> ( ... )
//  2. { ... }      canonical array            -> unchanged
//  3. ("{ ... }")  quoted array in parens     -> { ... }
//  4. "{ ... }"    bare quoted array          -> { ... }
//  5. ( ... )      canonical record           -> unchanged
//  6. anything else                           -> unchanged (opaque scalar)
//
// Normalize never decides array-vs-record; it only removes wrapping noise.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) < 2 {
		return raw
	}

	// Shape 1: outer parens holding a quoted, parenthesized list.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		inner := strings.TrimSpace(s[1 : len(s)-1])
		if strings.HasPrefix(inner, `"(`) && strings.HasSuffix(inner, `)"`) {
			return inner[1 : len(inner)-1]
		}
		// Shape 3: parens wrapping a double-quoted brace list.
		if strings.HasPrefix(inner, `"{`) && strings.HasSuffix(inner, `}"`) {
			return inner[1 : len(inner)-1]
		}
	}

	// Shape 2: already-canonical array.
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s
	}

	// Shape 4: bare quoted brace list.
	if strings.HasPrefix(s, `"{`) && strings.HasSuffix(s, `}"`) {
		return s[1 : len(s)-1]
	}

	// Shape 5: already-canonical record.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return s
	}

	return raw
}

// Payload strips the single outer brace or paren pair from a normalized
// value and reports which bracket was found: '{', '(' or 0 for neither
// (an opaque scalar).
func Payload(normalized string) (payload string, bracket byte) {
	s := strings.TrimSpace(normalized)
	if len(s) >= 2 {
		switch {
		case s[0] == '{' && s[len(s)-1] == '}':
			return s[1 : len(s)-1], '{'
		case s[0] == '(' && s[len(s)-1] == ')':
			return s[1 : len(s)-1], '('
		}
	}
	return normalized, 0
}
