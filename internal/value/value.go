// Package value models a source system's native nested values and renders
// them into the textual grammar used by the target system, so the text-level
// normalization pipeline only ever sees one convention.
//
// Value is a tagged variant: Scalar | Null | Seq | Map. A single recursive
// render walks the shape once instead of re-detecting it with reflection at
// every call site.
package value

import (
	"sort"
	"strings"

	"semcheck/internal/typeclass"
)

// Value is one node of a native nested value.
type Value interface{ isValue() }

// Scalar is a leaf value carried as text.
type Scalar string

// Null is an explicit NULL leaf.
type Null struct{}

// Seq is an ordered sequence: either a collection's elements or a record's
// fields, disambiguated by the declared type of the enclosing column.
type Seq []Value

// Map is a keyed value with no positional order. Keys are sorted on render
// so the output is deterministic.
type Map map[string]Value

func (Scalar) isValue() {}
func (Null) isValue()   {}
func (Seq) isValue()    {}
func (Map) isValue()    {}

// Render converts a native value into target-system text, choosing the
// top-level grammar from the declared type:
//
//   - array/collection declarations render as {e1,e2,...}
//   - object/record declarations render as (f1,f2,...)
//   - anything else defaults to array rendering
//
// A Scalar passes through unchanged, which makes Render idempotent: its own
// output is plain text, so feeding it back in is a no-op.
func Render(v Value, declared string) string {
	switch t := v.(type) {
	case nil:
		return ""
	case Scalar:
		return string(t)
	case Null:
		return "NULL"
	}
	asRecord := typeclass.Classify(declared) == typeclass.Record
	var b strings.Builder
	render(&b, v, asRecord)
	return b.String()
}

// render is the recursive worker. asRecord selects (f1,...) over {e1,...}
// for the current Seq level; nesting alternates because a collection of
// records and a record holding a collection are the common shapes.
func render(b *strings.Builder, v Value, asRecord bool) {
	switch t := v.(type) {
	case Scalar:
		b.WriteString(escapeField(string(t)))
	case Null:
		// NULL renders as an empty field slot.
	case Seq:
		open, shut := byte('{'), byte('}')
		if asRecord {
			open, shut = '(', ')'
		}
		b.WriteByte(open)
		for i, e := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			renderElem(b, e, asRecord)
		}
		b.WriteByte(shut)
	case Map:
		// Keys sorted for determinism, then rendered as a record.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('(')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			renderElem(b, t[k], true)
		}
		b.WriteByte(')')
	}
}

// renderElem renders one element of a composite. Nested structures that
// produce text containing separators are quoted so field boundaries survive
// re-tokenization.
func renderElem(b *strings.Builder, e Value, parentRecord bool) {
	switch t := e.(type) {
	case Scalar, Null:
		render(b, t, parentRecord)
	default:
		var inner strings.Builder
		// Inside a collection the elements are record-shaped; inside a
		// record a nested sequence is a collection.
		render(&inner, t, !parentRecord)
		b.WriteString(quote(inner.String()))
	}
}

// escapeField quotes a scalar field when it contains characters that would
// break the composite grammar: comma, whitespace, parentheses, braces, or a
// quote character. Internal double quotes and backslashes are
// backslash-escaped inside the quoted form.
func escapeField(s string) string {
	if s == "" {
		return s
	}
	if !strings.ContainsAny(s, `,"\() {}`+"\t") {
		return s
	}
	return quote(s)
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
