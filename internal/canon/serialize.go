package canon

import (
	"sort"
	"strings"

	"semcheck/internal/typeclass"
)

// nullMarker is the canonical spelling of an absent element or field.
const nullMarker = "NULL"

// Serialize emits the canonical string for a tokenized complex value.
//
// Array kind: tokens are trimmed, dequoted and timestamp-normalized; an empty
// token becomes the NULL marker. Elements are then sorted lexicographically
// (arrays compare as unordered value-sets) and re-quoted inside ARRAY[...].
//
// Record kind: field order is preserved. Each field is trimmed, dequoted and
// timestamp-normalized, then type-tagged: numeric fields pass through
// unquoted, everything else (including the empty NULL slot) is quoted. The
// result is wrapped as RECORD(...).
func Serialize(kind typeclass.Kind, tokens []string) string {
	if kind == typeclass.Array {
		return serializeArray(tokens)
	}
	return serializeRecord(tokens)
}

func serializeArray(tokens []string) string {
	elems := make([]string, len(tokens))
	for i, t := range tokens {
		v := NormalizeTimestamp(Dequote(t))
		if v == "" {
			v = nullMarker
		}
		elems[i] = v
	}
	sort.Strings(elems)

	var b strings.Builder
	b.WriteString("ARRAY[")
	for i, e := range elems {
		if i > 0 {
			b.WriteByte(',')
		}
		if e == nullMarker {
			b.WriteString(e)
			continue
		}
		quoteField(&b, e)
	}
	b.WriteByte(']')
	return b.String()
}

func serializeRecord(tokens []string) string {
	var b strings.Builder
	b.WriteString("RECORD(")
	for i, t := range tokens {
		if i > 0 {
			b.WriteByte(',')
		}
		v := NormalizeTimestamp(Dequote(t))
		if isNumeric(v) {
			b.WriteString(v)
			continue
		}
		quoteField(&b, v)
	}
	b.WriteByte(')')
	return b.String()
}

// quoteField emits a dequoted field value re-quoted, backslash-escaping
// internal quotes and backslashes. Without the re-escape a field containing a
// quote character could forge a field boundary and collide with a different
// value's canonical form.
func quoteField(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '"' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
}

// GuessKind disambiguates array-vs-record when the declared type gives no
// answer: any empty token or any purely numeric token among the set means
// record, otherwise array.
//
// This mirrors the heuristic used by the companion literal-rewriting pass and
// is a documented approximation: an array of pure integers is
// indistinguishable from a record of numeric fields by this rule alone.
// Downstream consumers depend on both sides guessing identically, so the
// heuristic must not be "improved" unilaterally.
func GuessKind(tokens []string) typeclass.Kind {
	for _, t := range tokens {
		v := Dequote(t)
		if v == "" || isNumeric(v) {
			return typeclass.Record
		}
	}
	return typeclass.Array
}

// isNumeric matches an optionally signed integer or decimal literal.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i++
	}
	digits, dot := 0, false
	for ; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}
