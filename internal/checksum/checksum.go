// Package checksum derives a per-row digest from canonical column
// serializations. Simple columns contribute their value verbatim; complex
// columns run through the full normalization pipeline first. Column results
// are joined with a separator byte that cannot appear in canonical output and
// hashed, so two rows collide only when every column is semantically equal.
package checksum

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/unicode/norm"

	"semcheck/internal/canon"
	"semcheck/internal/typeclass"
	"semcheck/internal/value"
)

// sep joins column serializations before hashing. ASCII unit separator never
// appears in canonical output.
const sep = "\x1f"

// nullMarker stands in for undefined or empty simple values.
const nullMarker = "NULL"

// Hasher computes a lowercase hex digest over a byte slice.
type Hasher func([]byte) string

// NewHasher returns the Hasher for an algorithm selector. Supported values:
// "sha256" (default, also selected by the empty string), "sha512", "xxh3".
func NewHasher(alg string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(alg)) {
	case "", "sha256":
		return func(b []byte) string {
			d := sha256.Sum256(b)
			return hex.EncodeToString(d[:])
		}, nil
	case "sha512":
		return func(b []byte) string {
			d := sha512.Sum512(b)
			return hex.EncodeToString(d[:])
		}, nil
	case "xxh3":
		// Non-cryptographic but much faster; useful for very large tables
		// where tamper resistance is not a requirement.
		return func(b []byte) string {
			return fmt.Sprintf("%016x", xxh3.Hash(b))
		}, nil
	default:
		return nil, fmt.Errorf("checksum: unknown hash algorithm %q", alg)
	}
}

// ColumnTrace records how one column value moved through the pipeline. It
// feeds the normalization trace in the report; Changed is true when the
// canonical form differs from the raw text.
type ColumnTrace struct {
	Raw        string
	Normalized string
	Canonical  string
	Changed    bool
}

// Canonical produces the canonical string for one column value given its
// declared source type. Simple columns pass through verbatim (empty or nil
// becomes the NULL marker). Complex columns are converted from native form if
// needed, unwrapped, tokenized and serialized. Timestamp normalization is
// applied to the raw value up front since complex fields sometimes embed
// timestamps as nested elements.
func Canonical(raw any, declared string) string {
	return CanonicalTrace(raw, declared).Canonical
}

// CanonicalTrace is Canonical plus the intermediate normalized form, for
// diagnostic traces.
func CanonicalTrace(raw any, declared string) ColumnTrace {
	kind := typeclass.Classify(declared)
	text := asText(raw, declared)
	tr := ColumnTrace{Raw: text, Normalized: text}

	if !kind.Complex() {
		if text == "" {
			tr.Canonical = nullMarker
		} else {
			tr.Canonical = canon.NormalizeTimestamp(text)
		}
		tr.Changed = tr.Canonical != text
		return tr
	}
	if text == "" {
		tr.Canonical = nullMarker
		tr.Changed = true
		return tr
	}

	tr.Normalized = canon.Normalize(canon.NormalizeTimestamp(text))
	payload, bracket := canon.Payload(tr.Normalized)
	if bracket == 0 {
		// No recognized wrapper: an opaque scalar stored in a complex
		// column. Hash it as-is.
		tr.Canonical = tr.Normalized
		tr.Changed = tr.Canonical != text
		return tr
	}
	tokens := canon.Tokenize(payload)

	switch kind {
	case typeclass.Array, typeclass.Record:
		tr.Canonical = canon.Serialize(kind, tokens)
	default:
		// Composite: the name alone does not decide the shape. A brace
		// surface is unambiguous; otherwise fall back to the shared
		// empty-or-numeric-token heuristic.
		if bracket == '{' {
			tr.Canonical = canon.Serialize(typeclass.Array, tokens)
		} else {
			tr.Canonical = canon.Serialize(canon.GuessKind(tokens), tokens)
		}
	}
	tr.Changed = tr.Canonical != text
	return tr
}

// Row joins the canonical serialization of every column with the separator
// and hashes the UTF-8 bytes of the joined string. values and declaredTypes
// are parallel; a missing declared type classifies as simple. The joined
// string is Unicode-normalized to NFC before hashing so that differently
// composed but equal text from the two systems digests identically.
func Row(values []any, declaredTypes []string, h Hasher) string {
	digest, _ := RowTrace(values, declaredTypes, h)
	return digest
}

// RowTrace is Row plus the per-column traces, in column order.
func RowTrace(values []any, declaredTypes []string, h Hasher) (string, []ColumnTrace) {
	parts := make([]string, len(values))
	traces := make([]ColumnTrace, len(values))
	for i, v := range values {
		declared := ""
		if i < len(declaredTypes) {
			declared = declaredTypes[i]
		}
		traces[i] = CanonicalTrace(v, declared)
		parts[i] = traces[i].Canonical
	}
	joined := norm.NFC.String(strings.Join(parts, sep))
	return h([]byte(joined)), traces
}

// asText renders any supported raw value as text. Native nested values go
// through the value renderer; scalars use their natural string form.
func asText(raw any, declared string) string {
	switch t := raw.(type) {
	case nil:
		return ""
	case string:
		return t
	case value.Value:
		return value.Render(t, declared)
	case []byte:
		return string(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case time.Time:
		return canon.NormalizeTimestamp(t.Format("2006-01-02 15:04:05.000000"))
	default:
		return fmt.Sprint(t)
	}
}
