package canon

import "strings"

// Tokenize splits an inner payload into field tokens on top-level commas.
// Double-quoted regions are honored (a comma inside quotes is data, not a
// separator) with backslash as the escape character inside quotes. Tokens are
// returned raw: quotes are not stripped here.
//
// A payload ending in a comma yields a final empty token; that empty slot is
// how a trailing NULL field is represented and must never be dropped, so
// "(,,,)" tokenizes to four empty fields.
func Tokenize(payload string) []string {
	if payload == "" {
		return nil
	}

	tokens := make([]string, 0, 8)
	var b strings.Builder
	inQuote := false
	escaped := false

	for i := 0; i < len(payload); i++ {
		c := payload[i]
		switch {
		case escaped:
			b.WriteByte(c)
			escaped = false
		case inQuote && c == '\\':
			b.WriteByte(c)
			escaped = true
		case c == '"':
			b.WriteByte(c)
			inQuote = !inQuote
		case c == ',' && !inQuote:
			tokens = append(tokens, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	tokens = append(tokens, b.String())
	return tokens
}

// Dequote trims surrounding whitespace and, when the token is a double-quoted
// field, strips the quotes and resolves backslash escapes. Unquoted tokens
// are returned trimmed.
func Dequote(token string) string {
	s := strings.TrimSpace(token)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	inner := s[1 : len(s)-1]
	if !strings.ContainsRune(inner, '\\') {
		return inner
	}
	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}
