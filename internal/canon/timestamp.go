package canon

// NormalizeTimestamp trims insignificant trailing zeros from the fractional
// seconds of a "YYYY-MM-DD HH:MM:SS[.fraction]" string so that equal instants
// compare equal regardless of source precision:
//
//	2025-10-23 05:47:08.060520 -> 2025-10-23 05:47:08.06052
//	2025-10-23 05:47:08.000000 -> 2025-10-23 05:47:08
//
// Strings that do not match the pattern pass through unchanged. The check is
// hand-rolled rather than time.Parse because the value must round-trip
// exactly; only the fraction may change.
func NormalizeTimestamp(s string) string {
	const base = len("2006-01-02 15:04:05")
	if len(s) < base || !isTimestampBase(s) {
		return s
	}
	if len(s) == base {
		return s
	}
	if s[base] != '.' {
		return s
	}
	frac := s[base+1:]
	if frac == "" {
		return s
	}
	for i := 0; i < len(frac); i++ {
		if frac[i] < '0' || frac[i] > '9' {
			return s
		}
	}
	end := len(frac)
	for end > 0 && frac[end-1] == '0' {
		end--
	}
	if end == 0 {
		return s[:base]
	}
	return s[:base+1] + frac[:end]
}

// isTimestampBase checks the fixed "dddd-dd-dd dd:dd:dd" prefix.
func isTimestampBase(s string) bool {
	const layout = "0000-00-00 00:00:00"
	for i := 0; i < len(layout); i++ {
		switch layout[i] {
		case '0':
			if s[i] < '0' || s[i] > '9' {
				return false
			}
		default:
			if s[i] != layout[i] {
				return false
			}
		}
	}
	return true
}
