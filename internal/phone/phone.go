// Package phone normalizes raw telephone strings into E.164 form.
package phone

import "strings"

// Normalize converts a raw phone string into a best-effort E.164 number.
//
// The heuristic is deliberately lossy and must stay stable: stored numbers
// were written with exactly these rules, and lookups are by exact match.
//   - strip everything but digits and "+"
//   - already "+"-prefixed: return as-is
//   - exactly 10 digits: assume North America, prefix "+1"
//   - 11 digits starting with "1": prefix "+"
//   - anything else: prefix "+"
//
// No true E.164 validation is performed; garbage in produces a "+"-prefixed
// best effort out.
func Normalize(raw string) string {
	stripped := strip(raw)
	if strings.HasPrefix(stripped, "+") {
		return stripped
	}
	if len(stripped) == 10 {
		return "+1" + stripped
	}
	if len(stripped) == 11 && stripped[0] == '1' {
		return "+" + stripped
	}
	return "+" + stripped
}

func strip(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
