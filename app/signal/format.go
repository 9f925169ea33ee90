package signal

import (
	"strings"
)

// Format renders the outbound message: title, timestamp, blank line, the
// core action line, then the extra fields in submission order.
func Format(s *Signal) string {
	var b strings.Builder

	b.WriteString(s.Title)
	b.WriteString("\n")
	b.WriteString(s.Timestamp)
	b.WriteString("\n\n")
	b.WriteString(s.Action)
	b.WriteString(" ")
	b.WriteString(s.Symbol)
	b.WriteString(" ")
	b.WriteString(normalizeNumber(s.Price))

	for _, field := range s.Extras {
		key := normalizeKey(field.Key)
		if key == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(normalizeNumber(field.Value))
	}

	return b.String()
}

// normalizeKey upper-cases a field key and strips non-alphanumeric characters
func normalizeKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeNumber trims numeric-looking values to at most 4 decimal places
// with trailing zeros removed. Non-numeric values pass through unchanged.
func normalizeNumber(value string) string {
	if !looksNumeric(value) {
		return value
	}

	intPart, fracPart, hasFrac := strings.Cut(value, ".")
	if !hasFrac {
		return value
	}

	if len(fracPart) > 4 {
		fracPart = fracPart[:4]
	}
	fracPart = strings.TrimRight(fracPart, "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

func looksNumeric(value string) bool {
	if value == "" {
		return false
	}
	rest := strings.TrimPrefix(value, "-")
	if rest == "" {
		return false
	}
	dots := 0
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return rest != "." && !strings.HasPrefix(rest, ".") && !strings.HasSuffix(rest, ".")
}
