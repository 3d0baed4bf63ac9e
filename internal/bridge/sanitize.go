package bridge

import "strings"

const (
	// digitPrefix keeps identifiers from starting with a digit. It is
	// distinct from the zone namespace prefix the caller prepends.
	digitPrefix = "z"
	// fallbackName stands in for names that sanitize to nothing.
	fallbackName = "unnamed"
)

// SanitizeName maps an arbitrary display name onto the alphabet D-Bus
// allows in well-known name components: ASCII letters, digits,
// underscore and hyphen. The result is never empty and never starts
// with a digit.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s == "" {
		return fallbackName
	}
	if s[0] >= '0' && s[0] <= '9' {
		return digitPrefix + s
	}
	return s
}
