package domain

import "strings"

// NormalizePhone reduces a provider phone ("whatsapp:+56 9 1234-5678",
// "56912345678") to "+<digits>". Returns "" when no digits are present.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.ToLower(raw), "whatsapp:")

	var b strings.Builder
	b.Grow(len(raw) + 1)
	b.WriteByte('+')
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 1 {
		return ""
	}
	return b.String()
}
