package telegram

import "strings"

// Sanitize strips characters the Telegram API rejects: control characters
// (tab, LF and CR stay) and unpaired surrogate code points that survive a
// bad source encoding.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(r)
		case r < 0x20:
			// drop other control characters
		case r >= 0xD800 && r <= 0xDFFF:
			// drop surrogate halves
		case r == 0xFFFD:
			// drop replacement chars left by earlier decode failures
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
