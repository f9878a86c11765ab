package views

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// clean drops runes that break tcell cell widths (emoji modifiers, joiners,
// variation selectors) and control characters, so a driver name typed on a
// phone keyboard cannot shift table columns.
func clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r == utf8.RuneError && size == 1 {
			continue
		}
		if unicode.IsControl(r) || isWidthModifier(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isWidthModifier(r rune) bool {
	switch {
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tones
		return true
	case r == 0x200D: // zero width joiner
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	default:
		return false
	}
}
