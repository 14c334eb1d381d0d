package render

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var typography = strings.NewReplacer(
	"₹", "Rs. ",
	"•", "-",
	"–", "-",
	"—", "-",
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"…", "...",
)

// plainText applies the shared replacement table and repairs invalid UTF-8.
func plainText(s string) string {
	return typography.Replace(strings.ToValidUTF8(s, ""))
}

// latin1Text prepares s for the core PDF fonts: typography is replaced and
// every rune outside ISO 8859-1 is dropped.
func latin1Text(s string) string {
	s = plainText(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || (r >= 0x7f && r < 0xa0) || r == utf8.RuneError {
			return -1
		}
		if _, ok := charmap.ISO8859_1.EncodeRune(r); !ok {
			return -1
		}
		return r
	}, s)
}

// xmlText prepares s for XML output: typography is replaced and runes that
// XML 1.0 forbids are dropped. Escaping is left to the caller.
func xmlText(s string) string {
	s = plainText(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20:
			return -1
		case r >= 0xD800 && r <= 0xDFFF:
			return -1
		case r == 0xFFFE || r == 0xFFFF:
			return -1
		}
		return r
	}, s)
}
