package workbook

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeObservations prepares free text for a template cell: NFC form,
// control characters dropped, whitespace runs collapsed to one space and the
// result cut to at most limit runes. limit <= 0 disables the cut.
func NormalizeObservations(s string, limit int) string {
	s = norm.NFC.String(s)

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r), r == '\uFEFF', r == '\u200B':
			return -1
		}
		return r
	}, s)

	out := strings.Join(strings.Fields(cleaned), " ")
	if limit <= 0 {
		return out
	}

	runes := []rune(out)
	if len(runes) <= limit {
		return out
	}
	return strings.TrimRightFunc(string(runes[:limit]), unicode.IsSpace)
}
