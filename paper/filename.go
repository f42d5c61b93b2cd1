package paper

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeLabel turns free text into a file name component. Letters, marks,
// digits, '_', '.' and '-' are kept; whitespace runs become a single '_' and
// every other rune becomes '_'. Leading and trailing '_' are trimmed and an empty
// result becomes "untitled".
func SanitizeLabel(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range norm.NFC.String(s) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		switch {
		case unicode.IsLetter(r), unicode.IsMark(r), unicode.IsDigit(r), r == '_', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "untitled"
	}
	return out
}

func documentName(h Header, ext string) string {
	return SanitizeLabel(h.ExamType) + "_" + SanitizeLabel(h.ExamDate) + ext
}
