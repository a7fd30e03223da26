package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after canonical decomposition, so "ä"
// becomes "a" and "é" becomes "e". A fresh chain is built per call because
// transform.Chain keeps internal state.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldKey reduces a column header to its lookup form: lower-case, ß folded to
// ss, diacritics stripped and everything that is not a letter or digit
// dropped. "Mitglieds-Nr." and "mitgliedsnr" fold to the same key.
func FoldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "ß", "ss")
	s = stripMarks(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FoldTeam normalises a team name for identity keys: lower-case, punctuation
// removed, whitespace collapsed.
func FoldTeam(name string) string {
	name = strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FoldEmail trims and lower-cases an address.
func FoldEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
