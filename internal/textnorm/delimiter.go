// Package textnorm holds the text helpers shared by the schedule and member
// importers: delimiter sniffing, header folding and team-name folding.
package textnorm

import (
	"bytes"
	"strings"
)

// DefaultDelimiter is used when the first line gives no signal.
const DefaultDelimiter = ';'

var candidates = []rune{',', ';', '\t'}

// DetectDelimiter picks the field separator for delimited text by counting
// commas, semicolons and tabs on the first non-empty line, ignoring anything
// inside quotes. Ties and lines without any separator fall back to ';'.
func DetectDelimiter(text string) rune {
	line := firstLine(text)
	if line == "" {
		return DefaultDelimiter
	}

	counts := make(map[rune]int, len(candidates))
	inQuotes := false
	rs := []rune(line)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '"' {
			// "" inside a quoted span is a literal quote
			if inQuotes && i+1 < len(rs) && rs[i+1] == '"' {
				i++
				continue
			}
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		switch r {
		case ',', ';', '\t':
			counts[r]++
		}
	}

	best, bestCount, tie := DefaultDelimiter, 0, false
	for _, c := range candidates {
		n := counts[c]
		switch {
		case n > bestCount:
			best, bestCount, tie = c, n, false
		case n == bestCount && n > 0:
			tie = true
		}
	}
	if bestCount == 0 || tie {
		return DefaultDelimiter
	}
	return best
}

func firstLine(text string) string {
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) != "" {
			return l
		}
	}
	return ""
}

// PrepareDelimited strips a UTF-8 BOM, normalises line endings and returns
// the cleaned text together with the detected delimiter.
func PrepareDelimited(data []byte) (string, rune) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, DetectDelimiter(text)
}
