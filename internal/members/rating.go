package members

import (
	"strconv"
	"strings"
)

// ParseRating reads a rating written with either ',' or '.' as decimal
// separator. Thousands separators are stripped first: when both separators
// occur the rightmost one is the decimal separator; a separator that occurs
// more than once, or once followed by exactly three digits, groups thousands.
func ParseRating(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	comma, dot := strings.LastIndexByte(s, ','), strings.LastIndexByte(s, '.')
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		s = single(s, ",")
	case dot >= 0:
		s = single(s, ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func single(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, "")
	}
	i := strings.Index(s, sep)
	intPart, frac := s[:i], s[i+1:]
	if len(frac) == 3 && intPart != "" && intPart != "0" && intPart != "-" {
		return intPart + frac
	}
	return intPart + "." + frac
}
