// Package dates turns the date and time literals found in club import files
// into canonical ISO dates and 24h times.
//
// Parsing never fails hard: a literal that matches no rule comes back as an
// Unparsed outcome carrying the original text, so a single bad row cannot
// abort an import.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const isoLayout = "2006-01-02"

// DefaultTime is used when a literal carries no usable time.
const DefaultTime = "00:00"

type kind uint8

const (
	unparsed kind = iota
	parsed
)

// Date is the outcome of date normalisation: either Parsed with a canonical
// ISO date, or Unparsed with the literal input preserved.
type Date struct {
	kind kind
	iso  string
	raw  string
}

// Parsed wraps a canonical YYYY-MM-DD value.
func Parsed(iso string) Date { return Date{kind: parsed, iso: iso, raw: iso} }

// Unparsed keeps a literal that could not be normalised.
func Unparsed(raw string) Date { return Date{kind: unparsed, raw: raw} }

func (d Date) IsParsed() bool { return d.kind == parsed }

// ISO returns the canonical date and whether the literal was understood.
func (d Date) ISO() (string, bool) { return d.iso, d.kind == parsed }

// Raw returns the literal the outcome was built from.
func (d Date) Raw() string { return d.raw }

// String renders the ISO date when parsed and the literal otherwise.
func (d Date) String() string {
	if d.kind == parsed {
		return d.iso
	}
	return d.raw
}

var (
	isoRe     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})(?:\D|$)`)
	weekdayRe = regexp.MustCompile(`^\p{L}{2,3}\.\s*(\d{1,2})\.(\d{1,2})\.(\d{4}|\d{2})\b`)
	dottedRe  = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4}|\d{2})\b`)
	slashRe   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})\b`)

	clockRe      = regexp.MustCompile(`(?:^|[^\d])(\d{1,2}:\d{2})(?::\d{2})?(?:[^\d]|$)`)
	annotationRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	hourRe       = regexp.MustCompile(`^(\d{1,2})$`)
	hourMinRe    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?$`)
)

// genericLayouts are tried before handing the literal to the natural
// language parser.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"20060102",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, 02 Jan 2006",
}

// now is the reference for relative expressions handled by the fallback
// parser.
var now = time.Now

// fallbackRules are the date-only rules of the natural language parser;
// clock rules such as "noon" would otherwise resolve to today.
var fallbackRules = []rules.Rule{
	en.CasualDate(rules.Override),
	en.ExactMonthDate(rules.Override),
	common.SlashDMY(rules.Override),
}

// ParseDate normalises a date literal. Rules in priority order: ISO
// YYYY-MM-DD, a weekday abbreviation followed by DD.MM.YYYY, bare DD.MM.YYYY
// or DD.MM.YY, DD/MM/YYYY or DD/MM/YY, then generic parsing. Two digit years
// are read as 20YY.
func ParseDate(literal string) Date {
	s := strings.TrimSpace(literal)
	if s == "" {
		return Unparsed(literal)
	}

	// a literal shaped like a numeric date but out of range stays unparsed
	if m := isoRe.FindStringSubmatch(s); m != nil {
		if d, ok := build(m[3], m[2], m[1]); ok {
			return d
		}
		return Unparsed(literal)
	}
	for _, re := range []*regexp.Regexp{weekdayRe, dottedRe, slashRe} {
		if m := re.FindStringSubmatch(s); m != nil {
			if d, ok := build(m[1], m[2], m[3]); ok {
				return d
			}
			return Unparsed(literal)
		}
	}
	if d, ok := generic(s); ok {
		return d
	}
	return Unparsed(literal)
}

func build(day, month, year string) (Date, bool) {
	if len(year) == 2 {
		year = "20" + year
	}
	dd, err1 := strconv.Atoi(day)
	mm, err2 := strconv.Atoi(month)
	yy, err3 := strconv.Atoi(year)
	if err1 != nil || err2 != nil || err3 != nil {
		return Date{}, false
	}
	iso := fmt.Sprintf("%04d-%02d-%02d", yy, mm, dd)
	// rejects 31.02. and friends
	if _, err := time.Parse(isoLayout, iso); err != nil {
		return Date{}, false
	}
	return Parsed(iso), true
}

func generic(s string) (Date, bool) {
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Parsed(t.Format(isoLayout)), true
		}
	}

	w := when.New(nil)
	w.Add(fallbackRules...)
	r, err := w.Parse(s, now())
	// only a match spanning the whole literal counts
	if err != nil || r == nil || r.Index != 0 || len(r.Text) != len(s) {
		return Date{}, false
	}
	return Parsed(r.Time.Format(isoLayout)), true
}

// NormalizeTime turns "9", "09", "9:30" or "19:30 Uhr" into HH:MM. Anything
// else yields DefaultTime.
func NormalizeTime(literal string) string {
	s := strings.TrimSpace(literal)
	if len(s) >= 3 && strings.EqualFold(s[len(s)-3:], "uhr") {
		s = strings.TrimSpace(s[:len(s)-3])
	}
	if m := hourRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h <= 23 {
			return fmt.Sprintf("%02d:00", h)
		}
		return DefaultTime
	}
	if m := hourMinRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		if h <= 23 && mi <= 59 {
			return fmt.Sprintf("%02d:%02d", h, mi)
		}
	}
	return DefaultTime
}

// Split handles combined literals such as "Sa. 20.09.2025 12:00 (2)":
// trailing parenthesised annotations are dropped, the first clock token
// becomes the time and the rest is parsed as a date.
func Split(literal string) (Date, string) {
	s := strings.TrimSpace(literal)
	for annotationRe.MatchString(s) {
		s = annotationRe.ReplaceAllString(s, "")
	}

	tm := DefaultTime
	dateText := s
	if loc := clockRe.FindStringSubmatchIndex(s); loc != nil {
		tm = NormalizeTime(s[loc[2]:loc[3]])
		dateText = strings.TrimSpace(s[:loc[2]])
		if dateText == "" {
			return Unparsed(literal), tm
		}
	}

	d := ParseDate(dateText)
	if !d.IsParsed() {
		return Unparsed(literal), tm
	}
	return d, tm
}

// FromICS reads an iCalendar DTSTART value: YYYYMMDD, YYYYMMDDTHHMMSS
// (floating local time) or YYYYMMDDTHHMMSSZ (UTC, converted into loc).
func FromICS(value string, loc *time.Location) (Date, string) {
	v := strings.TrimSpace(value)
	if loc == nil {
		loc = time.UTC
	}
	if strings.HasSuffix(v, "Z") {
		if t, err := time.Parse("20060102T150405Z", v); err == nil {
			t = t.In(loc)
			return Parsed(t.Format(isoLayout)), t.Format("15:04")
		}
	}
	if t, err := time.Parse("20060102T150405", v); err == nil {
		return Parsed(t.Format(isoLayout)), t.Format("15:04")
	}
	if t, err := time.Parse("20060102", v); err == nil {
		return Parsed(t.Format(isoLayout)), DefaultTime
	}
	return Split(v)
}
