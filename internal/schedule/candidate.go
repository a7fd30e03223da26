package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/dates"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/textnorm"
)

// Candidate is a parsed but not yet normalised fixture. It is either a
// CalendarCandidate or a DelimitedCandidate; both converge to Record before
// any dedup logic sees them.
type Candidate interface {
	index() int
	toRecord(opts ParseOptions) (Record, []string)
}

// CalendarCandidate comes from one VEVENT.
type CalendarCandidate struct {
	Index       int
	UID         string
	Summary     string
	Description string
	Location    string
	Start       string // raw DTSTART value
	Cancelled   bool
	Teams       Teams
}

// DelimitedCandidate comes from one CSV or spreadsheet row.
type DelimitedCandidate struct {
	Index    int
	Date     string
	Time     string
	Home     string
	Away     string
	Category string
	HallRef  string
	Location string
	Result   string
}

func (c CalendarCandidate) index() int  { return c.Index }
func (c DelimitedCandidate) index() int { return c.Index }

func (c CalendarCandidate) toRecord(opts ParseOptions) (Record, []string) {
	d, tm := dates.FromICS(c.Start, opts.location())
	r := Record{
		ExternalUID: strings.TrimSpace(c.UID),
		HomeTeam:    c.Teams.Home,
		AwayTeam:    c.Teams.Away,
		Date:        d.String(),
		Time:        tm,
		Location:    c.Location,
		Status:      StatusScheduled,
		Origin:      OriginEphemeral,
	}
	if c.Cancelled {
		r.Status = StatusCanceled
	}
	var warns []string
	if !d.IsParsed() {
		warns = append(warns, fmt.Sprintf("event %d: unparsed date %q kept as is", c.Index, d.Raw()))
	}
	return r, warns
}

func (c DelimitedCandidate) toRecord(opts ParseOptions) (Record, []string) {
	d, tm := dates.Split(c.Date)
	if c.Time != "" {
		tm = dates.NormalizeTime(c.Time)
	}
	r := Record{
		HomeTeam: c.Home,
		AwayTeam: c.Away,
		Date:     d.String(),
		Time:     tm,
		Location: c.Location,
		Category: c.Category,
		HallRef:  c.HallRef,
		Status:   StatusScheduled,
		Origin:   OriginEphemeral,
	}
	var warns []string
	if !d.IsParsed() {
		warns = append(warns, fmt.Sprintf("row %d: unparsed date %q kept as is", c.Index+2, d.Raw()))
	}
	switch res := parseResult(c.Result); res.kind {
	case resultScore:
		r.Status, r.HomeScore, r.AwayScore = StatusCompleted, intp(res.home), intp(res.away)
	case resultCanceled:
		r.Status = StatusCanceled
	}
	return r, warns
}

type resultKind int

const (
	resultNone resultKind = iota
	resultScore
	resultCanceled
)

type result struct {
	kind       resultKind
	home, away int
}

var scoreRe = regexp.MustCompile(`^(\d{1,2})\s*[:\-]\s*(\d{1,2})$`)

// parseResult reads "9:3", "9 - 3" or a cancellation marker.
func parseResult(s string) result {
	s = strings.TrimSpace(s)
	if m := scoreRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		a, _ := strconv.Atoi(m[2])
		return result{kind: resultScore, home: h, away: a}
	}
	switch textnorm.FoldKey(s) {
	case "abgesagt", "ausgefallen", "canceled", "cancelled", "abgesetzt":
		return result{kind: resultCanceled}
	}
	return result{}
}

// Teams is what a TeamExtractor reads out of an event, in the order the
// source states them.
type Teams struct {
	Home string
	Away string
}

// TeamExtractor derives the participants of a calendar event.
type TeamExtractor interface {
	Extract(summary, description string) (Teams, bool)
}

// ExtractorFunc adapts a function to TeamExtractor.
type ExtractorFunc func(summary, description string) (Teams, bool)

func (f ExtractorFunc) Extract(summary, description string) (Teams, bool) {
	return f(summary, description)
}

// SummaryExtractor splits "Home - Away" style summaries on the first
// separator found, falling back to the first line of the description.
type SummaryExtractor struct {
	Separators []string
}

// DefaultExtractor understands the separators used by the common league
// calendar exports.
var DefaultExtractor = SummaryExtractor{
	Separators: []string{" - ", " – ", " — ", " vs. ", " vs ", " : ", " gegen "},
}

func (e SummaryExtractor) Extract(summary, description string) (Teams, bool) {
	if t, ok := e.split(summary); ok {
		return t, true
	}
	first, _, _ := strings.Cut(strings.TrimSpace(description), "\n")
	return e.split(first)
}

func (e SummaryExtractor) split(s string) (Teams, bool) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, sep := range e.Separators {
		i := strings.Index(lower, sep)
		if i < 0 {
			continue
		}
		home := strings.TrimSpace(s[:i])
		away := strings.TrimSpace(s[i+len(sep):])
		if home != "" && away != "" {
			return Teams{Home: home, Away: away}, true
		}
	}
	return Teams{}, false
}

// ParseOptions carries what the parsers need beyond the raw file.
type ParseOptions struct {
	Club      ClubResolver
	Extractor TeamExtractor
	Location  *time.Location
	Halls     []Hall
}

func (o ParseOptions) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func (o ParseOptions) extractor() TeamExtractor {
	if o.Extractor == nil {
		return DefaultExtractor
	}
	return o.Extractor
}

// Batch is the output of one parse: normalised records in file order plus
// the bookkeeping shown to the user.
type Batch struct {
	Source   string   `json:"source"`
	Records  []Record `json:"records"`
	Total    int      `json:"total"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// Summary renders the skip count the way the upload dialog shows it.
func (b Batch) Summary() string {
	return fmt.Sprintf("%d of %d rows skipped", b.Skipped, b.Total)
}

// converge turns candidates into records: club team, hall enrichment and
// identities are assigned in file order.
func converge(source string, cands []Candidate, total, skipped int, warns []string, opts ParseOptions) Batch {
	b := Batch{Source: source, Total: total, Skipped: skipped, Warnings: warns}
	ids := NewIdentityResolver()
	for _, c := range cands {
		r, w := c.toRecord(opts)
		b.Warnings = append(b.Warnings, w...)
		r.ClubTeam = opts.Club.Resolve(r.HomeTeam, r.AwayTeam)
		if r.Location == "" {
			if h, ok := findHall(opts.Halls, r.HallRef); ok {
				r.Location = h.Address
			}
		}
		r.Identity = ids.Resolve(r, c.index())
		b.Records = append(b.Records, r)
	}
	return b
}

func findHall(halls []Hall, ref string) (Hall, bool) {
	k := textnorm.FoldKey(ref)
	if k == "" {
		return Hall{}, false
	}
	for _, h := range halls {
		if k == textnorm.FoldKey(h.Name) || (h.Short != "" && k == textnorm.FoldKey(h.Short)) {
			return h, true
		}
	}
	return Hall{}, false
}
