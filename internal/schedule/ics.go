package schedule

import (
	"fmt"
	"io"
	"strings"

	ics "github.com/arran4/golang-ical"
)

var icsUnescape = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

func icsText(ev *ics.VEvent, p ics.ComponentProperty) string {
	prop := ev.GetProperty(p)
	if prop == nil {
		return ""
	}
	return strings.TrimSpace(icsUnescape.Replace(prop.Value))
}

// ParseCalendar reads calendar-event text. Every VEVENT becomes one
// candidate; events without a start or without any summary are skipped.
// When the extractor cannot find two teams the summary is kept as the home
// side so the fixture still shows up, with the away side left unknown.
func ParseCalendar(r io.Reader, opts ParseOptions) (Batch, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return Batch{}, fmt.Errorf("parse calendar: %w", err)
	}
	events := cal.Events()
	if len(events) == 0 {
		return Batch{}, fmt.Errorf("%w: calendar has no events", ErrEmptyInput)
	}
	ex := opts.extractor()
	var (
		cands   []Candidate
		skipped int
		warns   []string
	)
	for i, ev := range events {
		c := CalendarCandidate{
			Index:       i,
			UID:         ev.Id(),
			Summary:     icsText(ev, ics.ComponentPropertySummary),
			Description: icsText(ev, ics.ComponentPropertyDescription),
			Location:    icsText(ev, ics.ComponentPropertyLocation),
			Start:       icsText(ev, ics.ComponentPropertyDtStart),
			Cancelled:   strings.EqualFold(icsText(ev, ics.ComponentPropertyStatus), string(ics.ObjectStatusCancelled)),
		}
		if c.Start == "" || (c.Summary == "" && c.Description == "") {
			skipped++
			continue
		}
		teams, ok := ex.Extract(c.Summary, c.Description)
		if !ok {
			teams = Teams{Home: c.Summary}
			warns = append(warns, fmt.Sprintf("event %d: no opponent found in %q", i, c.Summary))
		}
		c.Teams = teams
		cands = append(cands, c)
	}
	return converge("ics", cands, len(events), skipped, warns, opts), nil
}
