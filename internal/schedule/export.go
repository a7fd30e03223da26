package schedule

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// DefaultDuration is the event length used for calendar exports.
const DefaultDuration = 3 * time.Hour

const productID = "-//clubsched//Spielplan//DE"

// WriteICS writes the view as an iCalendar feed. Records without a
// parseable date are left out.
func WriteICS(w io.Writer, view []Record, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	now := time.Now().UTC()
	for _, r := range view {
		start, ok := r.Start(loc)
		if !ok {
			continue
		}
		ev := cal.AddEvent(eventUID(r))
		ev.SetDtStampTime(now)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(DefaultDuration))
		ev.SetSummary(r.HomeTeam + " - " + r.AwayTeam)
		if r.Location != "" {
			ev.SetLocation(r.Location)
		}
		if d := describe(r); d != "" {
			ev.SetDescription(d)
		}
		if r.Status == StatusCanceled {
			ev.SetStatus(ics.ObjectStatusCancelled)
		}
	}
	_, err := io.WriteString(w, cal.Serialize())
	return err
}

func eventUID(r Record) string {
	switch {
	case r.ExternalUID != "":
		return r.ExternalUID
	case r.ID != 0:
		return fmt.Sprintf("schedule-%d@clubsched", r.ID)
	default:
		return strings.TrimPrefix(r.Identity, compositePrefix) + "@clubsched"
	}
}

func describe(r Record) string {
	var parts []string
	if r.Category != "" {
		parts = append(parts, r.Category)
	}
	if s := r.resultText(); s != "" && r.Status == StatusCompleted {
		parts = append(parts, "Ergebnis "+s)
	}
	return strings.Join(parts, "\n")
}

func (r Record) resultText() string {
	switch r.Status {
	case StatusCompleted:
		if r.HomeScore != nil && r.AwayScore != nil {
			return strconv.Itoa(*r.HomeScore) + ":" + strconv.Itoa(*r.AwayScore)
		}
	case StatusCanceled:
		return "abgesagt"
	}
	return ""
}

var csvHeader = []string{"Termin", "Zeit", "Heim", "Gast", "Staffel", "Halle", "Ort", "Ergebnis"}

// WriteCSV writes the view semicolon-delimited, in a shape ParseDelimited
// reads back.
func WriteCSV(w io.Writer, view []Record) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range view {
		if err := cw.Write([]string{
			r.Date, r.Time, r.HomeTeam, r.AwayTeam,
			r.Category, r.HallRef, r.Location, r.resultText(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
