package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/textnorm"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// Origin tells which store currently holds a record.
type Origin string

const (
	OriginEphemeral     Origin = "ephemeral"
	OriginAuthoritative Origin = "authoritative"
)

// Record is one fixture. ID is the persisted store's row id and is only set
// for authoritative records; Identity is the dedup key and never changes
// once assigned.
type Record struct {
	ID          int64  `json:"id,omitempty"`
	Identity    string `json:"identity"`
	ExternalUID string `json:"external_uid,omitempty"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	ClubTeam    string `json:"club_team"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location,omitempty"`
	Category    string `json:"category,omitempty"`
	HallRef     string `json:"hall_ref,omitempty"`
	Status      Status `json:"status"`
	HomeScore   *int   `json:"home_score"`
	AwayScore   *int   `json:"away_score"`
	Origin      Origin `json:"origin"`
}

// Validate checks structural completeness: a completed record carries both
// scores, any other status carries none, and the club team is one of the two
// participants whenever both are known.
func (r Record) Validate() error {
	switch r.Status {
	case StatusCompleted:
		if r.HomeScore == nil || r.AwayScore == nil {
			return fmt.Errorf("%w: completed fixture needs both scores", ErrInvalidRecord)
		}
		if *r.HomeScore < 0 || *r.AwayScore < 0 {
			return fmt.Errorf("%w: negative score", ErrInvalidRecord)
		}
	case StatusScheduled, StatusCanceled:
		if r.HomeScore != nil || r.AwayScore != nil {
			return fmt.Errorf("%w: scores set on a %s fixture", ErrInvalidRecord, r.Status)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, r.Status)
	}
	if r.bothTeamsKnown() && r.ClubTeam != "" && r.ClubTeam != r.HomeTeam && r.ClubTeam != r.AwayTeam {
		return fmt.Errorf("%w: club team %q plays neither side", ErrInvalidRecord, r.ClubTeam)
	}
	return nil
}

func (r Record) bothTeamsKnown() bool {
	return strings.TrimSpace(r.HomeTeam) != "" && strings.TrimSpace(r.AwayTeam) != ""
}

// HasDate reports whether Date holds a canonical ISO date.
func (r Record) HasDate() bool {
	_, err := time.Parse("2006-01-02", r.Date)
	return err == nil
}

// ClubIsHome reports whether the club's team is listed as the home side.
func (r Record) ClubIsHome() bool {
	return r.ClubTeam != "" && textnorm.FoldTeam(r.ClubTeam) == textnorm.FoldTeam(r.HomeTeam)
}

// Opponent is the participant that is not the club's team.
func (r Record) Opponent() string {
	if r.ClubIsHome() {
		return r.AwayTeam
	}
	return r.HomeTeam
}

// Composite is the date+participants key, independent of any uid.
func (r Record) Composite() string {
	return CompositeKey(r.Date, r.HomeTeam, r.AwayTeam)
}

// Start combines date and time in loc.
func (r Record) Start(loc *time.Location) (time.Time, bool) {
	tm := r.Time
	if tm == "" {
		tm = "00:00"
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", r.Date+" "+tm, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// swapSides exchanges home and away, keeping scores attached to their team.
func (r Record) swapSides() Record {
	r.HomeTeam, r.AwayTeam = r.AwayTeam, r.HomeTeam
	r.HomeScore, r.AwayScore = r.AwayScore, r.HomeScore
	return r
}

// sameFields compares the user-visible field tuple, ignoring identity,
// uid, origin and row id.
func (r Record) sameFields(o Record) bool {
	return r.Date == o.Date &&
		r.Time == o.Time &&
		r.HomeTeam == o.HomeTeam &&
		r.AwayTeam == o.AwayTeam &&
		r.ClubTeam == o.ClubTeam &&
		r.Location == o.Location &&
		r.Category == o.Category &&
		r.HallRef == o.HallRef &&
		r.Status == o.Status &&
		eqScore(r.HomeScore, o.HomeScore) &&
		eqScore(r.AwayScore, o.AwayScore)
}

func eqScore(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intp(v int) *int { return &v }

func strp(s string) *string { return &s }
