package schedule

import "context"

// Store is the persisted (authoritative) schedule store.
type Store interface {
	ListSchedule(ctx context.Context, f Filter) ([]Record, error)
	InsertSchedule(ctx context.Context, r Record) (int64, error)
	UpdateSchedule(ctx context.Context, id int64, p Patch) error
	DeleteSchedule(ctx context.Context, id int64) error
	ListTeams(ctx context.Context) ([]Team, error)
	ListHalls(ctx context.Context) ([]Hall, error)
}

// Filter narrows ListSchedule. Empty fields do not filter.
type Filter struct {
	From     string // inclusive ISO date
	To       string // inclusive ISO date
	ClubTeam string
}

// Patch is a partial update; nil fields are left as they are.
type Patch struct {
	HomeTeam *string
	AwayTeam *string
	ClubTeam *string
	Date     *string
	Time     *string
	Location *string
	Category *string
	HallRef  *string
	Status   *Status
	Scores   *ScorePatch
}

// ScorePatch sets both scores at once; nil values clear them.
type ScorePatch struct {
	Home *int
	Away *int
}

// Team is one of the club's own teams.
type Team struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Hall is a venue; Short is the reference used in league exports
// (e.g. "1" or "H2").
type Hall struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Short   string `json:"short,omitempty"`
	Address string `json:"address,omitempty"`
}

// patchFrom builds a full-field patch from an edited record.
func patchFrom(r Record) Patch {
	st := r.Status
	return Patch{
		HomeTeam: strp(r.HomeTeam),
		AwayTeam: strp(r.AwayTeam),
		ClubTeam: strp(r.ClubTeam),
		Date:     strp(r.Date),
		Time:     strp(r.Time),
		Location: strp(r.Location),
		Category: strp(r.Category),
		HallRef:  strp(r.HallRef),
		Status:   &st,
		Scores:   &ScorePatch{Home: r.HomeScore, Away: r.AwayScore},
	}
}

// apply returns r with the patch's non-nil fields set.
func (p Patch) apply(r Record) Record {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&r.HomeTeam, p.HomeTeam)
	set(&r.AwayTeam, p.AwayTeam)
	set(&r.ClubTeam, p.ClubTeam)
	set(&r.Date, p.Date)
	set(&r.Time, p.Time)
	set(&r.Location, p.Location)
	set(&r.Category, p.Category)
	set(&r.HallRef, p.HallRef)
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Scores != nil {
		r.HomeScore, r.AwayScore = p.Scores.Home, p.Scores.Away
	}
	return r
}
