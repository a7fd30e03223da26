package schedule

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// scheduleRow is the persisted shape of a record. The store does not keep
// identities or source uids.
type scheduleRow struct {
	ID        int64 `gorm:"primaryKey"`
	HomeTeam  string
	AwayTeam  string
	ClubTeam  string
	Date      string
	Time      string
	Location  string
	Category  string
	HallRef   string
	Status    string
	HomeScore *int
	AwayScore *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (scheduleRow) TableName() string { return "schedule" }

func (s scheduleRow) record() Record {
	return Record{
		ID:        s.ID,
		HomeTeam:  s.HomeTeam,
		AwayTeam:  s.AwayTeam,
		ClubTeam:  s.ClubTeam,
		Date:      s.Date,
		Time:      s.Time,
		Location:  s.Location,
		Category:  s.Category,
		HallRef:   s.HallRef,
		Status:    Status(s.Status),
		HomeScore: s.HomeScore,
		AwayScore: s.AwayScore,
		Origin:    OriginAuthoritative,
	}
}

type teamRow struct {
	ID       int64 `gorm:"primaryKey"`
	Name     string
	Category string
}

func (teamRow) TableName() string { return "teams" }

type hallRow struct {
	ID      int64 `gorm:"primaryKey"`
	Name    string
	Short   string
	Address string
}

func (hallRow) TableName() string { return "halls" }

// Repository is the gorm-backed persisted store.
type Repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) *Repository { return &Repository{db: db} }

func (r *Repository) ListSchedule(ctx context.Context, f Filter) ([]Record, error) {
	q := r.db.WithContext(ctx).Model(&scheduleRow{})
	if f.From != "" {
		q = q.Where("date >= ?", f.From)
	}
	if f.To != "" {
		q = q.Where("date <= ?", f.To)
	}
	if f.ClubTeam != "" {
		q = q.Where("club_team = ?", f.ClubTeam)
	}
	var rows []scheduleRow
	if err := q.Order("date, time, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.record())
	}
	return out, nil
}

func (r *Repository) InsertSchedule(ctx context.Context, rec Record) (int64, error) {
	if rec.Status == "" {
		rec.Status = StatusScheduled
	}
	row := scheduleRow{
		HomeTeam:  rec.HomeTeam,
		AwayTeam:  rec.AwayTeam,
		ClubTeam:  rec.ClubTeam,
		Date:      rec.Date,
		Time:      rec.Time,
		Location:  rec.Location,
		Category:  rec.Category,
		HallRef:   rec.HallRef,
		Status:    string(rec.Status),
		HomeScore: rec.HomeScore,
		AwayScore: rec.AwayScore,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *Repository) UpdateSchedule(ctx context.Context, id int64, p Patch) error {
	cols := map[string]any{}
	put := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	put("home_team", p.HomeTeam)
	put("away_team", p.AwayTeam)
	put("club_team", p.ClubTeam)
	put("date", p.Date)
	put("time", p.Time)
	put("location", p.Location)
	put("category", p.Category)
	put("hall_ref", p.HallRef)
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.Scores != nil {
		cols["home_score"] = nullable(p.Scores.Home)
		cols["away_score"] = nullable(p.Scores.Away)
	}
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&scheduleRow{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

func nullable(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func (r *Repository) DeleteSchedule(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&scheduleRow{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

func (r *Repository) ListTeams(ctx context.Context) ([]Team, error) {
	var rows []teamRow
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Team, 0, len(rows))
	for _, t := range rows {
		out = append(out, Team(t))
	}
	return out, nil
}

func (r *Repository) ListHalls(ctx context.Context) ([]Hall, error) {
	var rows []hallRow
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Hall, 0, len(rows))
	for _, h := range rows {
		out = append(out, Hall(h))
	}
	return out, nil
}

// CreateTeam adds one of the club's teams.
func (r *Repository) CreateTeam(ctx context.Context, t Team) (Team, error) {
	row := teamRow(t)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Team{}, err
	}
	return Team(row), nil
}

// CreateHall adds a venue.
func (r *Repository) CreateHall(ctx context.Context, h Hall) (Hall, error) {
	row := hallRow(h)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Hall{}, err
	}
	return Hall(row), nil
}
