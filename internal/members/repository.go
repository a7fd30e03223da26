package members

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type memberRow struct {
	ID           int64   `gorm:"primaryKey"`
	MemberNumber *string // unique when set
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Mobile       string
	Street       string
	PostalCode   string
	City         string
	BirthDate    string
	Rating       *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (memberRow) TableName() string { return "members" }

func (r memberRow) member() Member {
	m := Member{
		ID:         r.ID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		Mobile:     r.Mobile,
		Street:     r.Street,
		PostalCode: r.PostalCode,
		City:       r.City,
		BirthDate:  r.BirthDate,
		Rating:     r.Rating,
	}
	if r.MemberNumber != nil {
		m.MemberNumber = *r.MemberNumber
	}
	return m
}

func pstr(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

// columns maps member fields to roster columns.
var columns = map[string]string{
	FieldMemberNumber: "member_number",
	FieldFirstName:    "first_name",
	FieldLastName:     "last_name",
	FieldEmail:        "email",
	FieldPhone:        "phone",
	FieldMobile:       "mobile",
	FieldStreet:       "street",
	FieldPostalCode:   "postal_code",
	FieldCity:         "city",
	FieldBirthDate:    "birth_date",
	FieldRating:       "rating",
}

// Repository is the gorm-backed roster.
type Repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) *Repository { return &Repository{db: db} }

func (r *Repository) ListRoster(ctx context.Context, f Filter) ([]Member, error) {
	q := r.db.WithContext(ctx).Model(&memberRow{})
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR lower(email) LIKE ? OR lower(member_number) LIKE ?",
			like, like, like, like)
	}
	var rows []memberRow
	if err := q.Order("last_name, first_name, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.member())
	}
	return out, nil
}

func (r *Repository) InsertMember(ctx context.Context, m Member) (Member, error) {
	row := memberRow{
		MemberNumber: pstr(m.MemberNumber),
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		Phone:        m.Phone,
		Mobile:       m.Mobile,
		Street:       m.Street,
		PostalCode:   m.PostalCode,
		City:         m.City,
		BirthDate:    m.BirthDate,
		Rating:       m.Rating,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Member{}, err
	}
	return row.member(), nil
}

// UpsertRosterFields writes the given fields of one member. Empty values
// are skipped.
func (r *Repository) UpsertRosterFields(ctx context.Context, id int64, fields map[string]string) error {
	cols := map[string]any{}
	for f, v := range fields {
		col, ok := columns[f]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
		if strings.TrimSpace(v) == "" {
			continue
		}
		if f == FieldRating {
			n, ok := ParseRating(v)
			if !ok {
				return fmt.Errorf("invalid rating %q", v)
			}
			cols[col] = n
			continue
		}
		cols[col] = strings.TrimSpace(v)
	}
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&memberRow{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}
