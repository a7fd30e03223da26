package members

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Canonical member fields, in display order.
const (
	FieldMemberNumber = "memberNumber"
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldMobile       = "mobile"
	FieldStreet       = "street"
	FieldPostalCode   = "postalCode"
	FieldCity         = "city"
	FieldBirthDate    = "birthDate"
	FieldRating       = "rating"
)

// Fields lists every comparable field.
var Fields = []string{
	FieldMemberNumber, FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldMobile,
	FieldStreet, FieldPostalCode, FieldCity, FieldBirthDate, FieldRating,
}

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrEmptyInput        = errors.New("empty input")
	ErrUnknownField      = errors.New("unknown member field")
	ErrNotFound          = errors.New("member not found")
	ErrStoreWrite        = errors.New("roster write failed")
)

type Member struct {
	ID           int64    `json:"id,omitempty"`
	MemberNumber string   `json:"member_number,omitempty"`
	FirstName    string   `json:"first_name,omitempty"`
	LastName     string   `json:"last_name,omitempty"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Mobile       string   `json:"mobile,omitempty"`
	Street       string   `json:"street,omitempty"`
	PostalCode   string   `json:"postal_code,omitempty"`
	City         string   `json:"city,omitempty"`
	BirthDate    string   `json:"birth_date,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
}

func (m *Member) ref(field string) *string {
	switch field {
	case FieldMemberNumber:
		return &m.MemberNumber
	case FieldFirstName:
		return &m.FirstName
	case FieldLastName:
		return &m.LastName
	case FieldEmail:
		return &m.Email
	case FieldPhone:
		return &m.Phone
	case FieldMobile:
		return &m.Mobile
	case FieldStreet:
		return &m.Street
	case FieldPostalCode:
		return &m.PostalCode
	case FieldCity:
		return &m.City
	case FieldBirthDate:
		return &m.BirthDate
	}
	return nil
}

// Get returns a field as text; an unset rating is "".
func (m Member) Get(field string) string {
	if field == FieldRating {
		if m.Rating == nil {
			return ""
		}
		return formatRating(*m.Rating)
	}
	if p := m.ref(field); p != nil {
		return *p
	}
	return ""
}

// Set assigns a field from text.
func (m *Member) Set(field, value string) error {
	if field == FieldRating {
		if strings.TrimSpace(value) == "" {
			m.Rating = nil
			return nil
		}
		v, ok := ParseRating(value)
		if !ok {
			return fmt.Errorf("invalid rating %q", value)
		}
		m.Rating = &v
		return nil
	}
	p := m.ref(field)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	*p = strings.TrimSpace(value)
	return nil
}

// FullName is "First Last".
func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
