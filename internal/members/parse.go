package members

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/dates"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/textnorm"
)

const maxBackupSize = 10 << 20

// HeaderAliases maps folded backup headers to member fields.
var HeaderAliases = textnorm.NewAliasTable(map[string][]string{
	FieldMemberNumber: {"mitgliedsnr", "mitgliedsnummer", "mitgliednr", "membernumber", "memberno", "nr"},
	FieldFirstName:    {"vorname", "firstname", "first"},
	FieldLastName:     {"nachname", "familienname", "name", "lastname", "surname"},
	FieldEmail:        {"email", "e-mail", "mail", "emailadresse"},
	FieldPhone:        {"telefon", "tel", "phone", "festnetz", "telefonprivat"},
	FieldMobile:       {"mobil", "handy", "mobile", "mobiltelefon", "mobilnummer"},
	FieldStreet:       {"straße", "strasse", "street", "anschrift", "adresse"},
	FieldPostalCode:   {"plz", "postleitzahl", "zip", "postalcode"},
	FieldCity:         {"ort", "wohnort", "stadt", "city"},
	FieldBirthDate:    {"geburtsdatum", "geburtstag", "geboren", "birthdate", "birthday"},
	FieldRating:       {"qttr", "ttr", "qttrwert", "ttrwert", "rating", "spielstaerke"},
})

// Upload is a parsed member backup.
type Upload struct {
	Rows     []Member `json:"rows"`
	Total    int      `json:"total"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// ParseBackup reads a CSV (auto-detected delimiter) or XLSX backup.
func ParseBackup(name string, data []byte) (Upload, error) {
	if len(data) > maxBackupSize {
		return Upload{}, fmt.Errorf("%w: file larger than %d bytes", ErrUnsupportedFormat, maxBackupSize)
	}
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".txt":
		rows, err = readDelimited(data)
	case ".xlsx":
		rows, err = readXLSX(data)
	default:
		return Upload{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Upload{}, err
	}
	for len(rows) > 0 && strings.TrimSpace(strings.Join(rows[0], "")) == "" {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return Upload{}, fmt.Errorf("%w: no header row", ErrEmptyInput)
	}
	return ParseRows(rows[0], rows[1:]), nil
}

func readDelimited(data []byte) ([][]string, error) {
	text, delim := textnorm.PrepareDelimited(data)
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read delimited: %w", err)
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: no sheet", ErrEmptyInput)
	}
	return f.GetRows(sheet)
}

// ParseRows maps backup rows to members. Rows without any identifying
// field are skipped; unreadable birth dates are kept as written and
// unreadable ratings dropped, both with a warning.
func ParseRows(headers []string, rows [][]string) Upload {
	cols := HeaderAliases.MapHeaders(headers)
	var up Upload
	for i, cells := range rows {
		row := textnorm.NewRow(cols, cells)
		if row.Blank() {
			continue
		}
		up.Total++
		line := i + 2
		var m Member
		for _, f := range Fields {
			v := row.Get(f)
			if v == "" {
				continue
			}
			switch f {
			case FieldBirthDate:
				d := dates.ParseDate(v)
				if !d.IsParsed() {
					up.Warnings = append(up.Warnings, fmt.Sprintf("row %d: unparsed birth date %q kept as is", line, v))
				}
				m.BirthDate = d.String()
			case FieldRating:
				if err := m.Set(f, v); err != nil {
					up.Warnings = append(up.Warnings, fmt.Sprintf("row %d: %v", line, err))
				}
			default:
				_ = m.Set(f, v)
			}
		}
		if Identity(m) == "" {
			up.Skipped++
			continue
		}
		up.Rows = append(up.Rows, m)
	}
	return up
}
