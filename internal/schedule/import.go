package schedule

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/textnorm"
)

// maxImportSize caps uploads read into memory.
const maxImportSize = 10 << 20

// HeaderAliases maps folded schedule headers to canonical fields.
var HeaderAliases = textnorm.NewAliasTable(map[string][]string{
	"date":     {"date", "datum", "termin", "spieltermin"},
	"time":     {"time", "zeit", "uhrzeit", "beginn", "anstoss"},
	"homeTeam": {"hometeam", "heim", "heimmannschaft", "heimteam", "home"},
	"awayTeam": {"awayteam", "gast", "gastmannschaft", "gastteam", "away"},
	"match":    {"begegnung", "paarung", "match"},
	"category": {"category", "staffel", "liga", "gruppe", "klasse", "group"},
	"hallRef":  {"hallref", "halle", "hallenr", "spiellokal", "hall"},
	"location": {"location", "ort", "spielort", "adresse"},
	"result":   {"result", "ergebnis", "resultat", "score"},
})

// ParseFile dispatches on the file extension.
func ParseFile(name string, data []byte, opts ParseOptions) (Batch, error) {
	if len(data) > maxImportSize {
		return Batch{}, fmt.Errorf("%w: file larger than %d bytes", ErrUnsupportedFormat, maxImportSize)
	}
	var (
		b   Batch
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".ics", ".ical":
		b, err = ParseCalendar(bytes.NewReader(data), opts)
	case ".csv", ".txt":
		b, err = ParseDelimited(bytes.NewReader(data), opts)
	case ".xlsx":
		b, err = ParseXLSX(data, opts)
	default:
		return Batch{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Batch{}, err
	}
	b.Source = filepath.Base(name)
	return b, nil
}

// ParseDelimited reads delimited text with an auto-detected delimiter.
func ParseDelimited(r io.Reader, opts ParseOptions) (Batch, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImportSize))
	if err != nil {
		return Batch{}, err
	}
	text, delim := textnorm.PrepareDelimited(data)
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return Batch{}, fmt.Errorf("read delimited: %w", err)
	}
	rows = dropLeadingBlank(rows)
	if len(rows) == 0 {
		return Batch{}, fmt.Errorf("%w: no header row", ErrEmptyInput)
	}
	b := ParseRows(rows[0], rows[1:], opts)
	b.Source = "csv"
	return b, nil
}

// ParseXLSX converts the first sheet into rows and hands them to ParseRows.
func ParseXLSX(data []byte, opts ParseOptions) (Batch, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Batch{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return Batch{}, fmt.Errorf("%w: no sheet", ErrEmptyInput)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Batch{}, err
	}
	rows = dropLeadingBlank(rows)
	if len(rows) == 0 {
		return Batch{}, fmt.Errorf("%w: empty sheet", ErrEmptyInput)
	}
	b := ParseRows(rows[0], rows[1:], opts)
	b.Source = "xlsx"
	return b, nil
}

// ParseRows maps tabular data with named columns to records. Blank rows are
// not counted; rows without a date token or without both teams are skipped.
func ParseRows(headers []string, rows [][]string, opts ParseOptions) Batch {
	cols := HeaderAliases.MapHeaders(headers)
	var warns []string
	if missing := missingColumns(cols); len(missing) > 0 {
		warns = append(warns, "missing columns: "+strings.Join(missing, ", "))
	}
	ex := opts.extractor()
	var (
		cands          []Candidate
		total, skipped int
	)
	for _, cells := range rows {
		row := textnorm.NewRow(cols, cells)
		if row.Blank() {
			continue
		}
		c := DelimitedCandidate{
			Index:    total,
			Date:     row.Get("date"),
			Time:     row.Get("time"),
			Home:     row.Get("homeTeam"),
			Away:     row.Get("awayTeam"),
			Category: row.Get("category"),
			HallRef:  row.Get("hallRef"),
			Location: row.Get("location"),
			Result:   row.Get("result"),
		}
		total++
		if (c.Home == "" || c.Away == "") && row.Get("match") != "" {
			if t, ok := ex.Extract(row.Get("match"), ""); ok {
				c.Home, c.Away = t.Home, t.Away
			}
		}
		if c.Date == "" || c.Home == "" || c.Away == "" {
			skipped++
			continue
		}
		cands = append(cands, c)
	}
	return converge("rows", cands, total, skipped, warns, opts)
}

func missingColumns(cols map[int]string) []string {
	have := make(map[string]bool, len(cols))
	for _, f := range cols {
		have[f] = true
	}
	var missing []string
	if !have["date"] {
		missing = append(missing, "date")
	}
	if !have["match"] {
		for _, f := range []string{"homeTeam", "awayTeam"} {
			if !have[f] {
				missing = append(missing, f)
			}
		}
	}
	return missing
}

func dropLeadingBlank(rows [][]string) [][]string {
	for len(rows) > 0 && strings.TrimSpace(strings.Join(rows[0], "")) == "" {
		rows = rows[1:]
	}
	return rows
}
