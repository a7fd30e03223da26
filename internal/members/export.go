package members

import (
	"encoding/csv"
	"io"

	"github.com/xuri/excelize/v2"
)

var backupHeader = []string{
	"Mitgliedsnummer", "Vorname", "Nachname", "E-Mail", "Telefon", "Mobil",
	"Straße", "PLZ", "Ort", "Geburtsdatum", "QTTR",
}

func backupRow(m Member) []string {
	out := make([]string, 0, len(Fields))
	for _, f := range Fields {
		out = append(out, m.Get(f))
	}
	return out
}

// WriteBackupCSV writes the roster semicolon-delimited, readable by
// ParseBackup.
func WriteBackupCSV(w io.Writer, roster []Member) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(backupHeader); err != nil {
		return err
	}
	for _, m := range roster {
		if err := cw.Write(backupRow(m)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBackupXLSX writes the roster as a single-sheet workbook.
func WriteBackupXLSX(w io.Writer, roster []Member) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Mitglieder"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	write := func(row int, cells []string) error {
		vals := make([]any, len(cells))
		for i, c := range cells {
			vals[i] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, cell, &vals)
	}
	if err := write(1, backupHeader); err != nil {
		return err
	}
	for i, m := range roster {
		if err := write(i+2, backupRow(m)); err != nil {
			return err
		}
	}
	return f.Write(w)
}
