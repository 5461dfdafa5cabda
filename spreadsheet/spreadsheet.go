// Package spreadsheet moves students in and out of XLSX workbooks.
package spreadsheet

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"school-backend/errs"
	"school-backend/model"
)

const SheetName = "Students"

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Columns is the header row of an export. Imports look columns up by these
// titles, ignoring case and order; Roll Number is ignored on import.
var Columns = []string{
	"Roll Number",
	"Name",
	"Grade",
	"Father Name",
	"Mother Name",
	"Parent Email",
	"Parent Phone",
	"Address",
	"Admission Date",
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WriteStudents writes one header row and one row per student.
func WriteStudents(w io.Writer, students []model.Student) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return errors.Wrap(err, "rename sheet")
	}

	header := make([]interface{}, len(Columns))
	for i, title := range Columns {
		header[i] = title
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "write header")
	}

	for i, s := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "cell name")
		}
		row := []interface{}{
			s.RollNumber,
			s.Name,
			s.Grade,
			deref(s.FatherName),
			deref(s.MotherName),
			s.ParentEmail,
			s.ParentPhone,
			s.Address,
			s.AdmissionDate,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return errors.Wrapf(err, "write row %d", i+2)
		}
	}

	return errors.Wrap(f.Write(w), "write workbook")
}

// ReadStudents parses the first sheet of an XLSX workbook. The first row
// must be a header. Blank rows are dropped; everything else is returned
// unvalidated, so a row missing a required column still comes back.
func ReadStudents(r io.Reader) ([]model.NewStudent, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errs.Invalidf("not a spreadsheet: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errs.Invalid("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %s", sheet)
	}
	if len(rows) == 0 {
		return []model.NewStudent{}, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, title := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(title))] = i
	}
	cell := func(row []string, title string) string {
		i, ok := index[strings.ToLower(title)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	optional := func(row []string, title string) *string {
		v := cell(row, title)
		if v == "" {
			return nil
		}
		return &v
	}

	students := make([]model.NewStudent, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		students = append(students, model.NewStudent{
			Name:          cell(row, "Name"),
			Grade:         cell(row, "Grade"),
			FatherName:    optional(row, "Father Name"),
			MotherName:    optional(row, "Mother Name"),
			ParentEmail:   cell(row, "Parent Email"),
			ParentPhone:   cell(row, "Parent Phone"),
			Address:       cell(row, "Address"),
			AdmissionDate: cell(row, "Admission Date"),
		})
	}
	return students, nil
}
