// Package export renders aggregated results as downloadable documents.
package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/campus-tools/results-viewer/internal/results"
)

// SheetName is the name of the single sheet in an exported workbook.
const SheetName = "Results"

// ContentType is the MIME type of exported workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename returns a download name for the payload's registration number.
func Filename(regNo string) string {
	b := []byte(regNo)
	for i, c := range b {
		if c == '/' || c == '\\' || c == ' ' {
			b[i] = '_'
		}
	}
	return "results_" + string(b) + ".xlsx"
}

// Build lays the payload out as a single-sheet workbook: identity lines,
// then one block per semester, then the overall GPA lines.
func Build(p *results.Payload) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	bold := xlsx.NewStyle()
	bold.Font.Bold = true
	bold.ApplyFont = true

	labelled := func(label, value string) {
		row := sheet.AddRow()
		c := row.AddCell()
		c.SetString(label)
		c.SetStyle(bold)
		row.AddCell().SetString(value)
	}

	labelled("Registration Number", p.RegNo)
	labelled("Name", p.Name)

	for _, sem := range p.SemesterResults {
		sheet.AddRow()
		title := sheet.AddRow().AddCell()
		title.SetString("Results for " + sem.Name)
		title.SetStyle(bold)

		for _, course := range sem.Courses {
			head := sheet.AddRow()
			for _, h := range []string{"Course", "Grade"} {
				c := head.AddCell()
				c.SetString(h)
				c.SetStyle(bold)
			}
			for _, g := range course {
				row := sheet.AddRow()
				row.AddCell().SetString(g.Subject)
				row.AddCell().SetString(g.Grade)
			}
		}

		row := sheet.AddRow()
		c := row.AddCell()
		c.SetString("Semester GPA")
		c.SetStyle(bold)
		row.AddCell().SetFloat(sem.SemesterGPA)
	}

	sheet.AddRow()
	labelled("Overall GPA", p.OverallGPA)
	labelled("Computed GPA", p.ComputedOverallGPA)
	labelled("OCGPA", p.OCGPA)

	return f, nil
}

// WriteXLSX writes the payload as an XLSX document to w.
func WriteXLSX(w io.Writer, p *results.Payload) error {
	f, err := Build(p)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

// SaveXLSX writes the payload as an XLSX document to path.
func SaveXLSX(path string, p *results.Payload) error {
	f, err := Build(p)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
