package main

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/campus-tools/results-viewer/internal/results"
)

// writeResultsWorkbook writes a workbook with two semester sheets and a
// summary sheet. GPA and OCGPA columns are numeric cells displayed with one
// decimal, as exported result sheets usually carry them.
func writeResultsWorkbook(t *testing.T) string {
	t.Helper()
	sheets := []struct {
		name string
		rows [][]string
	}{
		{"Y1S1", [][]string{
			{"Reg.No", "Name", "Math", "GPA"},
			{"2020/ICT/0001", "Alice", "A", "3.5"},
			{"2020/ICT/0002", "Bob", "C", "2.14"},
		}},
		{"Y1S2", [][]string{
			{"Reg.No", "Name", "Physics", "GPA"},
			{"2020/ICT/0001", "Alice", "B", "3.8"},
		}},
		{"Overall", [][]string{
			{"Reg.No", "OCGPA"},
			{"2020/ICT/0001", "3.70"},
		}},
	}

	f := xlsx.NewFile()
	for _, s := range sheets {
		sheet, err := f.AddSheet(s.name)
		require.NoError(t, err)
		header := s.rows[0]
		for _, r := range s.rows {
			row := sheet.AddRow()
			for j, c := range r {
				cell := row.AddCell()
				if v, err := strconv.ParseFloat(c, 64); err == nil && (header[j] == "GPA" || header[j] == "OCGPA") {
					cell.SetFloatWithFormat(v, "0.0")
					continue
				}
				cell.SetString(c)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

// testPolicy is the default preset reading the fixture's two semester sheets.
func testPolicy(t *testing.T) results.Policy {
	t.Helper()
	p, err := results.Preset("default")
	require.NoError(t, err)
	p.SemesterSheetCount = 2
	return p
}
