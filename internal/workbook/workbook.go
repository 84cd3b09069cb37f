// Package workbook reads result workbooks and converts sheets into header-keyed rows.
package workbook

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/unicode/norm"
)

// SemesterField is added to every semester row and holds its sheet name.
const SemesterField = "Semester"

// emptyHeader names columns whose header cell is blank.
const emptyHeader = "__EMPTY"

// Workbook is an opened XLSX file.
type Workbook struct {
	file *xlsx.File
}

// Open reads the XLSX file at path.
func Open(path string) (*Workbook, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "workbook: open file")
	}
	return &Workbook{file: f}, nil
}

// OpenBinary parses an in-memory XLSX document.
func OpenBinary(data []byte) (*Workbook, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "workbook: open binary")
	}
	return &Workbook{file: f}, nil
}

// SheetNames returns sheet names in file order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.file.Sheets))
	for i, s := range w.file.Sheets {
		names[i] = s.Name
	}
	return names
}

// Rows converts the sheet at index into header-keyed rows.
//
// The first non-blank row is the header. Repeated header names get a numeric
// suffix ("Name", "Name_1", "Name_2"); blank header cells become "__EMPTY".
// Empty cells are left out of a row and rows with no values are skipped; a
// whitespace-only cell counts as a value. Numeric cells read as their stored
// number, not their formatted text.
func (w *Workbook) Rows(index int) ([]Row, error) {
	if index < 0 || index >= len(w.file.Sheets) {
		return nil, eris.Errorf("workbook: sheet index %d out of range (file has %d sheets)", index, len(w.file.Sheets))
	}
	sheet := w.file.Sheets[index]

	var (
		header []string
		rows   []Row
	)
	for _, xr := range sheet.Rows {
		cells := rowToStrings(xr)
		if isBlank(cells) {
			continue
		}

		if header == nil {
			header = headerNames(cells)
			continue
		}

		var row Row
		for j, v := range cells {
			if v == "" || j >= len(header) {
				continue
			}
			row.Fields = append(row.Fields, Field{Name: header[j], Value: v})
		}
		if row.Len() > 0 {
			rows = append(rows, row)
		}
	}

	return rows, nil
}

func headerNames(cells []string) []string {
	names := make([]string, len(cells))
	used := make(map[string]bool, len(cells))
	suffix := make(map[string]int)
	for i, c := range cells {
		base := norm.NFC.String(c)
		if base == "" {
			base = emptyHeader
		}
		name := base
		for used[name] {
			suffix[base]++
			name = base + "_" + strconv.Itoa(suffix[base])
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		cells[j] = cellValue(cell)
	}
	return cells
}

// cellValue returns the stored value of numeric cells rather than their
// display text, so a GPA of 3.456 formatted as "0.0" still reads as 3.456.
// Other cells use their string form.
func cellValue(cell *xlsx.Cell) string {
	if cell.Type() == xlsx.CellTypeNumeric {
		raw := strings.TrimSpace(cell.Value)
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return raw
	}
	return cell.String()
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
