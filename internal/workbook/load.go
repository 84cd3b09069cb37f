package workbook

import "github.com/rotisserie/eris"

// Sheets is the row content of a results workbook split by role.
type Sheets struct {
	Names    []string // all sheet names, file order
	Semester []Row    // rows from the semester sheets, tagged with SemesterField
	Summary  []Row    // rows from the summary sheet; nil when the workbook has none
}

// SheetRole describes what a sheet at a given index is used for.
type SheetRole string

const (
	RoleSemester SheetRole = "semester"
	RoleSummary  SheetRole = "summary"
	RoleIgnored  SheetRole = "ignored"
)

// Role returns the role of the sheet at index when the first semesterSheets
// sheets hold semester results and the next one holds the summary.
func Role(index, semesterSheets int) SheetRole {
	switch {
	case index < semesterSheets:
		return RoleSemester
	case index == semesterSheets:
		return RoleSummary
	default:
		return RoleIgnored
	}
}

// Load opens path and splits it into semester and summary rows.
func Load(path string, semesterSheets int) (*Sheets, error) {
	w, err := Open(path)
	if err != nil {
		return nil, err
	}
	return w.Split(semesterSheets)
}

// Split tags the first semesterSheets sheets with their sheet name and reads
// the sheet immediately after them as the summary sheet, if present.
func (w *Workbook) Split(semesterSheets int) (*Sheets, error) {
	if semesterSheets < 1 {
		return nil, eris.Errorf("workbook: semester sheet count must be positive, got %d", semesterSheets)
	}

	names := w.SheetNames()
	out := &Sheets{Names: names}

	for i := 0; i < min(semesterSheets, len(names)); i++ {
		rows, err := w.Rows(i)
		if err != nil {
			return nil, err
		}
		for j := range rows {
			rows[j].Set(SemesterField, names[i])
		}
		out.Semester = append(out.Semester, rows...)
	}

	if len(names) > semesterSheets {
		rows, err := w.Rows(semesterSheets)
		if err != nil {
			return nil, eris.Wrapf(err, "workbook: read summary sheet %q", names[semesterSheets])
		}
		out.Summary = rows
	}

	return out, nil
}
