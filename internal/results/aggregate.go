// Package results groups per-student semester rows and derives GPA figures.
package results

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/campus-tools/results-viewer/internal/workbook"
)

// ErrNotFound is returned when no semester row carries the registration number.
var ErrNotFound = eris.New("no results found for the given registration number")

// GPAField holds the semester GPA on each semester row.
const GPAField = "GPA"

// nonCourseFields are the row fields that never describe a course grade.
var nonCourseFields = map[string]struct{}{
	"Reg.No":               {},
	"Name":                 {},
	"Name_1":               {},
	GPAField:               {},
	workbook.SemesterField: {},
	"Reg. No":              {},
	"Reg.No_1":             {},
}

// IsCourseField reports whether a row field holds a course grade.
func IsCourseField(name string) bool {
	_, excluded := nonCourseFields[name]
	return !excluded
}

// GPARecords maps a registration number to its authoritative overall GPA.
type GPARecords map[string]string

// IndexGPARecords builds GPARecords from summary-sheet rows. The first row for
// a registration number wins; rows without an identity value are skipped.
func IndexGPARecords(rows []workbook.Row, identityField, authoritativeField string) GPARecords {
	recs := make(GPARecords, len(rows))
	for _, r := range rows {
		id, ok := r.Get(identityField)
		if !ok || id == "" {
			continue
		}
		if _, dup := recs[id]; dup {
			continue
		}
		v, ok := r.Get(authoritativeField)
		if !ok {
			continue
		}
		recs[id] = v
	}
	return recs
}

// Aggregate builds the result payload for regNo from semester rows.
func Aggregate(rows []workbook.Row, gpa GPARecords, regNo string, p Policy) (*Payload, error) {
	p = p.WithDefaults()

	var matched []workbook.Row
	for _, r := range rows {
		if v, ok := r.Get(p.IdentityField); ok && v == regNo {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return nil, ErrNotFound
	}

	name := matched[0].Value("Name")
	if name == "" {
		name = matched[0].Value("Name_1")
	}

	var (
		semesters Semesters
		total     float64
		accepted  int
	)
	for _, r := range matched {
		key := r.Value(workbook.SemesterField)
		bucket, ok := semesters.Get(key)
		if !ok {
			semesters = append(semesters, Semester{
				Name:           key,
				SemesterBucket: SemesterBucket{Courses: []Course{}},
			})
			bucket = &semesters[len(semesters)-1].SemesterBucket
		}

		if course := courseOf(r); len(course) > 0 {
			bucket.Courses = append(bucket.Courses, course)
		}

		if g, ok := acceptGPA(r.Value(GPAField), p.ExcludeZeroGPA); ok {
			bucket.SemesterGPA = g
			total += g
			accepted++
		}
	}

	out := &Payload{
		RegNo:              regNo,
		Name:               name,
		SemesterResults:    semesters,
		TotalSemesters:     accepted,
		ComputedOverallGPA: Unavailable,
		OCGPA:              Unavailable,
	}
	if accepted > 0 {
		out.ComputedOverallGPA = FormatGPA(total/float64(accepted), p.GPAPrecision)
	}
	out.OverallGPA = out.ComputedOverallGPA

	if raw, ok := gpa[regNo]; ok {
		auth := roundAuthoritative(raw, p.GPAPrecision)
		out.OCGPA = auth
		out.AuthoritativeOverallGPA = &auth
		if p.PreferAuthoritativeOverall {
			out.OverallGPA = auth
		}
	}

	return out, nil
}

// FormatGPA rounds v to precision decimal places. The exact binary value of v
// is rounded and halves go away from zero, so 3.625 gives "3.63" while 1.005
// (stored just below 1.005) gives "1.00".
func FormatGPA(v float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	neg := v < 0
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil))
	scaled := new(big.Float).SetPrec(256).SetFloat64(math.Abs(v))
	scaled.Mul(scaled, scale)

	n, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(256).Sub(scaled, new(big.Float).SetInt(n))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		n.Add(n, big.NewInt(1))
	}

	digits := n.String()
	if precision > 0 {
		if pad := precision + 1 - len(digits); pad > 0 {
			digits = strings.Repeat("0", pad) + digits
		}
		digits = digits[:len(digits)-precision] + "." + digits[len(digits)-precision:]
	}
	if neg && n.Sign() != 0 {
		digits = "-" + digits
	}
	return digits
}

func courseOf(r workbook.Row) Course {
	var c Course
	for _, f := range r.Fields {
		if IsCourseField(f.Name) {
			c = append(c, Grade{Subject: f.Name, Grade: f.Value})
		}
	}
	return c
}

// acceptGPA parses a semester GPA cell. Only finite numbers are accepted, and
// zero or negative values too when excludeZero is set.
func acceptGPA(raw string, excludeZero bool) (float64, bool) {
	g, ok := parseNumber(raw)
	if !ok {
		return 0, false
	}
	if excludeZero && g <= 0 {
		return 0, false
	}
	return g, true
}

// roundAuthoritative formats a numeric OCGPA to precision and passes any
// other value through untouched.
func roundAuthoritative(raw string, precision int) string {
	g, ok := parseNumber(raw)
	if !ok {
		return strings.TrimSpace(raw)
	}
	return FormatGPA(g, precision)
}

// parseNumber accepts a leading decimal number the way spreadsheet exports
// usually carry it ("3.5", " 3.50 ", "3.5*"); anything without a numeric
// prefix is rejected.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	end := numericPrefix(s)
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}
