package results

import (
	"bytes"
	"encoding/json"
)

// Unavailable marks a GPA figure that could not be derived.
const Unavailable = "N/A"

// Grade is one course/grade pair.
type Grade struct {
	Subject string
	Grade   string
}

// Course holds the course grades read from one source row, in column order.
type Course []Grade

// MarshalJSON encodes the course as an object whose keys keep column order.
func (c Course) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, g.Subject); err != nil {
			return nil, err
		}
		v, err := json.Marshal(g.Grade)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SemesterBucket aggregates one semester's courses and GPA.
type SemesterBucket struct {
	Courses     []Course `json:"courses"`
	SemesterGPA float64  `json:"semesterGPA"`
}

// Semester is a named bucket.
type Semester struct {
	Name string
	SemesterBucket
}

// Semesters keeps buckets in order of first appearance.
type Semesters []Semester

// Get returns the bucket for name.
func (s Semesters) Get(name string) (*SemesterBucket, bool) {
	for i := range s {
		if s[i].Name == name {
			return &s[i].SemesterBucket, true
		}
	}
	return nil, false
}

// Names returns semester names in order.
func (s Semesters) Names() []string {
	names := make([]string, len(s))
	for i := range s {
		names[i] = s[i].Name
	}
	return names
}

// MarshalJSON encodes the semesters as an object keyed by semester name.
func (s Semesters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sem := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, sem.Name); err != nil {
			return nil, err
		}
		v, err := json.Marshal(sem.SemesterBucket)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Payload is the aggregated result for one registration number.
type Payload struct {
	RegNo           string    `json:"regNo" yaml:"regNo"`
	Name            string    `json:"name" yaml:"name"`
	SemesterResults Semesters `json:"semesterResults" yaml:"semesterResults"`
	TotalSemesters  int       `json:"totalSemesters" yaml:"totalSemesters"`

	// OverallGPA is the headline figure: the authoritative value when the
	// policy prefers it and a record exists, otherwise the computed mean.
	OverallGPA string `json:"overallGpa" yaml:"overallGpa"`
	OCGPA      string `json:"ocGPA" yaml:"ocGPA"`

	ComputedOverallGPA      string  `json:"computedOverallGpa" yaml:"computedOverallGpa"`
	AuthoritativeOverallGPA *string `json:"authoritativeOverallGpa" yaml:"authoritativeOverallGpa"`
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}
