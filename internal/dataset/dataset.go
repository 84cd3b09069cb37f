// Package dataset owns the loaded results workbook and hands immutable
// snapshots of it to queries.
package dataset

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/campus-tools/results-viewer/internal/results"
	"github.com/campus-tools/results-viewer/internal/workbook"
)

// LoadError wraps a failure to read or parse the backing workbook.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return "dataset: load " + e.Path + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err (or any error in its chain) is a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// Dataset is an immutable snapshot of a results workbook.
type Dataset struct {
	SheetNames []string
	Semester   []workbook.Row
	GPA        results.GPARecords
	LoadedAt   time.Time
}

// Source provides the current dataset snapshot.
type Source interface {
	Dataset(ctx context.Context) (*Dataset, error)
}

// Options locate the workbook and describe its layout.
type Options struct {
	Path               string
	SemesterSheetCount int
	IdentityField      string
	AuthoritativeField string
}

// OptionsFromPolicy builds Options for path using the policy's sheet layout.
func OptionsFromPolicy(path string, p results.Policy) Options {
	p = p.WithDefaults()
	return Options{
		Path:               path,
		SemesterSheetCount: p.SemesterSheetCount,
		IdentityField:      p.IdentityField,
		AuthoritativeField: p.AuthoritativeField,
	}
}

// Load reads the workbook described by opts.
func Load(opts Options) (*Dataset, error) {
	start := time.Now()

	sheets, err := workbook.Load(opts.Path, opts.SemesterSheetCount)
	if err != nil {
		return nil, &LoadError{Path: opts.Path, Err: err}
	}
	return fromSheets(sheets, opts, start), nil
}

// FromRows builds a dataset from rows already in memory.
func FromRows(semester []workbook.Row, gpa results.GPARecords) *Dataset {
	if gpa == nil {
		gpa = results.GPARecords{}
	}
	return &Dataset{Semester: semester, GPA: gpa, LoadedAt: time.Now()}
}

func fromSheets(sheets *workbook.Sheets, opts Options, start time.Time) *Dataset {
	ds := &Dataset{
		SheetNames: sheets.Names,
		Semester:   sheets.Semester,
		GPA:        results.IndexGPARecords(sheets.Summary, opts.IdentityField, opts.AuthoritativeField),
		LoadedAt:   time.Now(),
	}
	zap.L().Debug("dataset loaded",
		zap.String("path", opts.Path),
		zap.Int("sheets", len(ds.SheetNames)),
		zap.Int("semester_rows", len(ds.Semester)),
		zap.Int("gpa_records", len(ds.GPA)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ds
}
