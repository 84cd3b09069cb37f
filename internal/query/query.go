// Package query turns registration-number lookups into aggregated results.
package query

import (
	"context"
	"regexp"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/campus-tools/results-viewer/internal/dataset"
	"github.com/campus-tools/results-viewer/internal/results"
)

// ErrInvalidFormat is returned when a registration number is not shaped like
// 2020/ICT/1234.
var ErrInvalidFormat = eris.New("invalid registration number format")

var regNoPattern = regexp.MustCompile(`^\d{4}/[A-Za-z]+/\d{4}$`)

// RegNo joins the path segments of a registration number. No normalization
// is applied.
func RegNo(year, department, number string) string {
	return year + "/" + department + "/" + number
}

// ValidRegNo reports whether regNo matches year/department/serial.
func ValidRegNo(regNo string) bool {
	return regNoPattern.MatchString(regNo)
}

// Service answers result queries against a dataset source.
type Service struct {
	source dataset.Source
	policy results.Policy
}

// NewService creates a Service. The policy is expected to be validated.
func NewService(source dataset.Source, policy results.Policy) *Service {
	return &Service{source: source, policy: policy.WithDefaults()}
}

// Policy returns the policy the service aggregates with.
func (s *Service) Policy() results.Policy {
	return s.policy
}

// Lookup builds the registration number from its parts and aggregates it.
func (s *Service) Lookup(ctx context.Context, year, department, number string) (*results.Payload, error) {
	return s.LookupRegNo(ctx, RegNo(year, department, number))
}

// LookupRegNo aggregates results for a full registration number. It returns
// ErrInvalidFormat before touching the dataset when validation is enabled, and
// results.ErrNotFound when no row matches.
func (s *Service) LookupRegNo(ctx context.Context, regNo string) (*results.Payload, error) {
	if s.policy.ValidateFormat && !ValidRegNo(regNo) {
		return nil, ErrInvalidFormat
	}

	ds, err := s.source.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	out, err := results.Aggregate(ds.Semester, ds.GPA, regNo, s.policy)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("results aggregated",
		zap.String("reg_no", regNo),
		zap.Int("semesters", len(out.SemesterResults)),
		zap.String("overall_gpa", out.OverallGPA),
	)
	return out, nil
}
