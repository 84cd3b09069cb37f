package results

import "github.com/rotisserie/eris"

// Default field names used by result workbooks.
const (
	DefaultIdentityField      = "Reg.No"
	DefaultAuthoritativeField = "OCGPA"
)

// Policy controls how semester rows are read and how GPA figures are derived.
type Policy struct {
	SemesterSheetCount         int    `yaml:"semester_sheet_count" mapstructure:"semester_sheet_count"`
	GPAPrecision               int    `yaml:"gpa_precision" mapstructure:"gpa_precision"`
	ExcludeZeroGPA             bool   `yaml:"exclude_zero_gpa" mapstructure:"exclude_zero_gpa"`
	PreferAuthoritativeOverall bool   `yaml:"prefer_authoritative_overall" mapstructure:"prefer_authoritative_overall"`
	ValidateFormat             bool   `yaml:"validate_format" mapstructure:"validate_format"`
	IdentityField              string `yaml:"identity_field" mapstructure:"identity_field"`
	AuthoritativeField         string `yaml:"authoritative_field" mapstructure:"authoritative_field"`
}

// Presets reproduce the historical deployments of the results service.
var Presets = map[string]Policy{
	// Four semester sheets, two decimals, every numeric GPA counted, format validated.
	"default": {
		SemesterSheetCount: 4,
		GPAPrecision:       2,
		ValidateFormat:     true,
	},
	// Five semester sheets and no registration number validation.
	"legacy": {
		SemesterSheetCount: 5,
		GPAPrecision:       2,
	},
	// Six semester sheets, three decimals, zero GPAs ignored, OCGPA is the headline.
	"strict": {
		SemesterSheetCount:         6,
		GPAPrecision:               3,
		ExcludeZeroGPA:             true,
		PreferAuthoritativeOverall: true,
		ValidateFormat:             true,
	},
}

// Preset returns the named preset with default field names filled in.
func Preset(name string) (Policy, error) {
	p, ok := Presets[name]
	if !ok {
		return Policy{}, eris.Errorf("results: unknown policy preset %q", name)
	}
	return p.WithDefaults(), nil
}

// WithDefaults fills empty field names.
func (p Policy) WithDefaults() Policy {
	if p.IdentityField == "" {
		p.IdentityField = DefaultIdentityField
	}
	if p.AuthoritativeField == "" {
		p.AuthoritativeField = DefaultAuthoritativeField
	}
	return p
}

// Validate reports configuration values that cannot produce a result.
func (p Policy) Validate() error {
	if p.SemesterSheetCount < 1 {
		return eris.Errorf("results: semester_sheet_count must be at least 1, got %d", p.SemesterSheetCount)
	}
	if p.GPAPrecision < 0 || p.GPAPrecision > 6 {
		return eris.Errorf("results: gpa_precision must be between 0 and 6, got %d", p.GPAPrecision)
	}
	if p.IdentityField == "" {
		return eris.New("results: identity_field is required")
	}
	if p.AuthoritativeField == "" {
		return eris.New("results: authoritative_field is required")
	}
	return nil
}
