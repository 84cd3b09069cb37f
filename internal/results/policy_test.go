package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreset(t *testing.T) {
	p, err := Preset("strict")
	require.NoError(t, err)
	assert.Equal(t, 6, p.SemesterSheetCount)
	assert.Equal(t, 3, p.GPAPrecision)
	assert.True(t, p.ExcludeZeroGPA)
	assert.True(t, p.PreferAuthoritativeOverall)
	assert.Equal(t, DefaultIdentityField, p.IdentityField)
	assert.Equal(t, DefaultAuthoritativeField, p.AuthoritativeField)
	assert.NoError(t, p.Validate())

	legacy, err := Preset("legacy")
	require.NoError(t, err)
	assert.Equal(t, 5, legacy.SemesterSheetCount)
	assert.False(t, legacy.ValidateFormat)

	_, err = Preset("unknown")
	assert.Error(t, err)
}

func TestPolicyValidate(t *testing.T) {
	base := Policy{SemesterSheetCount: 4, GPAPrecision: 2}.WithDefaults()
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Policy)
		want   string
	}{
		{"no sheets", func(p *Policy) { p.SemesterSheetCount = 0 }, "semester_sheet_count"},
		{"negative precision", func(p *Policy) { p.GPAPrecision = -1 }, "gpa_precision"},
		{"huge precision", func(p *Policy) { p.GPAPrecision = 9 }, "gpa_precision"},
		{"no identity", func(p *Policy) { p.IdentityField = "" }, "identity_field"},
		{"no authoritative", func(p *Policy) { p.AuthoritativeField = "" }, "authoritative_field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
