package domain_test

import (
	"testing"

	"github.com/mkuleshov/pgdbot/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseBirthDate_RoundTrip(t *testing.T) {
	valid := []string{
		"09.10.1988",
		"01.01.2000",
		"29.02.2024", // leap day
		"31.12.1970",
		"30.04.1999",
	}

	for _, in := range valid {
		t.Run(in, func(t *testing.T) {
			d, err := domain.ParseBirthDate(in)
			if err != nil {
				t.Fatalf("expected %q to parse, got %v", in, err)
			}
			assert.Equal(t, in, domain.FormatBirthDate(d))
		})
	}
}

func TestParseBirthDate_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"wrong separator", "09-10-1988"},
		{"not padded", "9.10.1988"},
		{"two digit year", "09.10.88"},
		{"month out of range", "31.13.1988"},
		{"day out of range", "31.04.1999"},
		{"non leap feb 29", "29.02.2023"},
		{"garbage", "tomorrow"},
		{"empty", ""},
		{"trailing text", "09.10.1988 "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.ParseBirthDate(tc.input)
			if err == nil {
				t.Fatalf("expected %q to be rejected", tc.input)
			}
			_, ok := domain.AsValidation(err)
			assert.True(t, ok, "rejection must be a ValidationError")
		})
	}
}

func TestParseGender(t *testing.T) {
	g, err := domain.ParseGender("F")
	assert.NoError(t, err)
	assert.Equal(t, domain.GenderFemale, g)

	g, err = domain.ParseGender("M")
	assert.NoError(t, err)
	assert.Equal(t, domain.GenderMale, g)

	for _, bad := range []string{"f", "m", "female", "X", ""} {
		_, err := domain.ParseGender(bad)
		if err == nil {
			t.Errorf("expected gender token %q to be rejected", bad)
		}
	}
}
