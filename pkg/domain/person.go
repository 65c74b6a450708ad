package domain

import (
	"regexp"
	"time"
)

// DateLayout is the only accepted birth date pattern: two-digit day,
// two-digit month, four-digit year, dot separated.
const DateLayout = "02.01.2006"

// datePattern enforces strict zero-padded input. time.Parse alone would
// also accept "9.10.1988", which must be rejected so that parse+format
// always round-trips to the identical string.
var datePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

// Gender is one of exactly two enumerated tokens.
type Gender string

const (
	GenderFemale Gender = "F"
	GenderMale   Gender = "M"
)

// Label returns the human-readable form for prompts and summaries.
func (g Gender) Label() string {
	if g == GenderFemale {
		return "Female"
	}
	return "Male"
}

// ParseGender validates a gender token. Anything outside the two allowed
// values is a ValidationError; the caller must leave state untouched.
func ParseGender(token string) (Gender, error) {
	switch Gender(token) {
	case GenderFemale:
		return GenderFemale, nil
	case GenderMale:
		return GenderMale, nil
	}
	return "", &ValidationError{Field: "gender", Input: token, Reason: "must be F or M"}
}

// ParseBirthDate parses a strict DD.MM.YYYY date. Impossible calendar
// dates (31.04, 29.02 outside leap years) are rejected.
func ParseBirthDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, &ValidationError{Field: "birth_date", Input: s, Reason: "must match DD.MM.YYYY"}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "birth_date", Input: s, Reason: "not a real calendar date"}
	}
	return t, nil
}

// FormatBirthDate renders a date back into the canonical DD.MM.YYYY form.
func FormatBirthDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Person holds one subject's validated inputs.
type Person struct {
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birth_date"`
	Gender    Gender    `json:"gender,omitempty"`
}
