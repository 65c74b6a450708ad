package domain_test

import (
	"testing"

	"github.com/mkuleshov/pgdbot/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseAction(t *testing.T) {
	cases := []struct {
		input string
		want  domain.Action
	}{
		{"back", domain.Action{Kind: domain.ActionBack}},
		{"export", domain.Action{Kind: domain.ActionExport}},
		{"finish", domain.Action{Kind: domain.ActionFinish}},
		{"select:0", domain.Action{Kind: domain.ActionSelect, Index: 0}},
		{"select:42", domain.Action{Kind: domain.ActionSelect, Index: 42}},
		{"gender:F", domain.Action{Kind: domain.ActionGender, Gender: domain.GenderFemale}},
		{"gender:M", domain.Action{Kind: domain.ActionGender, Gender: domain.GenderMale}},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := domain.ParseAction(tc.input)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)

			// Encode must be the exact inverse.
			assert.Equal(t, tc.input, got.Encode())
		})
	}
}

func TestParseAction_Rejects(t *testing.T) {
	bad := []string{
		"", "BACK", "select:", "select:-1", "select:abc", "select:1.5",
		"gender:", "gender:x", "gender:FF", "unknown", "select",
	}

	for _, input := range bad {
		t.Run(input, func(t *testing.T) {
			_, err := domain.ParseAction(input)
			if err == nil {
				t.Fatalf("expected payload %q to be rejected", input)
			}
			_, ok := domain.AsValidation(err)
			assert.True(t, ok)
		})
	}
}

func TestSessionSectionAt(t *testing.T) {
	s := domain.NewSession(domain.ModeSingle, testTime())
	s.Sections = []domain.Section{{Title: "a"}, {Title: "b"}}

	sec, ok := s.SectionAt(1)
	assert.True(t, ok)
	assert.Equal(t, "b", sec.Title)

	_, ok = s.SectionAt(2)
	assert.False(t, ok)
	_, ok = s.SectionAt(-1)
	assert.False(t, ok)
}

func TestSessionClone_Isolation(t *testing.T) {
	s := domain.NewSession(domain.ModeSingle, testTime())
	s.Summary = []domain.SummaryTable{{Title: "Tasks", Rows: []domain.SummaryRow{{Label: "k", Value: "v"}}}}
	s.Sections = []domain.Section{{Title: "a", Body: "body"}}

	c := s.Clone()
	c.Summary[0].Rows[0].Value = "changed"
	c.Sections[0].Title = "changed"

	assert.Equal(t, "v", s.Summary[0].Rows[0].Value)
	assert.Equal(t, "a", s.Sections[0].Title)
}
