package engine

import (
	"context"
	"fmt"

	"github.com/mkuleshov/pgdbot/pkg/domain"
)

// Mock is a deterministic in-process Calculator for local development
// and tests. The output is a pure function of the input persons, so a
// repeated run over the same data produces identical sections.
type Mock struct{}

// NewMock creates the mock engine.
func NewMock() *Mock {
	return &Mock{}
}

// lifeNumber reduces a birth date to a single digit, the way simple
// numerology schemes sum date digits.
func lifeNumber(p domain.Person) int {
	sum := 0
	for _, r := range domain.FormatBirthDate(p.BirthDate) {
		if r >= '0' && r <= '9' {
			sum += int(r - '0')
		}
	}
	for sum > 9 {
		next := 0
		for sum > 0 {
			next += sum % 10
			sum /= 10
		}
		sum = next
	}
	return sum
}

var mockTraits = [10]string{
	"adaptable", "driven", "diplomatic", "expressive", "methodical",
	"restless", "caring", "analytical", "ambitious", "idealistic",
}

func (m *Mock) ComputeSingle(_ context.Context, p domain.Person) (*domain.Result, error) {
	n := lifeNumber(p)
	trait := mockTraits[n]

	return &domain.Result{
		Tables: []domain.SummaryTable{
			{Title: "Key numbers", Rows: []domain.SummaryRow{
				{Label: "Life number", Value: fmt.Sprintf("%d", n)},
				{Label: "Gender", Value: p.Gender.Label()},
			}},
		},
		Sections: []domain.Section{
			{Title: "Character", Body: fmt.Sprintf("%s has a **%s** nature.\n\nThe life number %d shapes how decisions are made.", p.Name, trait, n)},
			{Title: "Career", Body: fmt.Sprintf("Work that rewards a %s temperament fits best.", trait)},
			{Title: "Relationships", Body: fmt.Sprintf("In close relationships %s tends toward the **%s** side.", p.Name, trait)},
			{Title: "Health", Body: "Balance periods of effort with genuine rest."},
			{Title: "Growth", Body: fmt.Sprintf("The path of number %d asks for patience with oneself.", n)},
		},
	}, nil
}

func (m *Mock) ComputePair(_ context.Context, a, b domain.Person) (*domain.Result, error) {
	na, nb := lifeNumber(a), lifeNumber(b)
	blend := (na + nb) % 10

	return &domain.Result{
		Tables: []domain.SummaryTable{
			{Title: "Pair numbers", Rows: []domain.SummaryRow{
				{Label: a.Name, Value: fmt.Sprintf("%d", na)},
				{Label: b.Name, Value: fmt.Sprintf("%d", nb)},
				{Label: "Blend", Value: fmt.Sprintf("%d", blend)},
			}},
		},
		Sections: []domain.Section{
			{Title: "Compatibility", Body: fmt.Sprintf("%s and %s form a **%s** pairing.", a.Name, b.Name, mockTraits[blend])},
			{Title: "Communication", Body: fmt.Sprintf("Numbers %d and %d listen differently; name the difference early.", na, nb)},
			{Title: "Conflict", Body: "Disagreements resolve faster when each side states what it needs, not what the other did."},
			{Title: "Long term", Body: fmt.Sprintf("Over time the **%s** quality of the blend becomes the anchor.", mockTraits[blend])},
		},
	}, nil
}
