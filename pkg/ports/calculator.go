package ports

import (
	"context"

	"github.com/mkuleshov/pgdbot/pkg/domain"
)

// Calculator is the external calculation engine capability. Both calls
// are black boxes that may fail; failures surface as a single generic
// error kind (domain.ErrCalculation) to the controller.
type Calculator interface {
	// ComputeSingle produces summary tables and sections for one person.
	ComputeSingle(ctx context.Context, p domain.Person) (*domain.Result, error)

	// ComputePair produces the paired analysis for two persons.
	// Gender is not part of the paired flow.
	ComputePair(ctx context.Context, a, b domain.Person) (*domain.Result, error)
}
