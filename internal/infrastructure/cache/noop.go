package cache

import (
	"context"

	"github.com/bibbank/loanintake/internal/domain/model"
)

// Noop never stores anything. It is used when no Redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, model.LoanTerms, int) (model.EMICalculation, bool, error) {
	return model.EMICalculation{}, false, nil
}

func (Noop) Set(context.Context, model.EMICalculation) error { return nil }
