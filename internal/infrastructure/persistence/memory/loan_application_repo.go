// Package memory is an in-process LoanApplicationRepository for local runs
// and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/port"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
)

// LoanApplicationRepo keeps applications in a map guarded by a RWMutex.
type LoanApplicationRepo struct {
	mu   sync.RWMutex
	apps map[string]model.LoanApplication
}

func NewLoanApplicationRepo() *LoanApplicationRepo {
	return &LoanApplicationRepo{apps: make(map[string]model.LoanApplication)}
}

func (r *LoanApplicationRepo) Save(ctx context.Context, app model.LoanApplication) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save loan application: %w: %w", model.ErrStoreUnavailable, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[app.ID()] = app.ClearEvents()
	return nil
}

func (r *LoanApplicationRepo) FindByID(_ context.Context, id string) (model.LoanApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[id]
	if !ok {
		return model.LoanApplication{}, fmt.Errorf("find loan application %s: %w", id, model.ErrApplicationNotFound)
	}
	return app, nil
}

func (r *LoanApplicationRepo) List(_ context.Context, filter port.ListFilter) ([]model.LoanApplication, error) {
	r.mu.RLock()
	out := make([]model.LoanApplication, 0, len(r.apps))
	for _, app := range r.apps {
		if filter.Window.IsZero() || filter.Window.Contains(app.CreatedAt()) {
			out = append(out, app)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			if filter.Order == port.NewestFirst {
				return a.CreatedAt().After(b.CreatedAt())
			}
			return a.CreatedAt().Before(b.CreatedAt())
		}
		if filter.Order == port.NewestFirst {
			return a.ID() > b.ID()
		}
		return a.ID() < b.ID()
	})
	return out, nil
}

func (r *LoanApplicationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[id]; !ok {
		return fmt.Errorf("delete loan application %s: %w", id, model.ErrApplicationNotFound)
	}
	delete(r.apps, id)
	return nil
}

func (r *LoanApplicationRepo) DeleteCreatedBetween(_ context.Context, window valueobject.DayWindow) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, app := range r.apps {
		if window.Contains(app.CreatedAt()) {
			delete(r.apps, id)
			n++
		}
	}
	return n, nil
}

func (r *LoanApplicationRepo) Ping(context.Context) error { return nil }
