package port

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks -source=repository.go

import (
	"context"
	"io"
	"time"

	"github.com/bibbank/loanintake/internal/domain/event"
	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// SortOrder orders listings by creation time.
type SortOrder int

const (
	OldestFirst SortOrder = iota
	NewestFirst
)

// ListFilter narrows a listing. A zero Window means every record.
type ListFilter struct {
	Window valueobject.DayWindow
	Order  SortOrder
}

// LoanApplicationRepository persists and retrieves loan applications.
// Implementations never re-validate; they store what they are given.
// Transport or connection failures are reported wrapping model.ErrStoreUnavailable.
type LoanApplicationRepository interface {
	Save(ctx context.Context, app model.LoanApplication) error
	// FindByID returns model.ErrApplicationNotFound for an unknown id.
	FindByID(ctx context.Context, id string) (model.LoanApplication, error)
	List(ctx context.Context, filter ListFilter) ([]model.LoanApplication, error)
	// Delete returns model.ErrApplicationNotFound for an unknown id.
	Delete(ctx context.Context, id string) error
	// DeleteCreatedBetween removes every application inside the window and
	// returns how many were removed.
	DeleteCreatedBetween(ctx context.Context, window valueobject.DayWindow) (int64, error)
	Ping(ctx context.Context) error
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// Admin access ports
// ---------------------------------------------------------------------------

// AdminAuthenticator checks the admin credential. A mismatch is model.ErrUnauthorized.
type AdminAuthenticator interface {
	Authenticate(ctx context.Context, credential string) error
}

// SessionIssuer mints bearer tokens for authenticated admins.
type SessionIssuer interface {
	IssueAdminSession(subject string) (token string, expiresAt time.Time, err error)
}

// ---------------------------------------------------------------------------
// Calculator and export ports
// ---------------------------------------------------------------------------

// QuoteCache memoises EMI calculations. A miss is (zero, false, nil).
type QuoteCache interface {
	Get(ctx context.Context, terms model.LoanTerms, scheduleMonths int) (model.EMICalculation, bool, error)
	Set(ctx context.Context, calc model.EMICalculation) error
}

// ExportEncoder renders applications as a downloadable document.
type ExportEncoder interface {
	Format() string
	ContentType() string
	Encode(w io.Writer, apps []model.LoanApplication) error
}
