package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/loanintake/internal/domain/event"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
	"github.com/bibbank/loanintake/pkg/money"
)

// ---------------------------------------------------------------------------
// LoanApplication aggregate root
// ---------------------------------------------------------------------------

// ApplicantDetails is the validated, typed content of an application form.
type ApplicantDetails struct {
	FullName      string
	PAN           valueobject.PAN
	Aadhaar       valueobject.Aadhaar
	DateOfBirth   time.Time
	State         string
	Pincode       valueobject.Pincode
	Email         valueobject.Email
	MonthlyIncome money.Money
	Mobile        valueobject.Mobile
	LoanAmount    money.Money
	TenureYears   int
}

// LoanApplication is an immutable aggregate. Once created it is never
// modified; it can only be deleted.
type LoanApplication struct {
	id           string
	details      ApplicantDetails
	createdAt    time.Time
	domainEvents []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoanApplication creates an application from already-validated details
// and records LoanApplicationSubmitted.
func NewLoanApplication(details ApplicantDetails, now time.Time) (LoanApplication, error) {
	details.FullName = strings.TrimSpace(details.FullName)
	details.State = strings.TrimSpace(details.State)

	if details.FullName == "" {
		return LoanApplication{}, errors.New("full name is required")
	}
	if details.PAN.String() == "" || details.Aadhaar.String() == "" {
		return LoanApplication{}, errors.New("identity numbers are required")
	}
	if !details.LoanAmount.IsPositive() {
		return LoanApplication{}, errors.New("loan amount must be positive")
	}
	if details.TenureYears <= 0 {
		return LoanApplication{}, errors.New("tenure must be positive")
	}

	id := uuid.New().String()
	app := LoanApplication{
		id:        id,
		details:   details,
		createdAt: now,
	}
	app.domainEvents = append(app.domainEvents, event.NewLoanApplicationSubmitted(
		id, details.LoanAmount.Amount(), details.TenureYears, details.State, details.Pincode.String(), now,
	))
	return app, nil
}

// ReconstructLoanApplication rebuilds an aggregate from persistence without side-effects.
func ReconstructLoanApplication(id string, details ApplicantDetails, createdAt time.Time) LoanApplication {
	return LoanApplication{
		id:        id,
		details:   details,
		createdAt: createdAt,
	}
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (a LoanApplication) ID() string                         { return a.id }
func (a LoanApplication) Details() ApplicantDetails          { return a.details }
func (a LoanApplication) FullName() string                   { return a.details.FullName }
func (a LoanApplication) PAN() valueobject.PAN               { return a.details.PAN }
func (a LoanApplication) Aadhaar() valueobject.Aadhaar       { return a.details.Aadhaar }
func (a LoanApplication) DateOfBirth() time.Time             { return a.details.DateOfBirth }
func (a LoanApplication) State() string                      { return a.details.State }
func (a LoanApplication) Pincode() valueobject.Pincode       { return a.details.Pincode }
func (a LoanApplication) Email() valueobject.Email           { return a.details.Email }
func (a LoanApplication) MonthlyIncome() money.Money         { return a.details.MonthlyIncome }
func (a LoanApplication) Mobile() valueobject.Mobile         { return a.details.Mobile }
func (a LoanApplication) LoanAmount() money.Money            { return a.details.LoanAmount }
func (a LoanApplication) TenureYears() int                   { return a.details.TenureYears }
func (a LoanApplication) CreatedAt() time.Time               { return a.createdAt }
func (a LoanApplication) DomainEvents() []event.DomainEvent  { return a.domainEvents }

// ClearEvents returns a copy with an empty event list (call after publishing).
func (a LoanApplication) ClearEvents() LoanApplication {
	next := a
	next.domainEvents = nil
	return next
}
