package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loanintake/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	TypeLoanApplicationSubmitted = "intake.loan_application.submitted"
	TypeLoanApplicationDeleted   = "intake.loan_application.deleted"
	TypeLoanApplicationsPurged   = "intake.loan_applications.purged"

	aggregateLoanApplication = "LoanApplication"
	aggregateIntakeDay       = "IntakeDay"
)

// LoanApplicationSubmitted is raised when a validated application is stored.
// It deliberately omits identity numbers (PAN, Aadhaar).
type LoanApplicationSubmitted struct {
	events.BaseEvent
	LoanAmount  decimal.Decimal `json:"loan_amount"`
	TenureYears int             `json:"tenure_years"`
	State       string          `json:"state"`
	Pincode     string          `json:"pincode"`
}

func NewLoanApplicationSubmitted(
	applicationID string,
	loanAmount decimal.Decimal,
	tenureYears int,
	state, pincode string,
	now time.Time,
) LoanApplicationSubmitted {
	return LoanApplicationSubmitted{
		BaseEvent:   events.NewBaseEvent(TypeLoanApplicationSubmitted, applicationID, aggregateLoanApplication, now),
		LoanAmount:  loanAmount,
		TenureYears: tenureYears,
		State:       state,
		Pincode:     pincode,
	}
}

// LoanApplicationDeleted is raised when an admin removes one application.
type LoanApplicationDeleted struct {
	events.BaseEvent
	DeletedBy string `json:"deleted_by"`
}

func NewLoanApplicationDeleted(applicationID, deletedBy string, now time.Time) LoanApplicationDeleted {
	return LoanApplicationDeleted{
		BaseEvent: events.NewBaseEvent(TypeLoanApplicationDeleted, applicationID, aggregateLoanApplication, now),
		DeletedBy: deletedBy,
	}
}

// LoanApplicationsPurged is raised when every application of one day is removed.
// The aggregate ID is the purged date (YYYY-MM-DD).
type LoanApplicationsPurged struct {
	events.BaseEvent
	Date      string `json:"date"`
	Count     int64  `json:"count"`
	DeletedBy string `json:"deleted_by"`
}

func NewLoanApplicationsPurged(date string, count int64, deletedBy string, now time.Time) LoanApplicationsPurged {
	return LoanApplicationsPurged{
		BaseEvent: events.NewBaseEvent(TypeLoanApplicationsPurged, date, aggregateIntakeDay, now),
		Date:      date,
		Count:     count,
		DeletedBy: deletedBy,
	}
}
