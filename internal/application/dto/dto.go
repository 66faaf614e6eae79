package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// QuoteEMIRequest carries the calculator inputs.
type QuoteEMIRequest struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	TenureYears       int             `json:"tenure_years"`
	FullSchedule      bool            `json:"full_schedule"`
}

// SubmitApplicationRequest carries the raw application form. Numeric fields
// accept either JSON numbers or strings so the validator, not the decoder,
// reports bad values.
type SubmitApplicationRequest struct {
	FullName      FlexString `json:"full_name"`
	PAN           FlexString `json:"pan"`
	Aadhaar       FlexString `json:"aadhaar"`
	DateOfBirth   FlexString `json:"date_of_birth"`
	State         FlexString `json:"state"`
	Pincode       FlexString `json:"pincode"`
	Email         FlexString `json:"email"`
	Mobile        FlexString `json:"mobile"`
	MonthlyIncome FlexString `json:"monthly_income"`
	LoanAmount    FlexString `json:"loan_amount"`
	TenureYears   FlexString `json:"tenure_years"`
}

// ListApplicationsRequest optionally filters by creation date (YYYY-MM-DD).
type ListApplicationsRequest struct {
	Date string `json:"date,omitempty"`
}

// DeleteApplicationRequest identifies one application to remove.
type DeleteApplicationRequest struct {
	ID string `json:"id"`
}

// DeleteApplicationsByDateRequest removes every application created on Date.
type DeleteApplicationsByDateRequest struct {
	Date string `json:"date"`
}

// ExportRequest asks for the applications of one day as a spreadsheet.
type ExportRequest struct {
	Password string `json:"password"`
	Date     string `json:"date"`
	Format   string `json:"format,omitempty"`
}

// AdminLoginRequest exchanges the shared admin password for a session token.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// ScheduleRow is one amortization month rounded to whole rupees.
type ScheduleRow struct {
	Month     int             `json:"month"`
	Interest  decimal.Decimal `json:"interest"`
	Principal decimal.Decimal `json:"principal"`
	Balance   decimal.Decimal `json:"balance"`
}

// QuoteDisplay holds the quote pre-formatted for people.
type QuoteDisplay struct {
	Principal      string `json:"principal"`
	PrincipalShort string `json:"principal_short"`
	MonthlyPayment string `json:"monthly_payment"`
	TotalPayment   string `json:"total_payment"`
	TotalInterest  string `json:"total_interest"`
}

// EMIQuoteResponse is the calculator output. Amounts are whole rupees;
// MonthlyPaymentExact keeps the unrounded installment.
type EMIQuoteResponse struct {
	Principal           decimal.Decimal `json:"principal"`
	AnnualRatePercent   decimal.Decimal `json:"annual_rate_percent"`
	TenureYears         int             `json:"tenure_years"`
	TermMonths          int             `json:"term_months"`
	MonthlyPayment      decimal.Decimal `json:"monthly_payment"`
	MonthlyPaymentExact decimal.Decimal `json:"monthly_payment_exact"`
	TotalPayment        decimal.Decimal `json:"total_payment"`
	TotalInterest       decimal.Decimal `json:"total_interest"`
	Display             QuoteDisplay    `json:"display"`
	Schedule            []ScheduleRow   `json:"schedule"`
}

// SubmitApplicationResponse confirms a stored application.
type SubmitApplicationResponse struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Message   string    `json:"message"`
}

// ApplicationResponse is the admin view of one stored application.
type ApplicationResponse struct {
	CreatedAt     time.Time       `json:"created_at"`
	ID            string          `json:"id"`
	FullName      string          `json:"full_name"`
	PAN           string          `json:"pan"`
	Aadhaar       string          `json:"aadhaar"`
	DateOfBirth   string          `json:"date_of_birth"`
	State         string          `json:"state"`
	Pincode       string          `json:"pincode"`
	Email         string          `json:"email"`
	Mobile        string          `json:"mobile"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
	LoanAmount    decimal.Decimal `json:"loan_amount"`
	TenureYears   int             `json:"tenure_years"`
}

// ListApplicationsResponse is a newest-first listing.
type ListApplicationsResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Count        int                   `json:"count"`
}

// DeleteApplicationsResponse reports a purge of one day.
type DeleteApplicationsResponse struct {
	Date    string `json:"date"`
	Deleted int64  `json:"deleted"`
}

// ExportResponse is a rendered export. Empty is set, with no Data, when
// nothing was created on the requested date.
type ExportResponse struct {
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Message     string `json:"message,omitempty"`
	Data        []byte `json:"data,omitempty"`
	Count       int    `json:"count"`
	Empty       bool   `json:"empty"`
}

// AdminLoginResponse carries a bearer token for the admin endpoints.
type AdminLoginResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token"`
}

// ---------------------------------------------------------------------------
// FlexString
// ---------------------------------------------------------------------------

// FlexString decodes from a JSON string or a JSON number and keeps the raw
// text either way. null decodes to "".
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string { return string(s) }
