package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// PreviewMonths is the number of schedule rows shown by the public calculator.
const PreviewMonths = 12

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// LoanTerms describes a loan for quoting. It is never persisted.
type LoanTerms struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TermMonths        int
}

// NewLoanTermsFromYears builds terms from a tenure expressed in whole years.
func NewLoanTermsFromYears(principal, annualRatePercent decimal.Decimal, years int) LoanTerms {
	return LoanTerms{Principal: principal, AnnualRatePercent: annualRatePercent, TermMonths: years * 12}
}

// MonthlyRate returns annualRatePercent / 12 / 100.
func (t LoanTerms) MonthlyRate() decimal.Decimal {
	return t.AnnualRatePercent.Div(twelve.Mul(hundred))
}

// EMIQuote is the unrounded result of an EMI computation.
type EMIQuote struct {
	MonthlyPayment decimal.Decimal
	TotalPayment   decimal.Decimal
	TotalInterest  decimal.Decimal
}

// Rounded returns the quote in whole currency units for display.
func (q EMIQuote) Rounded() EMIQuote {
	return EMIQuote{
		MonthlyPayment: q.MonthlyPayment.Round(0),
		TotalPayment:   q.TotalPayment.Round(0),
		TotalInterest:  q.TotalInterest.Round(0),
	}
}

// AmortizationRow is one month of an amortization schedule.
type AmortizationRow struct {
	Month            int
	Interest         decimal.Decimal
	Principal        decimal.Decimal
	RemainingBalance decimal.Decimal
}

// Rounded returns the row in whole currency units for display.
func (r AmortizationRow) Rounded() AmortizationRow {
	return AmortizationRow{
		Month:            r.Month,
		Interest:         r.Interest.Round(0),
		Principal:        r.Principal.Round(0),
		RemainingBalance: r.RemainingBalance.Round(0),
	}
}

// ComputeEMI returns the fixed monthly installment for the given terms:
//
//	r   = annualRatePercent / 12 / 100
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1)
//
// A zero rate splits the principal evenly. Non-positive principal or term
// yields a zero quote.
func ComputeEMI(terms LoanTerms) EMIQuote {
	if terms.TermMonths <= 0 || !terms.Principal.IsPositive() {
		return EMIQuote{MonthlyPayment: decimal.Zero, TotalPayment: decimal.Zero, TotalInterest: decimal.Zero}
	}

	n := decimal.NewFromInt(int64(terms.TermMonths))
	var monthly decimal.Decimal

	if !terms.AnnualRatePercent.IsPositive() {
		monthly = terms.Principal.Div(n)
	} else {
		// The power runs in float64 and the result returns to decimal for all
		// money arithmetic. (1+r)^360 at 24% stays well inside float range.
		r := terms.AnnualRatePercent.InexactFloat64() / 12.0 / 100.0
		factor := math.Pow(1+r, float64(terms.TermMonths))
		monthly = decimal.NewFromFloat(terms.Principal.InexactFloat64() * r * factor / (factor - 1))
	}

	total := monthly.Mul(n)
	return EMIQuote{
		MonthlyPayment: monthly,
		TotalPayment:   total,
		TotalInterest:  total.Sub(terms.Principal),
	}
}

// GenerateSchedule returns the first months rows of the amortization schedule,
// capped at the loan term. The recurrence is unrounded:
//
//	interest_i  = balance_{i-1} * r
//	principal_i = payment - interest_i
//	balance_i   = max(0, balance_{i-1} - principal_i)
//
// The principal portion never exceeds the balance it repays. On the final
// month of the term it absorbs whatever balance is left, so a full schedule
// always ends at exactly zero.
func GenerateSchedule(terms LoanTerms, monthlyPayment decimal.Decimal, months int) []AmortizationRow {
	if months > terms.TermMonths {
		months = terms.TermMonths
	}
	if months <= 0 || !terms.Principal.IsPositive() {
		return []AmortizationRow{}
	}

	rate := terms.MonthlyRate()
	balance := terms.Principal
	rows := make([]AmortizationRow, 0, months)

	for month := 1; month <= months; month++ {
		interest := balance.Mul(rate)
		principalPart := monthlyPayment.Sub(interest)

		if month == terms.TermMonths || principalPart.GreaterThan(balance) {
			principalPart = balance
		}

		balance = balance.Sub(principalPart)
		if balance.IsNegative() {
			balance = decimal.Zero
		}

		rows = append(rows, AmortizationRow{
			Month:            month,
			Interest:         interest,
			Principal:        principalPart,
			RemainingBalance: balance,
		})
	}

	return rows
}

// PreviewSchedule returns at most PreviewMonths rows.
func PreviewSchedule(terms LoanTerms, monthlyPayment decimal.Decimal) []AmortizationRow {
	return GenerateSchedule(terms, monthlyPayment, PreviewMonths)
}

// FullSchedule returns one row per month of the term.
func FullSchedule(terms LoanTerms, monthlyPayment decimal.Decimal) []AmortizationRow {
	return GenerateSchedule(terms, monthlyPayment, terms.TermMonths)
}

// EMICalculation bundles a quote with the schedule it was generated with.
type EMICalculation struct {
	Terms    LoanTerms
	Quote    EMIQuote
	Schedule []AmortizationRow
}

// Calculate computes the quote and a schedule of the requested length.
func Calculate(terms LoanTerms, scheduleMonths int) EMICalculation {
	quote := ComputeEMI(terms)
	return EMICalculation{
		Terms:    terms,
		Quote:    quote,
		Schedule: GenerateSchedule(terms, quote.MonthlyPayment, scheduleMonths),
	}
}
