package model_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loanintake/internal/domain/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeEMI_StandardFormula(t *testing.T) {
	terms := model.LoanTerms{Principal: d("200000"), AnnualRatePercent: d("9.5"), TermMonths: 60}

	q := model.ComputeEMI(terms)

	assert.Equal(t, "4200.37", q.MonthlyPayment.StringFixed(2))
	assert.True(t, q.TotalPayment.Equal(q.MonthlyPayment.Mul(decimal.NewFromInt(60))))
	assert.True(t, q.TotalInterest.Equal(q.TotalPayment.Sub(terms.Principal)))
	assert.Equal(t, "252022.34", q.TotalPayment.StringFixed(2))
	assert.Equal(t, "52022.34", q.TotalInterest.StringFixed(2))

	r := q.Rounded()
	assert.Equal(t, "4200", r.MonthlyPayment.String())
	assert.Equal(t, "252022", r.TotalPayment.String())
	assert.Equal(t, "52022", r.TotalInterest.String())
}

func TestComputeEMI_KnownValues(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		months    int
		want      string
	}{
		{"30 year mortgage at 5%", "100000", "5", 360, "536.82"},
		{"ceiling loan at max rate", "1550000", "24", 360, "31024.87"},
		{"one month", "20000", "12", 1, "20200.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := model.ComputeEMI(model.LoanTerms{Principal: d(tt.principal), AnnualRatePercent: d(tt.rate), TermMonths: tt.months})
			assert.Equal(t, tt.want, q.MonthlyPayment.StringFixed(2))
		})
	}
}

func TestComputeEMI_ZeroRate(t *testing.T) {
	q := model.ComputeEMI(model.LoanTerms{Principal: d("120000"), AnnualRatePercent: decimal.Zero, TermMonths: 12})

	assert.True(t, q.MonthlyPayment.Equal(d("10000")), "got %s", q.MonthlyPayment)
	assert.True(t, q.TotalPayment.Equal(d("120000")))
	assert.True(t, q.TotalInterest.IsZero())
}

func TestComputeEMI_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name  string
		terms model.LoanTerms
	}{
		{"zero principal", model.LoanTerms{Principal: decimal.Zero, AnnualRatePercent: d("10"), TermMonths: 12}},
		{"negative principal", model.LoanTerms{Principal: d("-5000"), AnnualRatePercent: d("10"), TermMonths: 12}},
		{"zero term", model.LoanTerms{Principal: d("50000"), AnnualRatePercent: d("10"), TermMonths: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := model.ComputeEMI(tt.terms)
			assert.True(t, q.MonthlyPayment.IsZero())
			assert.True(t, q.TotalPayment.IsZero())
			assert.True(t, q.TotalInterest.IsZero())
			assert.Empty(t, model.FullSchedule(tt.terms, q.MonthlyPayment))
		})
	}
}

func TestComputeEMI_LargePrincipal(t *testing.T) {
	terms := model.LoanTerms{Principal: d("50000000"), AnnualRatePercent: d("24"), TermMonths: 360}
	q := model.ComputeEMI(terms)

	require.True(t, q.MonthlyPayment.IsPositive())
	// Interest-only floor: P*r.
	assert.True(t, q.MonthlyPayment.GreaterThan(d("1000000")))
	assert.True(t, q.TotalInterest.IsPositive())
}

func TestPreviewSchedule(t *testing.T) {
	terms := model.LoanTerms{Principal: d("200000"), AnnualRatePercent: d("9.5"), TermMonths: 60}
	q := model.ComputeEMI(terms)

	rows := model.PreviewSchedule(terms, q.MonthlyPayment)
	require.Len(t, rows, model.PreviewMonths)

	first := rows[0].Rounded()
	assert.Equal(t, 1, first.Month)
	assert.Equal(t, "1583", first.Interest.String())
	assert.Equal(t, "2617", first.Principal.String())
	assert.Equal(t, "197383", first.RemainingBalance.String())

	last := rows[11].Rounded()
	assert.Equal(t, 12, last.Month)
	assert.Equal(t, "1346", last.Interest.String())
	assert.Equal(t, "2854", last.Principal.String())
	assert.Equal(t, "167191", last.RemainingBalance.String())
}

func TestPreviewSchedule_ShortTerm(t *testing.T) {
	terms := model.LoanTerms{Principal: d("60000"), AnnualRatePercent: d("12"), TermMonths: 6}
	q := model.ComputeEMI(terms)

	rows := model.PreviewSchedule(terms, q.MonthlyPayment)
	require.Len(t, rows, 6)
	assert.True(t, rows[5].RemainingBalance.IsZero())
}

func TestFullSchedule_Invariants(t *testing.T) {
	tests := []model.LoanTerms{
		{Principal: d("200000"), AnnualRatePercent: d("9.5"), TermMonths: 60},
		{Principal: d("100000"), AnnualRatePercent: d("5"), TermMonths: 360},
		{Principal: d("1550000"), AnnualRatePercent: d("24"), TermMonths: 360},
		{Principal: d("20000"), AnnualRatePercent: decimal.Zero, TermMonths: 12},
		{Principal: d("10000000"), AnnualRatePercent: d("8.75"), TermMonths: 240},
	}
	for _, terms := range tests {
		t.Run(terms.Principal.String()+"@"+terms.AnnualRatePercent.String(), func(t *testing.T) {
			q := model.ComputeEMI(terms)
			rows := model.FullSchedule(terms, q.MonthlyPayment)
			require.Len(t, rows, terms.TermMonths)

			prev := terms.Principal
			for i, row := range rows {
				assert.Equal(t, i+1, row.Month)
				assert.False(t, row.RemainingBalance.IsNegative(), "month %d negative", row.Month)
				assert.True(t, row.RemainingBalance.LessThanOrEqual(prev), "month %d increased", row.Month)
				prev = row.RemainingBalance
			}
			assert.True(t, rows[len(rows)-1].RemainingBalance.IsZero(), "final balance %s", rows[len(rows)-1].RemainingBalance)
		})
	}
}

func TestGenerateSchedule_UnroundedInterest(t *testing.T) {
	terms := model.LoanTerms{Principal: d("200000"), AnnualRatePercent: d("9.5"), TermMonths: 60}
	q := model.ComputeEMI(terms)

	rows := model.GenerateSchedule(terms, q.MonthlyPayment, 3)
	require.Len(t, rows, 3)

	balance := terms.Principal
	for _, row := range rows {
		assert.True(t, row.Interest.Equal(balance.Mul(terms.MonthlyRate())), "month %d interest %s", row.Month, row.Interest)
		assert.True(t, row.Principal.Equal(q.MonthlyPayment.Sub(row.Interest)), "month %d principal %s", row.Month, row.Principal)
		balance = balance.Sub(row.Principal)
		assert.True(t, row.RemainingBalance.Equal(balance))
	}
}

func TestGenerateSchedule_PrincipalCappedAtBalance(t *testing.T) {
	terms := model.LoanTerms{Principal: d("50000"), AnnualRatePercent: d("12"), TermMonths: 12}
	oversized := d("30000")

	rows := model.FullSchedule(terms, oversized)
	require.Len(t, rows, 12)

	prev := terms.Principal
	for _, row := range rows {
		assert.True(t, row.Principal.LessThanOrEqual(prev), "month %d repays %s of %s", row.Month, row.Principal, prev)
		assert.True(t, row.RemainingBalance.Equal(prev.Sub(row.Principal)), "month %d balance %s", row.Month, row.RemainingBalance)
		prev = row.RemainingBalance
	}
	// 50000 -> 20500 after month one, then the second payment clears it.
	assert.True(t, rows[1].Principal.Equal(d("20500")), rows[1].Principal.String())
	assert.True(t, rows[1].RemainingBalance.IsZero())
	assert.True(t, rows[2].Principal.IsZero())
}

func TestGenerateSchedule_FreshSlice(t *testing.T) {
	terms := model.LoanTerms{Principal: d("200000"), AnnualRatePercent: d("9.5"), TermMonths: 60}
	q := model.ComputeEMI(terms)

	a := model.PreviewSchedule(terms, q.MonthlyPayment)
	a[0].Month = 99
	b := model.PreviewSchedule(terms, q.MonthlyPayment)
	assert.Equal(t, 1, b[0].Month)
}

func TestNewLoanTermsFromYears(t *testing.T) {
	terms := model.NewLoanTermsFromYears(d("500000"), d("10.5"), 5)
	assert.Equal(t, 60, terms.TermMonths)
	assert.Equal(t, "0.00875", terms.MonthlyRate().String())
}

func TestCalculate(t *testing.T) {
	terms := model.NewLoanTermsFromYears(d("200000"), d("9.5"), 5)
	calc := model.Calculate(terms, model.PreviewMonths)
	assert.Equal(t, "4200.37", calc.Quote.MonthlyPayment.StringFixed(2))
	assert.Len(t, calc.Schedule, 12)
	assert.Equal(t, terms, calc.Terms)
}
