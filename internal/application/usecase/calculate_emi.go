package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/loanintake/internal/application/dto"
	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/port"
	"github.com/bibbank/loanintake/pkg/money"
)

// QuoteLimits bounds the public calculator inputs.
type QuoteLimits struct {
	MinPrincipal   decimal.Decimal
	MaxPrincipal   decimal.Decimal
	MaxRatePercent decimal.Decimal
	MinYears       int
	MaxYears       int
}

// DefaultQuoteLimits matches the calculator sliders.
func DefaultQuoteLimits() QuoteLimits {
	return QuoteLimits{
		MinPrincipal:   decimal.NewFromInt(20_000),
		MaxPrincipal:   decimal.NewFromInt(1_550_000),
		MaxRatePercent: decimal.NewFromInt(24),
		MinYears:       1,
		MaxYears:       30,
	}
}

// CalculateEMIUseCase quotes an EMI with its amortization schedule.
type CalculateEMIUseCase struct {
	cache  port.QuoteCache
	limits QuoteLimits
	logger *slog.Logger
}

// NewCalculateEMIUseCase wires dependencies.
func NewCalculateEMIUseCase(cache port.QuoteCache, limits QuoteLimits, logger *slog.Logger) *CalculateEMIUseCase {
	return &CalculateEMIUseCase{cache: cache, limits: limits, logger: logger}
}

// Execute validates the terms, then serves the calculation from cache or
// computes it. Cache failures are logged and never fail the quote.
func (uc *CalculateEMIUseCase) Execute(ctx context.Context, req dto.QuoteEMIRequest) (dto.EMIQuoteResponse, error) {
	if err := uc.checkTerms(req); err != nil {
		return dto.EMIQuoteResponse{}, err
	}

	terms := model.NewLoanTermsFromYears(req.Principal, req.AnnualRatePercent, req.TenureYears)
	months := model.PreviewMonths
	if req.FullSchedule {
		months = terms.TermMonths
	}

	ctx, span := tracer.Start(ctx, "CalculateEMI", trace.WithAttributes(
		attribute.Int("term_months", terms.TermMonths),
		attribute.Int("schedule_months", months),
	))
	defer span.End()

	if calc, ok, err := uc.cache.Get(ctx, terms, months); err != nil {
		uc.logger.Warn("quote cache read failed", "error", err)
	} else if ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return toQuoteResponse(req.TenureYears, calc), nil
	}

	calc := model.Calculate(terms, months)
	if err := uc.cache.Set(ctx, calc); err != nil {
		uc.logger.Warn("quote cache write failed", "error", err)
	}
	return toQuoteResponse(req.TenureYears, calc), nil
}

func (uc *CalculateEMIUseCase) checkTerms(req dto.QuoteEMIRequest) error {
	l := uc.limits
	switch {
	case req.Principal.LessThan(l.MinPrincipal) || req.Principal.GreaterThan(l.MaxPrincipal):
		return fmt.Errorf("%w: principal must be between %s and %s",
			model.ErrInvalidTerms, money.FormatINR(l.MinPrincipal), money.FormatINR(l.MaxPrincipal))
	case req.AnnualRatePercent.IsNegative() || req.AnnualRatePercent.GreaterThan(l.MaxRatePercent):
		return fmt.Errorf("%w: annual rate must be between 0 and %s%%", model.ErrInvalidTerms, l.MaxRatePercent)
	case req.TenureYears < l.MinYears || req.TenureYears > l.MaxYears:
		return fmt.Errorf("%w: tenure must be between %d and %d years", model.ErrInvalidTerms, l.MinYears, l.MaxYears)
	}
	return nil
}

func toQuoteResponse(years int, calc model.EMICalculation) dto.EMIQuoteResponse {
	rounded := calc.Quote.Rounded()
	schedule := make([]dto.ScheduleRow, 0, len(calc.Schedule))
	for _, row := range calc.Schedule {
		r := row.Rounded()
		schedule = append(schedule, dto.ScheduleRow{
			Month:     r.Month,
			Interest:  r.Interest,
			Principal: r.Principal,
			Balance:   r.RemainingBalance,
		})
	}

	return dto.EMIQuoteResponse{
		Principal:           calc.Terms.Principal,
		AnnualRatePercent:   calc.Terms.AnnualRatePercent,
		TenureYears:         years,
		TermMonths:          calc.Terms.TermMonths,
		MonthlyPayment:      rounded.MonthlyPayment,
		MonthlyPaymentExact: calc.Quote.MonthlyPayment,
		TotalPayment:        rounded.TotalPayment,
		TotalInterest:       rounded.TotalInterest,
		Display: dto.QuoteDisplay{
			Principal:      money.FormatINR(calc.Terms.Principal),
			PrincipalShort: money.FormatShortINR(calc.Terms.Principal),
			MonthlyPayment: money.FormatINR(calc.Quote.MonthlyPayment),
			TotalPayment:   money.FormatINR(calc.Quote.TotalPayment),
			TotalInterest:  money.FormatINR(calc.Quote.TotalInterest),
		},
		Schedule: schedule,
	}
}
