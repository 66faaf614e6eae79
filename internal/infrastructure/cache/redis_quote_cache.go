// Package cache memoises EMI calculations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/bibbank/loanintake/internal/domain/model"
)

const keyPrefix = "intake:emi:v1"

// RedisQuoteCache implements port.QuoteCache on Redis with a fixed TTL.
type RedisQuoteCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisQuoteCache uses client for every call. A zero ttl keeps entries forever.
func NewRedisQuoteCache(client redis.Cmdable, ttl time.Duration) *RedisQuoteCache {
	return &RedisQuoteCache{client: client, ttl: ttl}
}

// Key identifies a calculation by its terms and schedule length. A schedule
// longer than the term is the full schedule, so both share a key.
func Key(terms model.LoanTerms, scheduleMonths int) string {
	months := min(scheduleMonths, terms.TermMonths)
	return fmt.Sprintf("%s:%s:%s:%d:%d", keyPrefix,
		terms.Principal.String(), terms.AnnualRatePercent.String(), terms.TermMonths, months)
}

func (c *RedisQuoteCache) Get(ctx context.Context, terms model.LoanTerms, scheduleMonths int) (model.EMICalculation, bool, error) {
	raw, err := c.client.Get(ctx, Key(terms, scheduleMonths)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.EMICalculation{}, false, nil
	}
	if err != nil {
		return model.EMICalculation{}, false, fmt.Errorf("quote cache get: %w", err)
	}

	var entry cachedCalculation
	if err := json.Unmarshal(raw, &entry); err != nil {
		return model.EMICalculation{}, false, fmt.Errorf("quote cache decode: %w", err)
	}
	return entry.toModel(terms), true, nil
}

func (c *RedisQuoteCache) Set(ctx context.Context, calc model.EMICalculation) error {
	raw, err := json.Marshal(fromModel(calc))
	if err != nil {
		return fmt.Errorf("quote cache encode: %w", err)
	}
	key := Key(calc.Terms, len(calc.Schedule))
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("quote cache set: %w", err)
	}
	return nil
}

type cachedRow struct {
	Month     int             `json:"m"`
	Interest  decimal.Decimal `json:"i"`
	Principal decimal.Decimal `json:"p"`
	Balance   decimal.Decimal `json:"b"`
}

type cachedCalculation struct {
	MonthlyPayment decimal.Decimal `json:"emi"`
	TotalPayment   decimal.Decimal `json:"total"`
	TotalInterest  decimal.Decimal `json:"interest"`
	Schedule       []cachedRow     `json:"schedule"`
}

func fromModel(calc model.EMICalculation) cachedCalculation {
	rows := make([]cachedRow, 0, len(calc.Schedule))
	for _, r := range calc.Schedule {
		rows = append(rows, cachedRow{Month: r.Month, Interest: r.Interest, Principal: r.Principal, Balance: r.RemainingBalance})
	}
	return cachedCalculation{
		MonthlyPayment: calc.Quote.MonthlyPayment,
		TotalPayment:   calc.Quote.TotalPayment,
		TotalInterest:  calc.Quote.TotalInterest,
		Schedule:       rows,
	}
}

func (e cachedCalculation) toModel(terms model.LoanTerms) model.EMICalculation {
	rows := make([]model.AmortizationRow, 0, len(e.Schedule))
	for _, r := range e.Schedule {
		rows = append(rows, model.AmortizationRow{Month: r.Month, Interest: r.Interest, Principal: r.Principal, RemainingBalance: r.Balance})
	}
	return model.EMICalculation{
		Terms: terms,
		Quote: model.EMIQuote{
			MonthlyPayment: e.MonthlyPayment,
			TotalPayment:   e.TotalPayment,
			TotalInterest:  e.TotalInterest,
		},
		Schedule: rows,
	}
}
