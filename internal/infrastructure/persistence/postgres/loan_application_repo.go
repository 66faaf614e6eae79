package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/port"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
	"github.com/bibbank/loanintake/pkg/money"
	pkgpostgres "github.com/bibbank/loanintake/pkg/postgres"
)

const selectColumns = `
	SELECT id, full_name, pan, aadhaar, date_of_birth, state, pincode,
	       email, monthly_income, mobile, loan_amount, tenure_years, created_at
	FROM loan_applications`

// LoanApplicationRepo implements port.LoanApplicationRepository.
type LoanApplicationRepo struct {
	pool *pgxpool.Pool
}

// NewLoanApplicationRepo creates a new repository backed by PostgreSQL.
func NewLoanApplicationRepo(pool *pgxpool.Pool) *LoanApplicationRepo {
	return &LoanApplicationRepo{pool: pool}
}

// Save inserts an application. Applications are immutable, so there is no
// update path.
func (r *LoanApplicationRepo) Save(ctx context.Context, app model.LoanApplication) error {
	query := `
		INSERT INTO loan_applications (
			id, full_name, pan, aadhaar, date_of_birth, state, pincode,
			email, monthly_income, mobile, loan_amount, tenure_years, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`
	_, err := r.pool.Exec(ctx, query,
		app.ID(), app.FullName(), app.PAN().String(), app.Aadhaar().String(),
		app.DateOfBirth(), app.State(), app.Pincode().String(),
		app.Email().String(), app.MonthlyIncome().Amount(), app.Mobile().String(),
		app.LoanAmount().Amount(), app.TenureYears(), app.CreatedAt(),
	)
	if err != nil {
		return storeError("save loan application", err)
	}
	return nil
}

// FindByID retrieves a single loan application.
func (r *LoanApplicationRepo) FindByID(ctx context.Context, id string) (model.LoanApplication, error) {
	app, err := scanApplication(r.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		return model.LoanApplication{}, storeError("find loan application", err)
	}
	return app, nil
}

// List returns applications in creation order, optionally limited to one
// day window (bounds inclusive).
func (r *LoanApplicationRepo) List(ctx context.Context, filter port.ListFilter) ([]model.LoanApplication, error) {
	query := selectColumns
	var args []any
	if !filter.Window.IsZero() {
		query += ` WHERE created_at BETWEEN $1 AND $2`
		args = append(args, filter.Window.Start(), filter.Window.End())
	}
	query += " " + orderClause(filter.Order)
	return r.scanMany(ctx, r.pool, query, args...)
}

// Delete removes one application by id.
func (r *LoanApplicationRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM loan_applications WHERE id = $1`, id)
	if err != nil {
		return storeError("delete loan application", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete loan application %s: %w", id, model.ErrApplicationNotFound)
	}
	return nil
}

// DeleteCreatedBetween removes every application created inside the window.
func (r *LoanApplicationRepo) DeleteCreatedBetween(ctx context.Context, window valueobject.DayWindow) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM loan_applications WHERE created_at BETWEEN $1 AND $2`,
		window.Start(), window.End(),
	)
	if err != nil {
		return 0, storeError("delete loan applications", err)
	}
	return tag.RowsAffected(), nil
}

// Ping reports whether the database is reachable.
func (r *LoanApplicationRepo) Ping(ctx context.Context) error {
	if err := pkgpostgres.HealthCheck(ctx, r.pool); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// scan helpers
// ---------------------------------------------------------------------------

type scannable interface {
	Scan(dest ...any) error
}

func (r *LoanApplicationRepo) scanMany(ctx context.Context, q pkgpostgres.Querier, query string, args ...any) ([]model.LoanApplication, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("query loan applications", err)
	}
	defer rows.Close()

	result := []model.LoanApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, storeError("scan loan application", err)
		}
		result = append(result, app)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate loan applications", err)
	}
	return result, nil
}

func scanApplication(s scannable) (model.LoanApplication, error) {
	var (
		id, fullName, pan, aadhaar string
		dateOfBirth                time.Time
		state, pincode, email      string
		monthlyIncome, loanAmount  decimal.Decimal
		mobile                     string
		tenureYears                int
		createdAt                  time.Time
	)

	err := s.Scan(
		&id, &fullName, &pan, &aadhaar, &dateOfBirth, &state, &pincode,
		&email, &monthlyIncome, &mobile, &loanAmount, &tenureYears, &createdAt,
	)
	if err != nil {
		return model.LoanApplication{}, err
	}

	return model.ReconstructLoanApplication(id, model.ApplicantDetails{
		FullName:      fullName,
		PAN:           valueobject.ReconstructPAN(pan),
		Aadhaar:       valueobject.ReconstructAadhaar(aadhaar),
		DateOfBirth:   dateOfBirth,
		State:         state,
		Pincode:       valueobject.ReconstructPincode(pincode),
		Email:         valueobject.ReconstructEmail(email),
		MonthlyIncome: money.Rupees(monthlyIncome),
		Mobile:        valueobject.ReconstructMobile(mobile),
		LoanAmount:    money.Rupees(loanAmount),
		TenureYears:   tenureYears,
	}, createdAt), nil
}
