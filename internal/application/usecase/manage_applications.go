package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/loanintake/internal/application/dto"
	"github.com/bibbank/loanintake/internal/domain/event"
	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/port"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
	"github.com/bibbank/loanintake/pkg/auth"
)

// ---------------------------------------------------------------------------
// ListApplicationsUseCase
// ---------------------------------------------------------------------------

// ListApplicationsUseCase lists stored applications, newest first.
type ListApplicationsUseCase struct {
	appRepo  port.LoanApplicationRepository
	location *time.Location
}

// NewListApplicationsUseCase wires dependencies. Date filters are
// interpreted in loc.
func NewListApplicationsUseCase(appRepo port.LoanApplicationRepository, loc *time.Location) *ListApplicationsUseCase {
	return &ListApplicationsUseCase{appRepo: appRepo, location: loc}
}

// Execute returns every application, or only those created on req.Date.
func (uc *ListApplicationsUseCase) Execute(
	ctx context.Context,
	req dto.ListApplicationsRequest,
) (dto.ListApplicationsResponse, error) {
	filter := port.ListFilter{Order: port.NewestFirst}
	if req.Date != "" {
		window, err := valueobject.NewDayWindow(req.Date, uc.location)
		if err != nil {
			return dto.ListApplicationsResponse{}, err
		}
		filter.Window = window
	}

	apps, err := uc.appRepo.List(ctx, filter)
	if err != nil {
		return dto.ListApplicationsResponse{}, fmt.Errorf("list applications: %w", err)
	}

	out := make([]dto.ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toApplicationResponse(app))
	}
	return dto.ListApplicationsResponse{Applications: out, Count: len(out)}, nil
}

// ---------------------------------------------------------------------------
// DeleteApplicationUseCase
// ---------------------------------------------------------------------------

// DeleteApplicationUseCase removes one application by id.
type DeleteApplicationUseCase struct {
	appRepo   port.LoanApplicationRepository
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewDeleteApplicationUseCase wires dependencies.
func NewDeleteApplicationUseCase(
	appRepo port.LoanApplicationRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *DeleteApplicationUseCase {
	return &DeleteApplicationUseCase{appRepo: appRepo, publisher: publisher, logger: logger}
}

// Execute deletes the application. Unknown or malformed ids yield
// model.ErrApplicationNotFound.
func (uc *DeleteApplicationUseCase) Execute(ctx context.Context, req dto.DeleteApplicationRequest) error {
	if _, err := uuid.Parse(req.ID); err != nil {
		return fmt.Errorf("delete application %q: %w", req.ID, model.ErrApplicationNotFound)
	}
	if err := uc.appRepo.Delete(ctx, req.ID); err != nil {
		return fmt.Errorf("delete application: %w", err)
	}

	actor := actorFromContext(ctx)
	uc.logger.Info("application deleted", "application_id", req.ID, "actor", actor)
	evt := event.NewLoanApplicationDeleted(req.ID, actor, time.Now())
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		uc.logger.Error("publish delete event failed", "application_id", req.ID, "error", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// DeleteApplicationsByDateUseCase
// ---------------------------------------------------------------------------

// DeleteApplicationsByDateUseCase removes every application of one day.
type DeleteApplicationsByDateUseCase struct {
	appRepo   port.LoanApplicationRepository
	publisher port.EventPublisher
	location  *time.Location
	logger    *slog.Logger
}

// NewDeleteApplicationsByDateUseCase wires dependencies.
func NewDeleteApplicationsByDateUseCase(
	appRepo port.LoanApplicationRepository,
	publisher port.EventPublisher,
	loc *time.Location,
	logger *slog.Logger,
) *DeleteApplicationsByDateUseCase {
	return &DeleteApplicationsByDateUseCase{appRepo: appRepo, publisher: publisher, location: loc, logger: logger}
}

// Execute purges the full-day window of req.Date and reports the count.
// A purge that removes nothing publishes no event.
func (uc *DeleteApplicationsByDateUseCase) Execute(
	ctx context.Context,
	req dto.DeleteApplicationsByDateRequest,
) (dto.DeleteApplicationsResponse, error) {
	window, err := valueobject.NewDayWindow(req.Date, uc.location)
	if err != nil {
		return dto.DeleteApplicationsResponse{}, err
	}

	n, err := uc.appRepo.DeleteCreatedBetween(ctx, window)
	if err != nil {
		return dto.DeleteApplicationsResponse{}, fmt.Errorf("delete applications: %w", err)
	}

	if n > 0 {
		actor := actorFromContext(ctx)
		uc.logger.Info("applications purged", "date", window.Date(), "count", n, "actor", actor)
		evt := event.NewLoanApplicationsPurged(window.Date(), n, actor, time.Now())
		if err := uc.publisher.Publish(ctx, evt); err != nil {
			uc.logger.Error("publish purge event failed", "date", window.Date(), "error", err)
		}
	}
	return dto.DeleteApplicationsResponse{Date: window.Date(), Deleted: n}, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func actorFromContext(ctx context.Context) string {
	if claims, ok := auth.ClaimsFromContext(ctx); ok && claims.Subject != "" {
		return claims.Subject
	}
	return "admin"
}

func toApplicationResponse(app model.LoanApplication) dto.ApplicationResponse {
	return dto.ApplicationResponse{
		ID:            app.ID(),
		FullName:      app.FullName(),
		PAN:           app.PAN().String(),
		Aadhaar:       app.Aadhaar().String(),
		DateOfBirth:   app.DateOfBirth().Format(valueobject.DateLayout),
		State:         app.State(),
		Pincode:       app.Pincode().String(),
		Email:         app.Email().String(),
		Mobile:        app.Mobile().String(),
		MonthlyIncome: app.MonthlyIncome().Amount(),
		LoanAmount:    app.LoanAmount().Amount(),
		TenureYears:   app.TenureYears(),
		CreatedAt:     app.CreatedAt(),
	}
}
