package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bibbank/loanintake/internal/application/dto"
	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/port"
	"github.com/bibbank/loanintake/internal/domain/service"
)

// SubmittedMessage is returned to the applicant on success.
const SubmittedMessage = "Application submitted successfully"

// SubmitLoanApplicationUseCase validates and stores a new application.
type SubmitLoanApplicationUseCase struct {
	appRepo   port.LoanApplicationRepository
	publisher port.EventPublisher
	validator *service.ApplicationValidator
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewSubmitLoanApplicationUseCase wires dependencies.
func NewSubmitLoanApplicationUseCase(
	appRepo port.LoanApplicationRepository,
	publisher port.EventPublisher,
	validator *service.ApplicationValidator,
	metrics *Metrics,
	logger *slog.Logger,
) *SubmitLoanApplicationUseCase {
	return &SubmitLoanApplicationUseCase{
		appRepo:   appRepo,
		publisher: publisher,
		validator: validator,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source. Used by tests that pin the date.
func (uc *SubmitLoanApplicationUseCase) WithClock(now func() time.Time) *SubmitLoanApplicationUseCase {
	uc.now = now
	return uc
}

// Execute validates the form, persists the application and publishes
// LoanApplicationSubmitted. Validation failures return *model.ValidationError
// and nothing is stored. The application is stored before events are
// published; a publish failure is logged and the submission still succeeds.
func (uc *SubmitLoanApplicationUseCase) Execute(
	ctx context.Context,
	req dto.SubmitApplicationRequest,
) (dto.SubmitApplicationResponse, error) {
	ctx, span := tracer.Start(ctx, "SubmitLoanApplication")
	defer span.End()

	now := uc.now().UTC()

	// 1. Validate every field.
	details, err := uc.validator.Build(ToApplicationInput(req), now)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			uc.metrics.recordValidationFailure(ctx, len(ve.Fields))
			uc.logger.Debug("application rejected", "fields", ve.Fields.String())
		}
		span.SetStatus(codes.Error, "validation failed")
		return dto.SubmitApplicationResponse{}, err
	}

	// 2. Create the aggregate.
	app, err := model.NewLoanApplication(details, now)
	if err != nil {
		return dto.SubmitApplicationResponse{}, fmt.Errorf("create application: %w", err)
	}
	span.SetAttributes(attribute.String("application_id", app.ID()))

	// 3. Persist.
	if err := uc.appRepo.Save(ctx, app); err != nil {
		uc.logger.Error("store application failed", "application_id", app.ID(), "error", err)
		span.SetStatus(codes.Error, "save failed")
		return dto.SubmitApplicationResponse{}, fmt.Errorf("save application: %w", err)
	}
	uc.metrics.recordSubmitted(ctx)

	// 4. Publish domain events.
	if err := uc.publisher.Publish(ctx, app.DomainEvents()...); err != nil {
		uc.logger.Error("publish application events failed", "application_id", app.ID(), "error", err)
	}

	return dto.SubmitApplicationResponse{
		ID:        app.ID(),
		Message:   SubmittedMessage,
		CreatedAt: app.CreatedAt(),
	}, nil
}

// ToApplicationInput converts the wire request into validator input.
func ToApplicationInput(req dto.SubmitApplicationRequest) service.ApplicationInput {
	return service.ApplicationInput{
		FullName:      req.FullName.String(),
		PAN:           req.PAN.String(),
		Aadhaar:       req.Aadhaar.String(),
		DateOfBirth:   req.DateOfBirth.String(),
		State:         req.State.String(),
		Pincode:       req.Pincode.String(),
		Email:         req.Email.String(),
		Mobile:        req.Mobile.String(),
		MonthlyIncome: req.MonthlyIncome.String(),
		LoanAmount:    req.LoanAmount.String(),
		TenureYears:   req.TenureYears.String(),
	}
}

// FromApplicationInput is the inverse of ToApplicationInput.
func FromApplicationInput(in service.ApplicationInput) dto.SubmitApplicationRequest {
	return dto.SubmitApplicationRequest{
		FullName:      dto.FlexString(in.FullName),
		PAN:           dto.FlexString(in.PAN),
		Aadhaar:       dto.FlexString(in.Aadhaar),
		DateOfBirth:   dto.FlexString(in.DateOfBirth),
		State:         dto.FlexString(in.State),
		Pincode:       dto.FlexString(in.Pincode),
		Email:         dto.FlexString(in.Email),
		Mobile:        dto.FlexString(in.Mobile),
		MonthlyIncome: dto.FlexString(in.MonthlyIncome),
		LoanAmount:    dto.FlexString(in.LoanAmount),
		TenureYears:   dto.FlexString(in.TenureYears),
	}
}
