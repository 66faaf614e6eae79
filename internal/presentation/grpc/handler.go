package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/loanintake/internal/application/dto"
	"github.com/bibbank/loanintake/internal/application/usecase"
	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
)

// IntakeHandler implements IntakeServiceServer on top of the use cases.
type IntakeHandler struct {
	UnimplementedIntakeServiceServer

	uc     usecase.UseCases
	logger *slog.Logger
}

// NewIntakeHandler creates the gRPC handler.
func NewIntakeHandler(uc usecase.UseCases, logger *slog.Logger) *IntakeHandler {
	return &IntakeHandler{uc: uc, logger: logger}
}

func (h *IntakeHandler) QuoteEMI(ctx context.Context, req *dto.QuoteEMIRequest) (*dto.EMIQuoteResponse, error) {
	resp, err := h.uc.Quote.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &resp, nil
}

func (h *IntakeHandler) SubmitApplication(ctx context.Context, req *dto.SubmitApplicationRequest) (*dto.SubmitApplicationResponse, error) {
	resp, err := h.uc.Submit.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &resp, nil
}

func (h *IntakeHandler) AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	resp, err := h.uc.AdminLogin.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &resp, nil
}

func (h *IntakeHandler) ListApplications(ctx context.Context, req *dto.ListApplicationsRequest) (*dto.ListApplicationsResponse, error) {
	resp, err := h.uc.List.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &resp, nil
}

func (h *IntakeHandler) DeleteApplication(ctx context.Context, req *dto.DeleteApplicationRequest) (*DeleteApplicationResponse, error) {
	if err := h.uc.Delete.Execute(ctx, *req); err != nil {
		return nil, h.toStatus(err)
	}
	return &DeleteApplicationResponse{ID: req.ID, Deleted: true}, nil
}

func (h *IntakeHandler) DeleteApplicationsByDate(
	ctx context.Context,
	req *dto.DeleteApplicationsByDateRequest,
) (*dto.DeleteApplicationsResponse, error) {
	resp, err := h.uc.DeleteDay.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &resp, nil
}

// ExportApplications returns OK with Empty set for a day with no
// applications.
func (h *IntakeHandler) ExportApplications(ctx context.Context, req *dto.ExportRequest) (*dto.ExportResponse, error) {
	resp, err := h.uc.Export.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &resp, nil
}

// toStatus maps use-case errors onto gRPC status codes. Field errors travel
// in the message as "field: message" pairs.
func (h *IntakeHandler) toStatus(err error) error {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		h.logger.Debug("application rejected", "fields", len(verr.Fields))
		return status.Error(codes.InvalidArgument, verr.Error())
	case errors.Is(err, model.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "invalid credential")
	case errors.Is(err, model.ErrApplicationNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, model.ErrInvalidTerms),
		errors.Is(err, valueobject.ErrInvalidDate),
		errors.Is(err, usecase.ErrUnsupportedFormat):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrStoreUnavailable):
		h.logger.Error("store unavailable", "error", err)
		return status.Error(codes.Unavailable, "service unavailable")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
