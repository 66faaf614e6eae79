package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bibbank/loanintake/internal/application/dto"
	"github.com/bibbank/loanintake/internal/domain/port"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
	"github.com/bibbank/loanintake/pkg/auth"
)

// NoDataMessage is reported when an export date has no applications.
const NoDataMessage = "No data for this date"

// ErrUnsupportedFormat is returned for an export format with no encoder.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ExportApplicationsUseCase renders one day of applications as a file.
type ExportApplicationsUseCase struct {
	authenticator port.AdminAuthenticator
	appRepo       port.LoanApplicationRepository
	encoders      map[string]port.ExportEncoder
	defaultFormat string
	location      *time.Location
	metrics       *Metrics
}

// NewExportApplicationsUseCase wires dependencies. The first encoder is the
// default format.
func NewExportApplicationsUseCase(
	authenticator port.AdminAuthenticator,
	appRepo port.LoanApplicationRepository,
	loc *time.Location,
	metrics *Metrics,
	encoders ...port.ExportEncoder,
) *ExportApplicationsUseCase {
	uc := &ExportApplicationsUseCase{
		authenticator: authenticator,
		appRepo:       appRepo,
		encoders:      make(map[string]port.ExportEncoder, len(encoders)),
		location:      loc,
		metrics:       metrics,
	}
	for i, enc := range encoders {
		if i == 0 {
			uc.defaultFormat = enc.Format()
		}
		uc.encoders[enc.Format()] = enc
	}
	return uc
}

// Execute checks the admin credential first, then the date. A request
// already carrying admin claims in ctx skips the password check. An empty
// day is reported with Empty set, not as an error.
func (uc *ExportApplicationsUseCase) Execute(ctx context.Context, req dto.ExportRequest) (dto.ExportResponse, error) {
	ctx, span := tracer.Start(ctx, "ExportApplications")
	defer span.End()

	// 1. Authorize.
	if err := uc.authorize(ctx, req.Password); err != nil {
		return dto.ExportResponse{}, err
	}

	// 2. Resolve the day window and encoder.
	window, err := valueobject.NewDayWindow(req.Date, uc.location)
	if err != nil {
		return dto.ExportResponse{}, err
	}
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = uc.defaultFormat
	}
	encoder, ok := uc.encoders[format]
	if !ok {
		return dto.ExportResponse{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, req.Format)
	}
	span.SetAttributes(attribute.String("date", window.Date()), attribute.String("format", format))

	// 3. Load the day, oldest first.
	apps, err := uc.appRepo.List(ctx, port.ListFilter{Window: window, Order: port.OldestFirst})
	if err != nil {
		return dto.ExportResponse{}, fmt.Errorf("load applications: %w", err)
	}
	if len(apps) == 0 {
		uc.metrics.recordExport(ctx, format, true)
		return dto.ExportResponse{Empty: true, Message: NoDataMessage}, nil
	}

	// 4. Encode.
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, apps); err != nil {
		return dto.ExportResponse{}, fmt.Errorf("encode %s export: %w", format, err)
	}
	uc.metrics.recordExport(ctx, format, false)

	return dto.ExportResponse{
		Filename:    fmt.Sprintf("loan-%s.%s", window.Date(), format),
		ContentType: encoder.ContentType(),
		Data:        buf.Bytes(),
		Count:       len(apps),
	}, nil
}

func (uc *ExportApplicationsUseCase) authorize(ctx context.Context, password string) error {
	if claims, ok := auth.ClaimsFromContext(ctx); ok && claims.HasRole(auth.RoleAdmin) {
		return nil
	}
	return uc.authenticator.Authenticate(ctx, password)
}
