package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/loanintake/internal/application/dto"
	"github.com/bibbank/loanintake/internal/domain/port"
)

// adminSubject is the token subject for sessions opened with the shared password.
const adminSubject = "admin"

// AdminLoginUseCase exchanges the shared admin password for a session token.
type AdminLoginUseCase struct {
	authenticator port.AdminAuthenticator
	issuer        port.SessionIssuer
}

// NewAdminLoginUseCase wires dependencies.
func NewAdminLoginUseCase(authenticator port.AdminAuthenticator, issuer port.SessionIssuer) *AdminLoginUseCase {
	return &AdminLoginUseCase{authenticator: authenticator, issuer: issuer}
}

// Execute returns model.ErrUnauthorized for a wrong password.
func (uc *AdminLoginUseCase) Execute(ctx context.Context, req dto.AdminLoginRequest) (dto.AdminLoginResponse, error) {
	if err := uc.authenticator.Authenticate(ctx, req.Password); err != nil {
		return dto.AdminLoginResponse{}, err
	}
	token, expiresAt, err := uc.issuer.IssueAdminSession(adminSubject)
	if err != nil {
		return dto.AdminLoginResponse{}, fmt.Errorf("issue admin session: %w", err)
	}
	return dto.AdminLoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}
