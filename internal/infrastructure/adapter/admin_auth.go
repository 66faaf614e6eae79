package adapter

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/pkg/auth"
)

// ---------------------------------------------------------------------------
// Admin credential and session adapters
// ---------------------------------------------------------------------------

// SharedSecretAuthenticator implements port.AdminAuthenticator against one
// configured password. The comparison is constant-time.
type SharedSecretAuthenticator struct {
	secret []byte
}

// NewSharedSecretAuthenticator refuses an empty secret, which would
// otherwise accept an empty credential.
func NewSharedSecretAuthenticator(secret string) (*SharedSecretAuthenticator, error) {
	if secret == "" {
		return nil, errors.New("admin secret must not be empty")
	}
	return &SharedSecretAuthenticator{secret: []byte(secret)}, nil
}

func (a *SharedSecretAuthenticator) Authenticate(_ context.Context, credential string) error {
	if subtle.ConstantTimeCompare([]byte(credential), a.secret) != 1 {
		return model.ErrUnauthorized
	}
	return nil
}

// JWTSessionIssuer implements port.SessionIssuer with pkg/auth tokens
// carrying the admin role.
type JWTSessionIssuer struct {
	jwt *auth.JWTService
}

func NewJWTSessionIssuer(jwt *auth.JWTService) *JWTSessionIssuer {
	return &JWTSessionIssuer{jwt: jwt}
}

func (i *JWTSessionIssuer) IssueAdminSession(subject string) (string, time.Time, error) {
	return i.jwt.GenerateToken(subject, []string{auth.RoleAdmin})
}
