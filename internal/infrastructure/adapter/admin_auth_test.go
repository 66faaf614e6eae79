package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/pkg/auth"
)

func TestSharedSecretAuthenticator(t *testing.T) {
	_, err := NewSharedSecretAuthenticator("")
	require.Error(t, err)

	a, err := NewSharedSecretAuthenticator("s3cret")
	require.NoError(t, err)

	ctx := context.Background()
	assert.NoError(t, a.Authenticate(ctx, "s3cret"))
	for _, bad := range []string{"", "s3cre", "s3cret ", "S3CRET"} {
		assert.ErrorIs(t, a.Authenticate(ctx, bad), model.ErrUnauthorized, bad)
	}
}

func TestJWTSessionIssuer(t *testing.T) {
	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: "k", Issuer: "loan-intake", Expiration: time.Hour})
	require.NoError(t, err)

	token, expiresAt, err := NewJWTSessionIssuer(svc).IssueAdminSession("admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.True(t, claims.HasRole(auth.RoleAdmin))
}
