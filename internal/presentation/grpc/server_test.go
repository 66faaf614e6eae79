package grpc

import (
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bibbank/loanintake/internal/application/dto"
	"github.com/bibbank/loanintake/internal/application/usecase"
	"github.com/bibbank/loanintake/internal/domain/service"
	"github.com/bibbank/loanintake/internal/infrastructure/adapter"
	"github.com/bibbank/loanintake/internal/infrastructure/cache"
	"github.com/bibbank/loanintake/internal/infrastructure/export"
	"github.com/bibbank/loanintake/internal/infrastructure/messaging"
	"github.com/bibbank/loanintake/internal/infrastructure/persistence/memory"
	"github.com/bibbank/loanintake/pkg/auth"
	"github.com/bibbank/loanintake/pkg/testutil"
	"github.com/bibbank/loanintake/pkg/tlsutil"
)

const adminPassword = "letmein"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serverFixture struct {
	server *Server
	jwt    *auth.JWTService
}

func newServerFixture(t *testing.T, cfg ServerConfig) *serverFixture {
	t.Helper()
	logger := discardLogger()
	repo := memory.NewLoanApplicationRepo()
	pub := messaging.NewLogEventPublisher(logger)

	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret-key", Issuer: "test", Expiration: time.Hour})
	require.NoError(t, err)
	authenticator, err := adapter.NewSharedSecretAuthenticator(adminPassword)
	require.NoError(t, err)

	rules := service.DefaultValidationRules()
	rules.Location = testutil.IST
	validator := service.NewApplicationValidator(rules)

	uc := usecase.UseCases{
		Quote: usecase.NewCalculateEMIUseCase(cache.Noop{}, usecase.DefaultQuoteLimits(), logger),
		Submit: usecase.NewSubmitLoanApplicationUseCase(repo, pub, validator, usecase.NoopMetrics(), logger).
			WithClock(func() time.Time { return testutil.Now }),
		List:      usecase.NewListApplicationsUseCase(repo, testutil.IST),
		Delete:    usecase.NewDeleteApplicationUseCase(repo, pub, logger),
		DeleteDay: usecase.NewDeleteApplicationsByDateUseCase(repo, pub, testutil.IST, logger),
		Export: usecase.NewExportApplicationsUseCase(authenticator, repo, testutil.IST, usecase.NoopMetrics(),
			export.NewXLSXEncoder(testutil.IST), export.NewCSVEncoder(testutil.IST)),
		AdminLogin: usecase.NewAdminLoginUseCase(authenticator, adapter.NewJWTSessionIssuer(jwtSvc)),
	}

	cfg.ServiceName = "loan-intake"
	srv, err := NewServer(NewIntakeHandler(uc, logger), logger, jwtSvc, cfg)
	require.NoError(t, err)
	return &serverFixture{server: srv, jwt: jwtSvc}
}

func startBufconn(t *testing.T, f *serverFixture) *grpclib.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	go func() { _ = f.server.ServeListener(lis) }()
	t.Cleanup(f.server.GracefulStop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func validApplication() *dto.SubmitApplicationRequest {
	return &dto.SubmitApplicationRequest{
		FullName:      "Priya Sharma",
		PAN:           "ABCDE1234F",
		Aadhaar:       "123412341234",
		DateOfBirth:   "1994-07-12",
		State:         "Karnataka",
		Pincode:       "560001",
		Email:         "priya.sharma@gmail.com",
		Mobile:        "+919876543210",
		MonthlyIncome: "55000",
		LoanAmount:    "300000",
		TenureYears:   "5",
	}
}

func TestIntakeService(t *testing.T) {
	f := newServerFixture(t, ServerConfig{})
	conn := startBufconn(t, f)
	client := NewIntakeServiceClient(conn)
	ctx := context.Background()

	t.Run("health", func(t *testing.T) {
		resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	})

	t.Run("quote", func(t *testing.T) {
		resp, err := client.QuoteEMI(ctx, &dto.QuoteEMIRequest{
			Principal:         decimal.NewFromInt(200000),
			AnnualRatePercent: decimal.RequireFromString("9.5"),
			TenureYears:       5,
		})
		require.NoError(t, err)
		assert.True(t, resp.MonthlyPayment.Equal(decimal.NewFromInt(4200)))
		assert.Len(t, resp.Schedule, 12)
	})

	t.Run("quote out of range", func(t *testing.T) {
		_, err := client.QuoteEMI(ctx, &dto.QuoteEMIRequest{
			Principal:         decimal.NewFromInt(100),
			AnnualRatePercent: decimal.NewFromInt(10),
			TenureYears:       5,
		})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	var submitted *dto.SubmitApplicationResponse
	t.Run("submit", func(t *testing.T) {
		var err error
		submitted, err = client.SubmitApplication(ctx, validApplication())
		require.NoError(t, err)
		assert.NotEmpty(t, submitted.ID)
		assert.Equal(t, usecase.SubmittedMessage, submitted.Message)
	})

	t.Run("submit invalid", func(t *testing.T) {
		req := validApplication()
		req.Pincode = "12345"
		_, err := client.SubmitApplication(ctx, req)
		require.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), "pincode")
	})

	t.Run("admin methods need a token", func(t *testing.T) {
		_, err := client.ListApplications(ctx, &dto.ListApplicationsRequest{})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))

		viewer, _, err := f.jwt.GenerateToken("viewer", []string{"viewer"})
		require.NoError(t, err)
		_, err = client.ListApplications(withToken(ctx, viewer), &dto.ListApplicationsRequest{})
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("wrong admin password", func(t *testing.T) {
		_, err := client.AdminLogin(ctx, &dto.AdminLoginRequest{Password: "nope"})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	login, err := client.AdminLogin(ctx, &dto.AdminLoginRequest{Password: adminPassword})
	require.NoError(t, err)
	adminCtx := withToken(ctx, login.Token)

	t.Run("list", func(t *testing.T) {
		resp, err := client.ListApplications(adminCtx, &dto.ListApplicationsRequest{Date: "2026-03-04"})
		require.NoError(t, err)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, submitted.ID, resp.Applications[0].ID)
	})

	t.Run("export", func(t *testing.T) {
		resp, err := client.ExportApplications(ctx, &dto.ExportRequest{Password: adminPassword, Date: "2026-03-04", Format: "csv"})
		require.NoError(t, err)
		assert.False(t, resp.Empty)
		assert.Equal(t, "loan-2026-03-04.csv", resp.Filename)
		assert.Equal(t, 1, resp.Count)
		assert.NotEmpty(t, resp.Data)
	})

	t.Run("export empty day is not an error", func(t *testing.T) {
		resp, err := client.ExportApplications(ctx, &dto.ExportRequest{Password: adminPassword, Date: "2026-03-05"})
		require.NoError(t, err)
		assert.True(t, resp.Empty)
		assert.Equal(t, usecase.NoDataMessage, resp.Message)
	})

	t.Run("export wrong password", func(t *testing.T) {
		_, err := client.ExportApplications(ctx, &dto.ExportRequest{Password: "guess", Date: "2026-03-04"})
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("export bad date", func(t *testing.T) {
		_, err := client.ExportApplications(ctx, &dto.ExportRequest{Password: adminPassword, Date: "yesterday"})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("delete", func(t *testing.T) {
		resp, err := client.DeleteApplication(adminCtx, &dto.DeleteApplicationRequest{ID: submitted.ID})
		require.NoError(t, err)
		assert.True(t, resp.Deleted)

		_, err = client.DeleteApplication(adminCtx, &dto.DeleteApplicationRequest{ID: submitted.ID})
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("delete by date", func(t *testing.T) {
		_, err := client.SubmitApplication(ctx, validApplication())
		require.NoError(t, err)
		_, err = client.SubmitApplication(ctx, validApplication())
		require.NoError(t, err)

		resp, err := client.DeleteApplicationsByDate(adminCtx, &dto.DeleteApplicationsByDateRequest{Date: "2026-03-04"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Deleted)
	})
}

func TestIntakeService_TLS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, tlsutil.GenerateSelfSignedCert([]string{"127.0.0.1"}, dir))

	f := newServerFixture(t, ServerConfig{
		CertFile: filepath.Join(dir, tlsutil.ServerFile),
		KeyFile:  filepath.Join(dir, tlsutil.ServerKeyFile),
	})
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = f.server.ServeListener(lis) }()
	t.Cleanup(f.server.GracefulStop)

	creds, err := tlsutil.ClientTLSConfig(filepath.Join(dir, tlsutil.CAFile), false)
	require.NoError(t, err)
	conn, err := grpclib.NewClient(lis.Addr().String(), grpclib.WithTransportCredentials(creds))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := NewIntakeServiceClient(conn).QuoteEMI(ctx, &dto.QuoteEMIRequest{
		Principal:         decimal.NewFromInt(120000),
		AnnualRatePercent: decimal.Zero,
		TenureYears:       1,
	})
	require.NoError(t, err)
	assert.True(t, resp.MonthlyPayment.Equal(decimal.NewFromInt(10000)))
}

func TestNewServer_BadTLSFiles(t *testing.T) {
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "k", Expiration: time.Hour})
	require.NoError(t, err)
	_, err = NewServer(NewIntakeHandler(usecase.UseCases{}, discardLogger()), discardLogger(), jwtSvc,
		ServerConfig{CertFile: "missing.pem", KeyFile: "missing-key.pem"})
	assert.Error(t, err)
}
