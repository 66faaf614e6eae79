package usecase_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loanintake/internal/application/dto"
	"github.com/bibbank/loanintake/internal/application/usecase"
	"github.com/bibbank/loanintake/internal/domain/event"
	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/port"
	"github.com/bibbank/loanintake/internal/domain/port/mocks"
	"github.com/bibbank/loanintake/internal/domain/service"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
	"github.com/bibbank/loanintake/pkg/auth"
)

func storedApplication(t *testing.T, id string, createdAt time.Time) model.LoanApplication {
	t.Helper()
	validator := service.NewApplicationValidator(service.DefaultValidationRules())
	details, err := validator.Build(usecase.ToApplicationInput(validSubmitRequest()), fixedNow)
	require.NoError(t, err)
	return model.ReconstructLoanApplication(id, details, createdAt)
}

func adminContext() context.Context {
	return auth.ContextWithClaims(context.Background(), &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ops-desk"},
		Roles:            []string{auth.RoleAdmin},
	})
}

func TestListApplications(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockLoanApplicationRepository(ctrl)
	uc := usecase.NewListApplicationsUseCase(repo, time.UTC)

	t.Run("all applications newest first", func(t *testing.T) {
		apps := []model.LoanApplication{
			storedApplication(t, "b", fixedNow),
			storedApplication(t, "a", fixedNow.Add(-time.Hour)),
		}
		repo.EXPECT().
			List(gomock.Any(), port.ListFilter{Order: port.NewestFirst}).
			Return(apps, nil)

		resp, err := uc.Execute(context.Background(), dto.ListApplicationsRequest{})
		require.NoError(t, err)
		require.Equal(t, 2, resp.Count)
		assert.Equal(t, "b", resp.Applications[0].ID)
		assert.Equal(t, "ABCDE1234F", resp.Applications[0].PAN)
		assert.Equal(t, "1994-07-12", resp.Applications[0].DateOfBirth)
		assert.Equal(t, 5, resp.Applications[0].TenureYears)
	})

	t.Run("filtered by day", func(t *testing.T) {
		window, err := valueobject.NewDayWindow("2026-03-04", time.UTC)
		require.NoError(t, err)
		repo.EXPECT().
			List(gomock.Any(), port.ListFilter{Window: window, Order: port.NewestFirst}).
			Return(nil, nil)

		resp, err := uc.Execute(context.Background(), dto.ListApplicationsRequest{Date: "2026-03-04"})
		require.NoError(t, err)
		assert.Zero(t, resp.Count)
		assert.NotNil(t, resp.Applications)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), dto.ListApplicationsRequest{Date: "04/03/2026"})
		assert.ErrorIs(t, err, valueobject.ErrInvalidDate)
	})
}

func TestDeleteApplication(t *testing.T) {
	const appID = "00000000-0000-0000-0000-000000000001"

	t.Run("deletes and publishes with the caller as actor", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockLoanApplicationRepository(ctrl)
		pub := mocks.NewMockEventPublisher(ctrl)

		repo.EXPECT().Delete(gomock.Any(), appID).Return(nil)
		pub.EXPECT().Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, evts ...event.DomainEvent) error {
				require.Len(t, evts, 1)
				deleted, ok := evts[0].(event.LoanApplicationDeleted)
				require.True(t, ok)
				assert.Equal(t, appID, deleted.AggregateID())
				assert.Equal(t, "ops-desk", deleted.DeletedBy)
				return nil
			})

		uc := usecase.NewDeleteApplicationUseCase(repo, pub, discardLogger())
		require.NoError(t, uc.Execute(adminContext(), dto.DeleteApplicationRequest{ID: appID}))
	})

	t.Run("unknown id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockLoanApplicationRepository(ctrl)
		pub := mocks.NewMockEventPublisher(ctrl)

		repo.EXPECT().Delete(gomock.Any(), appID).Return(model.ErrApplicationNotFound)

		uc := usecase.NewDeleteApplicationUseCase(repo, pub, discardLogger())
		err := uc.Execute(context.Background(), dto.DeleteApplicationRequest{ID: appID})
		assert.ErrorIs(t, err, model.ErrApplicationNotFound)
	})

	malformed := []struct {
		name string
		id   string
	}{
		{"empty id", ""},
		{"not a uuid", "not-a-uuid"},
		{"sql fragment", "1; DROP TABLE loan_applications"},
	}
	for _, tc := range malformed {
		t.Run(tc.name+" never reaches the store", func(t *testing.T) {
			ctrl := gomock.NewController(t)
			uc := usecase.NewDeleteApplicationUseCase(
				mocks.NewMockLoanApplicationRepository(ctrl), mocks.NewMockEventPublisher(ctrl), discardLogger())
			err := uc.Execute(context.Background(), dto.DeleteApplicationRequest{ID: tc.id})
			assert.ErrorIs(t, err, model.ErrApplicationNotFound)
			assert.NotErrorIs(t, err, model.ErrStoreUnavailable)
		})
	}
}

func TestDeleteApplicationsByDate(t *testing.T) {
	t.Run("purges the day and publishes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockLoanApplicationRepository(ctrl)
		pub := mocks.NewMockEventPublisher(ctrl)

		repo.EXPECT().DeleteCreatedBetween(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, w valueobject.DayWindow) (int64, error) {
				assert.Equal(t, "2026-03-04", w.Date())
				assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), w.Start())
				return 3, nil
			})
		pub.EXPECT().Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, evts ...event.DomainEvent) error {
				purged := evts[0].(event.LoanApplicationsPurged)
				assert.Equal(t, int64(3), purged.Count)
				assert.Equal(t, "2026-03-04", purged.AggregateID())
				return nil
			})

		uc := usecase.NewDeleteApplicationsByDateUseCase(repo, pub, time.UTC, discardLogger())
		resp, err := uc.Execute(adminContext(), dto.DeleteApplicationsByDateRequest{Date: "2026-03-04"})
		require.NoError(t, err)
		assert.Equal(t, dto.DeleteApplicationsResponse{Date: "2026-03-04", Deleted: 3}, resp)
	})

	t.Run("empty day publishes nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockLoanApplicationRepository(ctrl)
		pub := mocks.NewMockEventPublisher(ctrl)
		repo.EXPECT().DeleteCreatedBetween(gomock.Any(), gomock.Any()).Return(int64(0), nil)

		uc := usecase.NewDeleteApplicationsByDateUseCase(repo, pub, time.UTC, discardLogger())
		resp, err := uc.Execute(context.Background(), dto.DeleteApplicationsByDateRequest{Date: "2026-03-05"})
		require.NoError(t, err)
		assert.Zero(t, resp.Deleted)
	})

	t.Run("store failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockLoanApplicationRepository(ctrl)
		repo.EXPECT().DeleteCreatedBetween(gomock.Any(), gomock.Any()).Return(int64(0), model.ErrStoreUnavailable)

		uc := usecase.NewDeleteApplicationsByDateUseCase(repo, mocks.NewMockEventPublisher(ctrl), time.UTC, discardLogger())
		_, err := uc.Execute(context.Background(), dto.DeleteApplicationsByDateRequest{Date: "2026-03-05"})
		assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	})
}

func newExportFixture(t *testing.T) (*mocks.MockAdminAuthenticator, *mocks.MockLoanApplicationRepository, *mocks.MockExportEncoder, *usecase.ExportApplicationsUseCase) {
	ctrl := gomock.NewController(t)
	authn := mocks.NewMockAdminAuthenticator(ctrl)
	repo := mocks.NewMockLoanApplicationRepository(ctrl)
	enc := mocks.NewMockExportEncoder(ctrl)
	enc.EXPECT().Format().Return("xlsx").AnyTimes()
	uc := usecase.NewExportApplicationsUseCase(authn, repo, time.UTC, usecase.NoopMetrics(), enc)
	return authn, repo, enc, uc
}

func TestExportApplications(t *testing.T) {
	t.Run("renders the day oldest first", func(t *testing.T) {
		authn, repo, enc, uc := newExportFixture(t)
		apps := []model.LoanApplication{storedApplication(t, "a", fixedNow)}

		authn.EXPECT().Authenticate(gomock.Any(), "s3cret").Return(nil)
		repo.EXPECT().List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f port.ListFilter) ([]model.LoanApplication, error) {
				assert.Equal(t, port.OldestFirst, f.Order)
				assert.Equal(t, "2026-03-04", f.Window.Date())
				return apps, nil
			})
		enc.EXPECT().Encode(gomock.Any(), apps).
			DoAndReturn(func(w io.Writer, _ []model.LoanApplication) error {
				_, err := w.Write([]byte("sheet"))
				return err
			})
		enc.EXPECT().ContentType().Return("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

		resp, err := uc.Execute(context.Background(), dto.ExportRequest{Password: "s3cret", Date: "2026-03-04"})
		require.NoError(t, err)
		assert.Equal(t, "loan-2026-03-04.xlsx", resp.Filename)
		assert.Equal(t, []byte("sheet"), resp.Data)
		assert.Equal(t, 1, resp.Count)
		assert.False(t, resp.Empty)
	})

	t.Run("wrong password is checked before the date", func(t *testing.T) {
		authn, _, _, uc := newExportFixture(t)
		authn.EXPECT().Authenticate(gomock.Any(), "nope").Return(model.ErrUnauthorized)

		_, err := uc.Execute(context.Background(), dto.ExportRequest{Password: "nope", Date: "garbage"})
		assert.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("invalid date", func(t *testing.T) {
		authn, _, _, uc := newExportFixture(t)
		authn.EXPECT().Authenticate(gomock.Any(), gomock.Any()).Return(nil)

		_, err := uc.Execute(context.Background(), dto.ExportRequest{Password: "s3cret", Date: "2026-13-01"})
		assert.ErrorIs(t, err, valueobject.ErrInvalidDate)
	})

	t.Run("empty day", func(t *testing.T) {
		authn, repo, _, uc := newExportFixture(t)
		authn.EXPECT().Authenticate(gomock.Any(), gomock.Any()).Return(nil)
		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)

		resp, err := uc.Execute(context.Background(), dto.ExportRequest{Password: "s3cret", Date: "2026-03-04"})
		require.NoError(t, err)
		assert.True(t, resp.Empty)
		assert.Equal(t, usecase.NoDataMessage, resp.Message)
		assert.Nil(t, resp.Data)
	})

	t.Run("admin session skips the password", func(t *testing.T) {
		_, repo, _, uc := newExportFixture(t)
		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)

		resp, err := uc.Execute(adminContext(), dto.ExportRequest{Date: "2026-03-04"})
		require.NoError(t, err)
		assert.True(t, resp.Empty)
	})

	t.Run("unsupported format", func(t *testing.T) {
		authn, _, _, uc := newExportFixture(t)
		authn.EXPECT().Authenticate(gomock.Any(), gomock.Any()).Return(nil)

		_, err := uc.Execute(context.Background(), dto.ExportRequest{Password: "s3cret", Date: "2026-03-04", Format: "pdf"})
		assert.ErrorIs(t, err, usecase.ErrUnsupportedFormat)
	})

	t.Run("encoder failure", func(t *testing.T) {
		authn, repo, enc, uc := newExportFixture(t)
		authn.EXPECT().Authenticate(gomock.Any(), gomock.Any()).Return(nil)
		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]model.LoanApplication{storedApplication(t, "a", fixedNow)}, nil)
		enc.EXPECT().Encode(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := uc.Execute(context.Background(), dto.ExportRequest{Password: "s3cret", Date: "2026-03-04"})
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestAdminLogin(t *testing.T) {
	t.Run("issues a session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		authn := mocks.NewMockAdminAuthenticator(ctrl)
		issuer := mocks.NewMockSessionIssuer(ctrl)
		expires := fixedNow.Add(time.Hour)

		authn.EXPECT().Authenticate(gomock.Any(), "s3cret").Return(nil)
		issuer.EXPECT().IssueAdminSession("admin").Return("tok", expires, nil)

		resp, err := usecase.NewAdminLoginUseCase(authn, issuer).
			Execute(context.Background(), dto.AdminLoginRequest{Password: "s3cret"})
		require.NoError(t, err)
		assert.Equal(t, "tok", resp.Token)
		assert.Equal(t, expires, resp.ExpiresAt)
	})

	t.Run("wrong password issues nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		authn := mocks.NewMockAdminAuthenticator(ctrl)
		authn.EXPECT().Authenticate(gomock.Any(), gomock.Any()).Return(model.ErrUnauthorized)

		_, err := usecase.NewAdminLoginUseCase(authn, mocks.NewMockSessionIssuer(ctrl)).
			Execute(context.Background(), dto.AdminLoginRequest{Password: "x"})
		assert.ErrorIs(t, err, model.ErrUnauthorized)
	})
}

