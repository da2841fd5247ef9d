package services

import (
	"context"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/internal/models"
	apperrors "github.com/akademi/edutrack/pkg/errors"
	"github.com/akademi/edutrack/pkg/metrics"
)

const authTestSecret = "auth-service-test-secret-32-bytes!!!"

func newAuthService(t *testing.T, env *serviceTestEnv) (*AuthService, *auth.TokenService) {
	t.Helper()

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: authTestSecret, TTL: time.Hour})
	require.NoError(t, err)

	svc, err := NewAuthService(env.db, tokens, env.activity)
	require.NoError(t, err)
	return svc, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	env := newServiceTestEnv(t)
	svc, tokens := newAuthService(t, env)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		FullName: "Programme Owner",
		Email:    "Owner@Akademi.org",
		Password: "secret123!",
		Role:     models.RoleResponsible,
	})
	require.NoError(t, err)
	require.Equal(t, "owner@akademi.org", user.Email)
	require.True(t, user.IsActive)
	require.NotEqual(t, "secret123!", user.Password)

	result, err := svc.Login(ctx, "owner@akademi.org", "secret123!")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.NotNil(t, result.User.LastLoginAt)

	claims, err := tokens.Validate(result.Token)
	require.NoError(t, err)
	require.Equal(t, "owner@akademi.org", claims.Subject)
	require.Equal(t, "RESPONSIBLE", claims.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newServiceTestEnv(t)
	svc, _ := newAuthService(t, env)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{FullName: "A", Email: "dup@akademi.org", Password: "secret123!"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{FullName: "B", Email: "dup@akademi.org", Password: "secret123!"})
	require.Error(t, err)
	require.Equal(t, apperrors.ErrConflict.Code, apperrors.FromError(err).Code)
}

func TestRegisterValidatesInput(t *testing.T) {
	env := newServiceTestEnv(t)
	svc, _ := newAuthService(t, env)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{FullName: "A", Email: "", Password: "secret123!"})
	require.Error(t, err)

	_, err = svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@akademi.org", Password: "short"})
	require.Error(t, err)

	_, err = svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@akademi.org", Password: "secret123!", Role: "WIZARD"})
	require.Error(t, err)
}

func TestLoginFailures(t *testing.T) {
	env := newServiceTestEnv(t)
	svc, _ := newAuthService(t, env)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@akademi.org", Password: "secret123!"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@akademi.org", "wrong-password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@akademi.org", "secret123!")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, env.db.Model(user).Update("is_active", false).Error)
	_, err = svc.Login(ctx, "a@akademi.org", "secret123!")
	require.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestLoginCountsAuthAttempts(t *testing.T) {
	env := newServiceTestEnv(t)
	svc, _ := newAuthService(t, env)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{FullName: "A", Email: "metrics@akademi.org", Password: "secret123!"})
	require.NoError(t, err)

	successBefore := promtest.ToFloat64(metrics.AuthAttempts.WithLabelValues("success"))
	failureBefore := promtest.ToFloat64(metrics.AuthAttempts.WithLabelValues("failure"))

	_, err = svc.Login(ctx, "metrics@akademi.org", "secret123!")
	require.NoError(t, err)
	require.Equal(t, successBefore+1, promtest.ToFloat64(metrics.AuthAttempts.WithLabelValues("success")))

	_, err = svc.Login(ctx, "metrics@akademi.org", "wrong-password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	require.Equal(t, failureBefore+1, promtest.ToFloat64(metrics.AuthAttempts.WithLabelValues("failure")))
}
