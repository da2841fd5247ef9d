package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/akademi/edutrack/internal/database/testutil"
	"github.com/akademi/edutrack/internal/models"
)

func newTestResolver(t *testing.T) (*PrincipalResolver, *TokenService, *gorm.DB) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	tokens, err := NewTokenService(TokenConfig{Secret: testSecret, TTL: time.Hour})
	require.NoError(t, err)

	resolver, err := NewPrincipalResolver(db, tokens)
	require.NoError(t, err)

	return resolver, tokens, db
}

func TestResolveFromHeaderHappyPath(t *testing.T) {
	resolver, tokens, db := newTestResolver(t)

	role := models.Role{Name: "STAFF", Permissions: []models.Permission{{Module: "payment", Action: "view"}}}
	require.NoError(t, db.Create(&role).Error)

	responsible := models.Responsible{FullName: "Programme Owner", RoleID: &role.ID}
	require.NoError(t, db.Create(&responsible).Error)

	user := models.User{
		FullName:      "Programme Owner",
		Email:         "owner@akademi.org",
		Password:      "irrelevant",
		ResponsibleID: &responsible.ID,
		IsActive:      true,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := tokens.Issue(user.Email, "RESPONSIBLE")
	require.NoError(t, err)

	principal := resolver.ResolveFromHeader(context.Background(), "Bearer "+token)
	require.NotNil(t, principal)
	require.True(t, principal.Resolved())
	require.Equal(t, user.Email, principal.Email)
	require.NotNil(t, principal.UserID)
	require.Equal(t, user.ID, *principal.UserID)
	require.NotNil(t, principal.Role)
	require.Equal(t, "STAFF", principal.Role.Name)
}

func TestResolveCoarseRoleComesFromUserRecord(t *testing.T) {
	resolver, tokens, db := newTestResolver(t)

	user := models.User{
		FullName: "Trainer",
		Email:    "trainer@akademi.org",
		Password: "irrelevant",
		Role:     models.RoleTrainer,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)

	// Token claim says ADMIN but the live record says TRAINER; the record wins.
	token, err := tokens.Issue(user.Email, "ADMIN")
	require.NoError(t, err)

	principal := resolver.ResolveFromHeader(context.Background(), "Bearer "+token)
	require.NotNil(t, principal)
	require.Equal(t, models.RoleTrainer, principal.CoarseRole)
}

// A valid token whose subject no longer maps to a user still carries the
// coarse role claim from the token, while fine-grained role data is lost.
// This asymmetry is deliberate: it keeps legacy tokens working without a
// live account lookup, and it is preserved here rather than unified.
func TestResolveDeletedUserKeepsTokenCoarseRole(t *testing.T) {
	resolver, tokens, _ := newTestResolver(t)

	token, err := tokens.Issue("ghost@akademi.org", "ADMIN")
	require.NoError(t, err)

	principal := resolver.ResolveFromHeader(context.Background(), "Bearer "+token)
	require.NotNil(t, principal)
	require.True(t, principal.Resolved())
	require.Equal(t, models.RoleAdmin, principal.CoarseRole)
	require.Nil(t, principal.UserID)
	require.Nil(t, principal.Role)
}

func TestResolveRejectsOrdinaryInvalidInput(t *testing.T) {
	resolver, tokens, _ := newTestResolver(t)

	require.Nil(t, resolver.ResolveFromHeader(context.Background(), ""))
	require.Nil(t, resolver.ResolveFromHeader(context.Background(), "Basic abc"))
	require.Nil(t, resolver.ResolveFromHeader(context.Background(), "Bearer "))
	require.Nil(t, resolver.ResolveFromHeader(context.Background(), "Bearer not-a-token"))

	// A token without a role claim is authentication incomplete: no principal.
	token, err := tokens.Issue("user@akademi.org", "")
	require.NoError(t, err)
	require.Nil(t, resolver.ResolveFromHeader(context.Background(), "Bearer "+token))
}

func TestPrincipalResolved(t *testing.T) {
	var p *Principal
	require.False(t, p.Resolved())
	require.False(t, (&Principal{}).Resolved())
	require.True(t, (&Principal{Email: "user@akademi.org"}).Resolved())
}
