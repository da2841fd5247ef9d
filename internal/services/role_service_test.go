package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akademi/edutrack/internal/auth"
	"github.com/akademi/edutrack/internal/models"
	apperrors "github.com/akademi/edutrack/pkg/errors"
)

func newRoleService(t *testing.T, env *serviceTestEnv) *RoleService {
	t.Helper()
	svc, err := NewRoleService(env.db, env.engine, env.activity)
	require.NoError(t, err)
	return svc
}

func TestRoleGrantsAndRevokes(t *testing.T) {
	env := newServiceTestEnv(t)
	svc := newRoleService(t, env)
	ctx := context.Background()
	admin := adminPrincipal()

	role, err := svc.Create(ctx, admin, RoleInput{Name: "STAFF", Description: "Programme staff"})
	require.NoError(t, err)

	permission := models.Permission{Module: "payment", Action: "view"}
	require.NoError(t, env.db.Create(&permission).Error)

	role, err = svc.AddPermission(ctx, admin, role.ID, permission.ID)
	require.NoError(t, err)
	require.True(t, role.HasPermission("payment", "view"))

	// Granting twice is a no-op.
	role, err = svc.AddPermission(ctx, admin, role.ID, permission.ID)
	require.NoError(t, err)
	require.Len(t, role.Permissions, 1)

	role, err = svc.RemovePermission(ctx, admin, role.ID, permission.ID)
	require.NoError(t, err)
	require.False(t, role.HasPermission("payment", "view"))
}

func TestRoleNamesAreUnique(t *testing.T) {
	env := newServiceTestEnv(t)
	svc := newRoleService(t, env)
	ctx := context.Background()
	admin := adminPrincipal()

	_, err := svc.Create(ctx, admin, RoleInput{Name: "STAFF"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, admin, RoleInput{Name: "STAFF"})
	require.Equal(t, apperrors.ErrConflict.Code, apperrors.FromError(err).Code)
}

// The "roles" module is reserved: a RESPONSIBLE may inspect roles but any
// mutation is denied outright.
func TestRoleModuleIsReservedForAdmins(t *testing.T) {
	env := newServiceTestEnv(t)
	svc := newRoleService(t, env)
	ctx := context.Background()

	id := uint(5)
	responsible := &auth.Principal{Email: "owner@akademi.org", UserID: &id, CoarseRole: models.RoleResponsible}

	_, err := svc.List(ctx, responsible)
	require.NoError(t, err)

	_, err = svc.Create(ctx, responsible, RoleInput{Name: "SNEAKY"})
	require.True(t, apperrors.IsForbidden(err))

	err = svc.Delete(ctx, responsible, 1)
	require.True(t, apperrors.IsForbidden(err))
}

func TestRoleDeleteUnlinksResponsibles(t *testing.T) {
	env := newServiceTestEnv(t)
	svc := newRoleService(t, env)
	ctx := context.Background()
	admin := adminPrincipal()

	role, err := svc.Create(ctx, admin, RoleInput{Name: "STAFF"})
	require.NoError(t, err)

	responsible := models.Responsible{FullName: "Programme Owner", RoleID: &role.ID}
	require.NoError(t, env.db.Create(&responsible).Error)

	require.NoError(t, svc.Delete(ctx, admin, role.ID))

	var reloaded models.Responsible
	require.NoError(t, env.db.First(&reloaded, responsible.ID).Error)
	require.Nil(t, reloaded.RoleID)
}
