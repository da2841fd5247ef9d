package database

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akademi/edutrack/internal/models"
	"github.com/akademi/edutrack/pkg/crypto"
)

// memoryDSN names an in-memory database after the test so pooled
// connections share a schema without leaking between tests.
func memoryDSN(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", url.PathEscape(t.Name()))
}

func TestAutoMigrateAndSeed(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: memoryDSN(t)})
	require.NoError(t, err)

	require.NoError(t, AutoMigrateAndSeed(db))

	var permCount int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&permCount).Error)
	require.Equal(t, int64(len(guardedModules)*len(guardedActions)), permCount)

	var admin models.Role
	require.NoError(t, db.First(&admin, "name = ?", "ADMIN").Error)
	require.Equal(t, "ADMIN", admin.Name)

	// Seeding is idempotent.
	require.NoError(t, SeedData(db))
	require.NoError(t, db.Model(&models.Permission{}).Count(&permCount).Error)
	require.Equal(t, int64(len(guardedModules)*len(guardedActions)), permCount)
}

func TestSeedAdminUser(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: memoryDSN(t)})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	require.NoError(t, SeedAdminUser(db, "admin@akademi.org", "secret123!", "System Admin"))

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "admin@akademi.org").Error)
	require.Equal(t, models.RoleAdmin, user.Role)
	require.True(t, user.IsActive)
	require.True(t, crypto.VerifyPassword(user.Password, "secret123!"))

	// Re-seeding leaves the existing account untouched.
	require.NoError(t, SeedAdminUser(db, "admin@akademi.org", "other-password", ""))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "admin@akademi.org").Count(&count).Error)
	require.Equal(t, int64(1), count)

	// Blank email skips seeding.
	require.NoError(t, SeedAdminUser(db, "", "", ""))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}
